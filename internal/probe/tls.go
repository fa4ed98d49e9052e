// internal/probe/tls.go
package probe

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/valpere/reachlist/internal/config"
	"github.com/valpere/reachlist/internal/utils"
)

// BuildTLSConfig creates the tls.Config used for probe connections
func BuildTLSConfig(cfg *config.TLSConfig, logger utils.Logger) (*tls.Config, error) {
	tlsConfig := GetDefaultTLSConfig()
	if cfg == nil {
		return tlsConfig, nil
	}

	tlsConfig.InsecureSkipVerify = cfg.InsecureSkipVerify

	if cfg.InsecureSkipVerify && !cfg.SuppressWarnings && logger != nil {
		logger.Warn("TLS certificate verification is disabled for probes (insecure_skip_verify: true); endpoints with invalid certificates will be reported reachable")
	}

	if len(cfg.RootCAs) > 0 {
		rootCAs, err := x509.SystemCertPool()
		if err != nil || rootCAs == nil {
			rootCAs = x509.NewCertPool()
		}
		for _, caFile := range cfg.RootCAs {
			caCert, err := os.ReadFile(caFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read root CA file %s: %w", caFile, err)
			}
			if !rootCAs.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse root CA certificate from %s", caFile)
			}
		}
		tlsConfig.RootCAs = rootCAs
	}

	return tlsConfig, nil
}

// GetDefaultTLSConfig returns a secure default TLS configuration
func GetDefaultTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: false,
		MinVersion:         tls.VersionTLS12,
	}
}
