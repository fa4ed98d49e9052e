// internal/config/overrides.go
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to parameter names to form override variables,
// e.g. REACHLIST_URL or REACHLIST_ADD_LATENCY.
const EnvPrefix = "REACHLIST"

// EnvSource reads process-wide overrides from the environment through viper.
type EnvSource struct {
	v *viper.Viper
}

// NewEnvSource binds every parameter name to its prefixed environment variable
func NewEnvSource() *EnvSource {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AllowEmptyEnv(false)
	for _, name := range ParamNames {
		_ = v.BindEnv(name)
	}
	return &EnvSource{v: v}
}

func (e *EnvSource) Lookup(name string) (string, bool) {
	if e == nil || e.v == nil || !e.v.IsSet(name) {
		return "", false
	}
	value := e.v.GetString(name)
	return value, value != ""
}

// EnvVar returns the environment variable name overriding the given parameter
func EnvVar(name string) string {
	return EnvPrefix + "_" + strings.ToUpper(name)
}

// OverrideSources returns the process-wide override sources in precedence
// order: environment first, then the configuration file overrides.
func (c *ServiceConfig) OverrideSources() []ParamSource {
	sources := []ParamSource{NewEnvSource()}
	if c != nil && len(c.Overrides) > 0 {
		overrides := make(MapSource, len(c.Overrides))
		for k, v := range c.Overrides {
			overrides[k] = v
		}
		sources = append(sources, overrides)
	}
	return sources
}

// ResolveRequest resolves parameters for one request, letting process-wide
// overrides win over the request's own values.
func (c *ServiceConfig) ResolveRequest(request ParamSource) (*Params, error) {
	return Resolve(append(c.OverrideSources(), request)...)
}
