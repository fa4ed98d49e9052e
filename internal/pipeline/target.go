// internal/pipeline/target.go
package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"

	reacherrors "github.com/valpere/reachlist/internal/errors"
	"github.com/valpere/reachlist/internal/probe"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// ResolveTarget parses candidate as an absolute URL and derives the probe
// target. A missing port becomes 443 for https and 80 for everything else.
func ResolveTarget(candidate string) (probe.Target, error) {
	parsed, err := urlParser.Parse(candidate)
	if err != nil {
		return probe.Target{}, fmt.Errorf("%w: %v", reacherrors.ErrInvalidURL, err)
	}

	scheme := strings.TrimSuffix(parsed.Protocol(), ":")
	host := parsed.Hostname()
	if host == "" {
		return probe.Target{}, fmt.Errorf("%w: %q has no host", reacherrors.ErrInvalidURL, candidate)
	}

	port := 80
	if scheme == "https" {
		port = 443
	}
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return probe.Target{}, fmt.Errorf("%w: port %q: %v", reacherrors.ErrInvalidURL, p, err)
		}
	}

	return probe.Target{Scheme: scheme, Host: host, Port: port}, nil
}
