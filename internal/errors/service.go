// internal/errors/service.go - user facing error reporting for the CLI
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
)

// Exit codes returned by the CLI
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitConfiguration = 2
	ExitNetwork       = 3
)

// Service converts technical errors into user-friendly messages
type Service struct {
	messageHandler *MessageHandler
}

// MessageHandler controls how much technical detail is shown
type MessageHandler struct {
	showTechnical bool
}

// NewService creates a new error reporting service
func NewService() *Service {
	return &Service{
		messageHandler: &MessageHandler{showTechnical: false},
	}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.messageHandler.showTechnical = verbose
	return s
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	if IsConfigurationError(err) {
		return "Configuration Error",
			"The request could not be turned into a valid configuration.",
			[]string{
				"Pass the source list location with -url (or ?url= on the service)",
				"Check the REACHLIST_* environment overrides",
				"Run 'reachlist validate <config.yaml>' on the service configuration",
			}
	}

	if fetchErr, ok := AsSourceFetchError(err); ok {
		if fetchErr.StatusCode != 0 {
			return "Source List Unavailable",
				fmt.Sprintf("The source list server answered with status %d.", fetchErr.StatusCode),
				[]string{
					"Check that the source URL is correct",
					"Open the source URL in a browser to confirm it is published",
				}
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return "Connection Timeout",
			"The request timed out while fetching the source list.",
			[]string{
				"Check your internet connection",
				"Increase source.timeout in the service configuration",
			}
	}

	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		return "Domain Not Found",
			"Could not resolve the source list host.",
			[]string{
				"Check if the URL is spelled correctly",
				"Check your DNS settings",
			}
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "connection refused") {
		return "Connection Refused",
			"The source list server refused the connection.",
			[]string{
				"Check if the server is accessible in a browser",
				"The server might be temporarily down",
			}
	}

	if strings.Contains(errStr, "yaml") {
		return "Configuration Error",
			"The configuration file has invalid YAML syntax.",
			[]string{
				"Check YAML indentation (use spaces, not tabs)",
				"Ensure proper quoting of string values",
			}
	}

	return "Unexpected Error",
		"An unexpected error occurred during the operation.",
		[]string{
			"Try running the command again",
			"Run with -v for technical details",
		}
}

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if IsConfigurationError(err) {
		return ExitConfiguration
	}
	if _, ok := AsSourceFetchError(err); ok {
		return ExitNetwork
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "config") || strings.Contains(errStr, "yaml"):
		return ExitConfiguration
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "no such host"):
		return ExitNetwork
	default:
		return ExitGeneral
	}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	title, message, suggestions := s.GetUserFriendlyError(err)

	output := fmt.Sprintf("✗ %s\n%s\n", title, message)

	if s.messageHandler.showTechnical {
		output += fmt.Sprintf("\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		output += "\nSuggestions:\n"
		for _, suggestion := range suggestions {
			output += fmt.Sprintf("  • %s\n", suggestion)
		}
	}

	return output
}
