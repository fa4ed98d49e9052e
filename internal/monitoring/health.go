// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck is a named check evaluated on every health request
type HealthCheck struct {
	Name      string
	Critical  bool
	CheckFunc func(ctx context.Context) HealthCheckResult
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status   HealthStatus           `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SystemHealth is the JSON document served on the health endpoint
type SystemHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version,omitempty"`
	Uptime    string                       `json:"uptime"`
	Checks    map[string]HealthCheckResult `json:"checks,omitempty"`
}

// HealthManager runs registered checks on demand
type HealthManager struct {
	checks  map[string]*HealthCheck
	mu      sync.RWMutex
	version string
	started time.Time
	timeout time.Duration
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checks:  make(map[string]*HealthCheck),
		version: version,
		started: time.Now(),
		timeout: 2 * time.Second,
	}
}

// RegisterCheck adds or replaces a check
func (hm *HealthManager) RegisterCheck(check *HealthCheck) {
	if check == nil || check.Name == "" || check.CheckFunc == nil {
		return
	}
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checks[check.Name] = check
}

// GetHealth evaluates every check and derives the overall status. A failing
// critical check makes the service unhealthy, any other failure degrades it.
func (hm *HealthManager) GetHealth(ctx context.Context) SystemHealth {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.checks))
	for name := range hm.checks {
		names = append(names, name)
	}
	checks := make([]*HealthCheck, 0, len(names))
	sort.Strings(names)
	for _, name := range names {
		checks = append(checks, hm.checks[name])
	}
	hm.mu.RUnlock()

	health := SystemHealth{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   hm.version,
		Uptime:    time.Since(hm.started).Round(time.Second).String(),
		Checks:    make(map[string]HealthCheckResult, len(checks)),
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, hm.timeout)
		result := check.CheckFunc(checkCtx)
		cancel()

		health.Checks[check.Name] = result
		switch result.Status {
		case HealthStatusHealthy:
		case HealthStatusUnhealthy:
			if check.Critical {
				health.Status = HealthStatusUnhealthy
			} else if health.Status == HealthStatusHealthy {
				health.Status = HealthStatusDegraded
			}
		default:
			if health.Status == HealthStatusHealthy {
				health.Status = HealthStatusDegraded
			}
		}
	}

	return health
}

// HealthHandler returns the HTTP handler for the health endpoint
func (hm *HealthManager) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.GetHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(health)
	}
}

// GoroutineHealthCheck creates a goroutine count health check
func GoroutineHealthCheck(maxGoroutines int) *HealthCheck {
	return &HealthCheck{
		Name: "goroutines",
		CheckFunc: func(ctx context.Context) HealthCheckResult {
			count := runtime.NumGoroutine()

			metadata := map[string]interface{}{
				"goroutine_count": count,
				"max_allowed":     maxGoroutines,
			}

			if count > maxGoroutines {
				return HealthCheckResult{
					Status:   HealthStatusDegraded,
					Message:  fmt.Sprintf("High goroutine count: %d", count),
					Metadata: metadata,
				}
			}

			return HealthCheckResult{
				Status:   HealthStatusHealthy,
				Message:  fmt.Sprintf("Goroutine count normal: %d", count),
				Metadata: metadata,
			}
		},
	}
}

// ConfigHealthCheck reports whether a usable service configuration is loaded
func ConfigHealthCheck(loaded func() error) *HealthCheck {
	return &HealthCheck{
		Name:     "config",
		Critical: true,
		CheckFunc: func(ctx context.Context) HealthCheckResult {
			if err := loaded(); err != nil {
				return HealthCheckResult{
					Status:  HealthStatusUnhealthy,
					Message: err.Error(),
				}
			}
			return HealthCheckResult{Status: HealthStatusHealthy, Message: "configuration loaded"}
		},
	}
}
