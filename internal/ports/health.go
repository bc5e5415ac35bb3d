package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by adapters that can report their health.
type HealthChecker interface {
	// Name identifies the check in the readiness response, e.g. "store" or "view-tracker".
	Name() string

	// Check returns nil when the component is usable.
	Check(ctx context.Context) error
}

// Optional is implemented by checkers whose failure degrades the service
// without making it unready. View tracking is one: quotes still render without it.
type Optional interface {
	Optional() bool
}

// HealthRegistry aggregates the checks registered at startup.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the state of one check or of the whole service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs registered checks concurrently. Safe for concurrent use.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		checkers: make([]HealthChecker, 0),
	}
}

// Register adds a checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

func isOptional(c HealthChecker) bool {
	o, ok := c.(Optional)

	return ok && o.Optional()
}

// worse returns the more severe of two statuses.
func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}

	return a
}

// CheckAll runs every check and folds the results. A failing optional check
// degrades the service; any other failure makes it unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Add(1)

		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)

			cr := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
			if err != nil {
				cr.Message = err.Error()
				cr.Status = HealthStatusUnhealthy

				if isOptional(c) {
					cr.Status = HealthStatusDegraded
				}
			}

			mu.Lock()
			result.Checks[c.Name()] = cr
			result.Status = worse(result.Status, cr.Status)
			mu.Unlock()
		}(checker)
	}

	wg.Wait()

	return result
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc struct {
	CheckName  string
	IsOptional bool
	Fn         func(ctx context.Context) error
}

func (f CheckFunc) Name() string { return f.CheckName }

func (f CheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

func (f CheckFunc) Optional() bool { return f.IsOptional }
