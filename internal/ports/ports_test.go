package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(name string) CheckFunc {
	return CheckFunc{CheckName: name, Fn: func(context.Context) error { return nil }}
}

func failingCheck(name string, optional bool) CheckFunc {
	return CheckFunc{
		CheckName:  name,
		IsOptional: optional,
		Fn:         func(context.Context) error { return errors.New(name + " down") },
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(okCheck("store")))

	err := registry.Register(okCheck("store"))

	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "store")
	assert.Len(t, registry.checkers, 1)
}

func TestCheckAll_NoCheckers(t *testing.T) {
	result := NewHealthRegistry().CheckAll(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.WithinDuration(t, time.Now(), result.Timestamp, time.Second)
}

func TestCheckAll_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		want     HealthStatus
	}{
		{
			name:     "all healthy",
			checkers: []HealthChecker{okCheck("store"), okCheck("history")},
			want:     HealthStatusHealthy,
		},
		{
			name:     "optional failure degrades",
			checkers: []HealthChecker{okCheck("store"), failingCheck("view-tracker", true)},
			want:     HealthStatusDegraded,
		},
		{
			name:     "required failure is unhealthy",
			checkers: []HealthChecker{failingCheck("store", false), failingCheck("view-tracker", true)},
			want:     HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			assert.Len(t, result.Checks, len(tt.checkers))
		})
	}
}

func TestCheckAll_ReportsFailureMessage(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(failingCheck("view-tracker", true)))

	result := registry.CheckAll(context.Background())

	check := result.Checks["view-tracker"]
	require.NotNil(t, check)
	assert.Equal(t, HealthStatusDegraded, check.Status)
	assert.Equal(t, "view-tracker down", check.Message)
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(CheckFunc{
		CheckName: "store",
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["store"].Message, "context canceled")
}
