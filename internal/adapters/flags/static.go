// Package flags serves feature flags from static configuration.
package flags

import (
	"context"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Static evaluates flags from an in-memory table loaded from config.
// Set allows overriding values at runtime, mainly for tests.
type Static struct {
	mu    sync.RWMutex
	bools map[string]bool
	ints  map[string]int
}

var _ ports.FeatureFlags = (*Static)(nil)

// New creates a Static flag source from the features config section.
// Flag names are matched case-insensitively; koanf lowercases map keys.
func New(cfg config.FeaturesConfig) *Static {
	s := &Static{
		bools: make(map[string]bool, len(cfg.Flags)),
		ints:  make(map[string]int, len(cfg.Ints)),
	}

	for k, v := range cfg.Flags {
		s.bools[normalize(k)] = v
	}

	for k, v := range cfg.Ints {
		s.ints[normalize(k)] = v
	}

	return s
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.bools[normalize(flag)]; ok {
		return v
	}

	return defaultValue
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(_ context.Context, flag string, defaultValue int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.ints[normalize(flag)]; ok {
		return v
	}

	return defaultValue
}

// Set overrides a boolean flag.
func (s *Static) Set(flag string, enabled bool) {
	s.mu.Lock()
	s.bools[normalize(flag)] = enabled
	s.mu.Unlock()
}

// SetInt overrides an integer flag.
func (s *Static) SetInt(flag string, value int) {
	s.mu.Lock()
	s.ints[normalize(flag)] = value
	s.mu.Unlock()
}

// Snapshot returns copies of the boolean and integer flags.
func (s *Static) Snapshot() (map[string]bool, map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bools := make(map[string]bool, len(s.bools))
	for k, v := range s.bools {
		bools[k] = v
	}

	ints := make(map[string]int, len(s.ints))
	for k, v := range s.ints {
		ints[k] = v
	}

	return bools, ints
}

func normalize(flag string) string {
	return strings.ToLower(strings.TrimSpace(flag))
}
