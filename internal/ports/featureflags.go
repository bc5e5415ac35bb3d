package ports

import (
	"context"
)

// Flag names evaluated by the quote use cases.
const (
	// FlagBlockUnbalancedSchedule turns the payment schedule warning into a save error.
	FlagBlockUnbalancedSchedule = "block-unbalanced-schedule"

	// FlagSearchLimit caps search result sizes.
	FlagSearchLimit = "quote-search-limit"

	// FlagTrackViews enables client view tracking.
	FlagTrackViews = "track-client-views"
)

// FeatureFlags evaluates feature flags. Implementations return defaultValue when a flag
// is unknown or evaluation fails.
//
//	if flags.IsEnabled(ctx, ports.FlagBlockUnbalancedSchedule, false) {
//	    return domain.NewValidationError("payment_schedule", "must add up to 100")
//	}
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
