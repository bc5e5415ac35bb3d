package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Event types published by the use cases.
const (
	EventQuoteSaved        = "quote.saved"
	EventQuoteSaveFailed   = "quote.save_failed"
	EventQuoteSent         = "quote.sent"
	EventFeedbackSubmitted = "quote.feedback_submitted"
)

// QuoteSaved is published after a save completed every step.
type QuoteSaved struct {
	QuoteNumber string    `json:"quote_number"`
	QuoteID     string    `json:"quote_id"`
	RevisionID  string    `json:"revision_id"`
	Created     bool      `json:"created"`
	Total       string    `json:"total"`
	SavedAt     time.Time `json:"saved_at"`
}

func (QuoteSaved) EventType() string { return EventQuoteSaved }
func (e QuoteSaved) Payload() any    { return e }

// QuoteSaveFailed is published when any save step fails.
type QuoteSaveFailed struct {
	QuoteNumber string `json:"quote_number"`
	Step        string `json:"step"`
	Cause       string `json:"cause"`
}

func (QuoteSaveFailed) EventType() string { return EventQuoteSaveFailed }
func (e QuoteSaveFailed) Payload() any    { return e }

// QuoteSent is published after a quote email went out.
type QuoteSent struct {
	QuoteNumber string `json:"quote_number"`
	To          string `json:"to"`
	Channel     string `json:"channel"`
}

func (QuoteSent) EventType() string { return EventQuoteSent }
func (e QuoteSent) Payload() any    { return e }

// FeedbackSubmitted is published after a client reacted to a revision.
type FeedbackSubmitted struct {
	QuoteID    string                `json:"quote_id"`
	RevisionID string                `json:"revision_id"`
	Action     domain.FeedbackAction `json:"action"`
}

func (FeedbackSubmitted) EventType() string { return EventFeedbackSubmitted }
func (e FeedbackSubmitted) Payload() any    { return e }

// publish sends ev and logs a failure instead of returning it.
func publish(ctx context.Context, events ports.EventPublisher, ev ports.Event) {
	if events == nil {
		return
	}

	if err := events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "event publish failed",
			slog.String("event_type", ev.EventType()),
			slog.Any("error", err),
		)
	}
}
