// Package events publishes workflow events to the structured log and
// counts them in Prometheus.
package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// LogPublisher writes each event as a structured log record.
type LogPublisher struct {
	logger  *slog.Logger
	metrics *Metrics
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher. metrics may be nil.
func NewLogPublisher(logger *slog.Logger, metrics *Metrics) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogPublisher{
		logger:  logger.With(slog.String("component", "events")),
		metrics: metrics,
	}
}

// Publish implements ports.EventPublisher.
func (p *LogPublisher) Publish(ctx context.Context, event ports.Event) error {
	if event == nil {
		return errors.New("events: nil event")
	}

	level := slog.LevelInfo
	if event.EventType() == app.EventQuoteSaveFailed {
		level = slog.LevelWarn
	}

	p.logger.Log(ctx, level, "event published",
		slog.String("event_type", event.EventType()),
		slog.Any("payload", event.Payload()),
	)

	if p.metrics != nil {
		p.metrics.observeEvent(event.EventType())
	}

	return nil
}
