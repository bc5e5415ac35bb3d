package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// QuoteEmail is everything a notifier needs to tell a client about a quote.
type QuoteEmail struct {
	To          string
	ClientName  string
	QuoteNumber string
	QuoteURL    string
	Total       decimal.Decimal
	ExpiresAt   *time.Time
}

// Delivery describes how a quote email went out.
type Delivery struct {
	Channel string
	// Link is set when the notifier produced a mail-client deep link instead of sending.
	Link   string
	SentAt time.Time
}

// Notifier sends a quote to a client.
type Notifier interface {
	SendQuote(ctx context.Context, msg QuoteEmail) (Delivery, error)
}

// SaveHistory keeps a local log of successful saves per quote number.
type SaveHistory interface {
	// Record appends entry and marks it as the current version of its quote number.
	Record(ctx context.Context, entry domain.SaveHistoryEntry) error

	// List returns entries for a quote number, newest first.
	List(ctx context.Context, quoteNumber string) ([]domain.SaveHistoryEntry, error)
}

// Document is a rendered file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DocumentRenderer turns a client view into a downloadable file.
type DocumentRenderer interface {
	Format() string
	Render(ctx context.Context, view domain.ClientView) (Document, error)
}

// EventPublisher delivers notifications about finished operations.
type EventPublisher interface {
	// Publish sends an event. Failures are returned but callers treat them as best effort.
	Publish(ctx context.Context, event Event) error
}

// Event is a notification about a finished operation.
type Event interface {
	// EventType returns the routing key, e.g. "quote.saved".
	EventType() string

	// Payload returns the event data for serialization.
	Payload() any
}
