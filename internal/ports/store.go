// Package ports defines the contracts between the quote use cases and the outside world.
//
// Every method takes a context first, returns domain types, and reports failures
// with domain errors: ErrNotFound for zero-row lookups and StoreError for
// anything the external store rejected.
package ports

import (
	"context"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// ChildRecordSet names a record set owned by a quote revision.
type ChildRecordSet string

const (
	RecordSetItems          ChildRecordSet = "quote_items"
	RecordSetPaymentTerms   ChildRecordSet = "payment_terms"
	RecordSetLegalTerms     ChildRecordSet = "legal_terms"
	RecordSetClientComments ChildRecordSet = "client_comments"
)

// ChildRecordSets lists the revision children in the order a save clears them.
var ChildRecordSets = []ChildRecordSet{
	RecordSetItems,
	RecordSetPaymentTerms,
	RecordSetLegalTerms,
	RecordSetClientComments,
}

// ClientStore reads and writes the clients record set.
type ClientStore interface {
	// FindClientByName returns the client with exactly this name.
	// Returns domain.ErrNotFound when no row matches.
	FindClientByName(ctx context.Context, name string) (domain.Client, error)

	// CreateClient inserts a client and returns the stored row.
	CreateClient(ctx context.Context, c domain.Client) (domain.Client, error)

	// SearchClients returns clients whose name starts with prefix, ordered by name.
	SearchClients(ctx context.Context, prefix string, limit int) ([]domain.Client, error)
}

// QuoteStore reads and writes the quotes record set.
type QuoteStore interface {
	// FindQuoteByNumber returns the quote with exactly this number.
	// Returns domain.ErrNotFound when no row matches.
	FindQuoteByNumber(ctx context.Context, number string) (domain.PersistedQuote, error)

	// FindQuoteByID returns the quote with this identifier.
	FindQuoteByID(ctx context.Context, id string) (domain.PersistedQuote, error)

	// CreateQuote inserts a quote and returns the stored row.
	CreateQuote(ctx context.Context, q domain.PersistedQuote) (domain.PersistedQuote, error)

	// UpdateQuote writes the client reference, status and revision pointer of q.
	UpdateQuote(ctx context.Context, q domain.PersistedQuote) error

	// SearchQuotes returns quotes whose number contains query, newest first.
	SearchQuotes(ctx context.Context, query string, limit int) ([]domain.QuoteSummary, error)
}

// RevisionStore reads and writes quote_revisions and the revision children.
type RevisionStore interface {
	// FindRevision returns the revision of a quote with the given number.
	// Returns domain.ErrNotFound when no row matches.
	FindRevision(ctx context.Context, quoteID string, number int) (domain.QuoteRevision, error)

	// CreateRevision inserts a revision and returns the stored row.
	CreateRevision(ctx context.Context, r domain.QuoteRevision) (domain.QuoteRevision, error)

	// UpdateRevision overwrites the editable fields of an existing revision.
	UpdateRevision(ctx context.Context, r domain.QuoteRevision) error

	// ListRevisions returns a quote's revisions, highest number first.
	ListRevisions(ctx context.Context, quoteID string) ([]domain.RevisionSummary, error)

	// DeleteRevisionChildren removes every row of set that belongs to the revision.
	DeleteRevisionChildren(ctx context.Context, set ChildRecordSet, revisionID string) error

	InsertItems(ctx context.Context, revisionID string, items []domain.RevisionItem) error
	InsertPaymentTerms(ctx context.Context, revisionID string, terms []domain.PaymentTerm) error
	InsertLegalTerms(ctx context.Context, revisionID, content string) error
	InsertClientComment(ctx context.Context, revisionID, content string) error

	// CountItems returns how many item rows the revision has.
	CountItems(ctx context.Context, revisionID string) (int, error)

	// LoadRevisionBundle reads a revision with its quote, client and children.
	// Returns domain.ErrNotFound when the revision does not exist.
	LoadRevisionBundle(ctx context.Context, revisionID string) (domain.RevisionBundle, error)
}

// FeedbackStore appends and lists client feedback. Rows are never updated.
type FeedbackStore interface {
	InsertFeedback(ctx context.Context, f domain.ClientFeedback) (domain.ClientFeedback, error)
	ListFeedback(ctx context.Context, revisionID string) ([]domain.ClientFeedback, error)
}

// Store is the full record store a driver provides.
type Store interface {
	ClientStore
	QuoteStore
	RevisionStore
	FeedbackStore
}

// ViewTracker records that a client opened a revision.
type ViewTracker interface {
	// TrackView reports whether the view was recorded.
	TrackView(ctx context.Context, revisionID string) (bool, error)
}
