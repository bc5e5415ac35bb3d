package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the lifecycle state of a persisted quote.
type QuoteStatus string

const (
	StatusDraft             QuoteStatus = "draft"
	StatusSent              QuoteStatus = "sent"
	StatusAccepted          QuoteStatus = "accepted"
	StatusDeclined          QuoteStatus = "declined"
	StatusRevisionRequested QuoteStatus = "revision_requested"
)

// CurrentRevisionNumber is the revision every save writes to.
// Saves update this revision in place instead of appending new ones.
const CurrentRevisionNumber = 1

// PersistedQuote is the stored quote header, keyed by its human-assigned number.
type PersistedQuote struct {
	ID          string
	QuoteNumber string
	ClientID    string
	Status      QuoteStatus

	// CurrentRevision points at the revision number treated as current.
	CurrentRevision int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentRevisionNumber returns the revision pointer, defaulting to revision 1
// for rows written before the pointer existed.
func (q PersistedQuote) CurrentRevisionNumber() int {
	if q.CurrentRevision <= 0 {
		return CurrentRevisionNumber
	}

	return q.CurrentRevision
}

// QuoteRevision is a stored snapshot of a quote's editable content.
type QuoteRevision struct {
	ID             string
	QuoteID        string
	RevisionNumber int
	ExpiresAt      *time.Time
	TaxEnabled     bool
	// TaxRate is fractional. Adapters convert from the stored percentage.
	TaxRate      decimal.Decimal
	Notes        string
	Recurring    RecurringBilling
	URL          string
	Owner        string
	ViewCount    int
	LastViewedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RevisionItem is a persisted line item.
type RevisionItem struct {
	ID          string
	RevisionID  string
	Position    int
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// PaymentTerm is a persisted payment schedule entry.
type PaymentTerm struct {
	ID          string
	RevisionID  string
	Position    int
	Percentage  decimal.Decimal
	Description string
}

// LegalTerms is the legal text attached to a revision.
type LegalTerms struct {
	ID         string
	RevisionID string
	Content    string
}

// ClientComment is a comment block attached to a revision.
type ClientComment struct {
	ID         string
	RevisionID string
	Content    string
	CreatedAt  time.Time
}

// RevisionBundle is the composite read of one revision with its parents and children.
type RevisionBundle struct {
	Revision     QuoteRevision
	Quote        PersistedQuote
	Client       Client
	Items        []RevisionItem
	PaymentTerms []PaymentTerm
	LegalTerms   *LegalTerms
	Comments     []ClientComment
}

// LineItems converts the persisted items back to line items.
func (b RevisionBundle) LineItems() []LineItem {
	items := make([]LineItem, 0, len(b.Items))
	for _, it := range b.Items {
		li := LineItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
		li.refresh()
		items = append(items, li)
	}

	return items
}

// Totals derives the display totals from the persisted items and tax flags.
func (b RevisionBundle) Totals() Totals {
	return Recompute(b.LineItems(), b.Revision.TaxEnabled, b.Revision.TaxRate)
}

// ToDraft rebuilds an editable draft from the bundle.
func (b RevisionBundle) ToDraft(owner string) *QuoteDraft {
	d := &QuoteDraft{
		ID:    newID(),
		Owner: owner,
		DraftHeader: DraftHeader{
			ClientName:  b.Client.Name,
			ClientEmail: b.Client.Email,
			QuoteNumber: b.Quote.QuoteNumber,
			URL:         b.Revision.URL,
			ExpiresAt:   b.Revision.ExpiresAt,
			Notes:       b.Revision.Notes,
			Recurring:   b.Revision.Recurring,
		},
		TaxEnabled: b.Revision.TaxEnabled,
		TaxRate:    b.Revision.TaxRate,
		Items:      b.LineItems(),
		Saved: &SavedMarker{
			QuoteID:    b.Quote.ID,
			RevisionID: b.Revision.ID,
			SavedAt:    b.Revision.UpdatedAt,
		},
	}

	if b.LegalTerms != nil {
		d.LegalTerms = b.LegalTerms.Content
	}

	if len(b.Comments) > 0 {
		d.ClientComments = b.Comments[0].Content
	}

	for _, pt := range b.PaymentTerms {
		d.Schedule = append(d.Schedule, PaymentScheduleEntry{
			ID:          pt.ID,
			Percentage:  pt.Percentage,
			Description: pt.Description,
		})
	}

	if len(d.Items) == 0 {
		d.Items = []LineItem{{ID: newID(), Quantity: 1}}
	}

	d.recompute()

	return d
}

// QuoteSummary is a search result row.
type QuoteSummary struct {
	QuoteID     string
	QuoteNumber string
	ClientName  string
	Status      QuoteStatus
	UpdatedAt   time.Time
}

// RevisionSummary is one entry of a quote's revision list.
type RevisionSummary struct {
	ID             string
	QuoteID        string
	RevisionNumber int
	UpdatedAt      time.Time
}

// SaveResult is what a successful save produced.
type SaveResult struct {
	ClientID      string
	QuoteID       string
	RevisionID    string
	QuoteCreated  bool
	ClientCreated bool
	ItemCount     int
	Totals        Totals
	Schedule      ScheduleStatus
	SavedAt       time.Time
}

// SaveHistoryEntry is a local record of one successful save.
type SaveHistoryEntry struct {
	QuoteNumber string
	QuoteID     string
	RevisionID  string
	Total       decimal.Decimal
	SavedAt     time.Time
	Current     bool
}

// ClientView is what the client-facing page shows for one revision.
type ClientView struct {
	Bundle   RevisionBundle
	Totals   Totals
	Schedule ScheduleStatus
	Feedback []ClientFeedback
}

// NewClientView derives the display totals from the bundle.
func NewClientView(b RevisionBundle, feedback []ClientFeedback) ClientView {
	schedule := make([]PaymentScheduleEntry, 0, len(b.PaymentTerms))
	for _, pt := range b.PaymentTerms {
		schedule = append(schedule, PaymentScheduleEntry{ID: pt.ID, Percentage: pt.Percentage, Description: pt.Description})
	}

	return ClientView{
		Bundle:   b,
		Totals:   b.Totals(),
		Schedule: CheckSchedule(schedule),
		Feedback: feedback,
	}
}
