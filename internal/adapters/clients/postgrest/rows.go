package postgrest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// Row types mirror the hosted tables. Insert payloads omit server-assigned columns.

type clientRow struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func (r clientRow) toDomain() domain.Client {
	return domain.Client{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt}
}

type quoteRow struct {
	ID              string     `json:"id,omitempty"`
	QuoteNumber     string     `json:"quote_number"`
	ClientID        string     `json:"client_id"`
	Status          string     `json:"status"`
	CurrentRevision int        `json:"current_revision"`
	CreatedAt       time.Time  `json:"created_at,omitzero"`
	UpdatedAt       time.Time  `json:"updated_at,omitzero"`
	Client          *clientRow `json:"client,omitempty"`
}

func newQuoteRow(q domain.PersistedQuote) quoteRow {
	return quoteRow{
		QuoteNumber:     q.QuoteNumber,
		ClientID:        q.ClientID,
		Status:          string(q.Status),
		CurrentRevision: q.CurrentRevisionNumber(),
	}
}

func (r quoteRow) toDomain() domain.PersistedQuote {
	return domain.PersistedQuote{
		ID:              r.ID,
		QuoteNumber:     r.QuoteNumber,
		ClientID:        r.ClientID,
		Status:          domain.QuoteStatus(r.Status),
		CurrentRevision: r.CurrentRevision,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// quotePatch is the UpdateQuote payload.
type quotePatch struct {
	ClientID        string    `json:"client_id"`
	Status          string    `json:"status"`
	CurrentRevision int       `json:"current_revision"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// revisionFields are the editable revision columns shared by insert and update.
// tax_rate is stored as a percentage.
type revisionFields struct {
	ExpiresAt       *time.Time      `json:"expires_at"`
	IsTaxEnabled    bool            `json:"is_tax_enabled"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Notes           string          `json:"notes"`
	IsRecurring     bool            `json:"is_recurring"`
	RecurringAmount decimal.Decimal `json:"recurring_amount"`
	RecurringPeriod string          `json:"recurring_period"`
	URL             string          `json:"url"`
	Owner           string          `json:"owner"`
}

func newRevisionFields(r domain.QuoteRevision) revisionFields {
	return revisionFields{
		ExpiresAt:       r.ExpiresAt,
		IsTaxEnabled:    r.TaxEnabled,
		TaxRate:         domain.TaxRatePercent(r.TaxRate),
		Notes:           r.Notes,
		IsRecurring:     r.Recurring.Enabled,
		RecurringAmount: r.Recurring.Amount,
		RecurringPeriod: r.Recurring.Period,
		URL:             r.URL,
		Owner:           r.Owner,
	}
}

type revisionInsert struct {
	QuoteID        string `json:"quote_id"`
	RevisionNumber int    `json:"revision_number"`
	revisionFields
}

type revisionPatch struct {
	revisionFields
	UpdatedAt time.Time `json:"updated_at"`
}

type revisionRow struct {
	ID             string     `json:"id"`
	QuoteID        string     `json:"quote_id"`
	RevisionNumber int        `json:"revision_number"`
	ViewCount      int        `json:"view_count"`
	LastViewedAt   *time.Time `json:"last_viewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	revisionFields
}

func (r revisionRow) toDomain() domain.QuoteRevision {
	return domain.QuoteRevision{
		ID:             r.ID,
		QuoteID:        r.QuoteID,
		RevisionNumber: r.RevisionNumber,
		ExpiresAt:      r.ExpiresAt,
		TaxEnabled:     r.IsTaxEnabled,
		TaxRate:        domain.TaxRateFromPercent(r.TaxRate),
		Notes:          r.Notes,
		Recurring: domain.RecurringBilling{
			Enabled: r.IsRecurring,
			Amount:  r.RecurringAmount,
			Period:  r.RecurringPeriod,
		},
		URL:          r.URL,
		Owner:        r.Owner,
		ViewCount:    r.ViewCount,
		LastViewedAt: r.LastViewedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type itemRow struct {
	ID          string          `json:"id,omitempty"`
	RevisionID  string          `json:"quote_revision_id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

func (r itemRow) toDomain() domain.RevisionItem {
	return domain.RevisionItem{
		ID:          r.ID,
		RevisionID:  r.RevisionID,
		Position:    r.Position,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Total:       r.Total,
	}
}

type termRow struct {
	ID          string          `json:"id,omitempty"`
	RevisionID  string          `json:"quote_revision_id"`
	Position    int             `json:"position"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description"`
}

func (r termRow) toDomain() domain.PaymentTerm {
	return domain.PaymentTerm{
		ID:          r.ID,
		RevisionID:  r.RevisionID,
		Position:    r.Position,
		Percentage:  r.Percentage,
		Description: r.Description,
	}
}

type textRow struct {
	ID         string    `json:"id,omitempty"`
	RevisionID string    `json:"quote_revision_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

type feedbackRow struct {
	ID          string    `json:"id,omitempty"`
	QuoteID     string    `json:"quote_id"`
	RevisionID  string    `json:"quote_revision_id"`
	ClientEmail string    `json:"client_email"`
	Action      string    `json:"action"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

func (r feedbackRow) toDomain() domain.ClientFeedback {
	return domain.ClientFeedback{
		ID:          r.ID,
		QuoteID:     r.QuoteID,
		RevisionID:  r.RevisionID,
		ClientEmail: r.ClientEmail,
		Action:      domain.FeedbackAction(r.Action),
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}

// bundleRow is the embedded-resource read of one revision.
type bundleRow struct {
	revisionRow
	Quote    *quoteRow `json:"quote"`
	Items    []itemRow `json:"quote_items"`
	Terms    []termRow `json:"payment_terms"`
	Legal    []textRow `json:"legal_terms"`
	Comments []textRow `json:"client_comments"`
}

func (b bundleRow) toDomain() domain.RevisionBundle {
	out := domain.RevisionBundle{Revision: b.revisionRow.toDomain()}

	if b.Quote != nil {
		out.Quote = b.Quote.toDomain()

		if b.Quote.Client != nil {
			out.Client = b.Quote.Client.toDomain()
		}
	}

	out.Items = make([]domain.RevisionItem, 0, len(b.Items))
	for _, it := range b.Items {
		out.Items = append(out.Items, it.toDomain())
	}

	out.PaymentTerms = make([]domain.PaymentTerm, 0, len(b.Terms))
	for _, t := range b.Terms {
		out.PaymentTerms = append(out.PaymentTerms, t.toDomain())
	}

	if len(b.Legal) > 0 {
		out.LegalTerms = &domain.LegalTerms{ID: b.Legal[0].ID, RevisionID: b.Legal[0].RevisionID, Content: b.Legal[0].Content}
	}

	for _, c := range b.Comments {
		out.Comments = append(out.Comments, domain.ClientComment{
			ID:         c.ID,
			RevisionID: c.RevisionID,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		})
	}

	return out
}
