package sqlstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// The models mirror the hosted tables so both dialects and the PostgREST
// driver agree on column names. tax_rate is a percentage.

type clientModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null;index"`
	Email     string `gorm:"not null"`
	CreatedAt time.Time
}

func (clientModel) TableName() string { return "clients" }

type quoteModel struct {
	ID              string      `gorm:"primaryKey;size:36"`
	QuoteNumber     string      `gorm:"not null;uniqueIndex"`
	ClientID        string      `gorm:"not null;size:36;index"`
	Client          clientModel `gorm:"foreignKey:ClientID"`
	Status          string      `gorm:"not null;default:draft"`
	CurrentRevision int         `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (quoteModel) TableName() string { return "quotes" }

type revisionModel struct {
	ID              string          `gorm:"primaryKey;size:36"`
	QuoteID         string          `gorm:"not null;size:36;uniqueIndex:idx_quote_revisions_number"`
	Quote           quoteModel      `gorm:"foreignKey:QuoteID"`
	RevisionNumber  int             `gorm:"not null;uniqueIndex:idx_quote_revisions_number"`
	ExpiresAt       *time.Time
	IsTaxEnabled    bool            `gorm:"not null;default:false"`
	TaxRate         decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	Notes           string
	IsRecurring     bool            `gorm:"not null;default:false"`
	RecurringAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	RecurringPeriod string
	URL             string
	Owner           string
	ViewCount       int `gorm:"not null;default:0"`
	LastViewedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items        []itemModel    `gorm:"foreignKey:RevisionID"`
	PaymentTerms []termModel    `gorm:"foreignKey:RevisionID"`
	LegalTerms   []legalModel   `gorm:"foreignKey:RevisionID"`
	Comments     []commentModel `gorm:"foreignKey:RevisionID"`
}

func (revisionModel) TableName() string { return "quote_revisions" }

type itemModel struct {
	ID          string          `gorm:"primaryKey;size:36"`
	RevisionID  string          `gorm:"column:quote_revision_id;not null;size:36;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (itemModel) TableName() string { return "quote_items" }

type termModel struct {
	ID          string          `gorm:"primaryKey;size:36"`
	RevisionID  string          `gorm:"column:quote_revision_id;not null;size:36;index"`
	Position    int             `gorm:"not null"`
	Percentage  decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	Description string
}

func (termModel) TableName() string { return "payment_terms" }

type legalModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	RevisionID string `gorm:"column:quote_revision_id;not null;size:36;index"`
	Content    string `gorm:"not null"`
	CreatedAt  time.Time
}

func (legalModel) TableName() string { return "legal_terms" }

type commentModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	RevisionID string `gorm:"column:quote_revision_id;not null;size:36;index"`
	Content    string `gorm:"not null"`
	CreatedAt  time.Time
}

func (commentModel) TableName() string { return "client_comments" }

type feedbackModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	QuoteID     string `gorm:"not null;size:36;index"`
	RevisionID  string `gorm:"column:quote_revision_id;not null;size:36;index"`
	ClientEmail string
	Action      string `gorm:"not null"`
	Comment     string
	CreatedAt   time.Time
}

func (feedbackModel) TableName() string { return "client_feedback" }

// allModels is the AutoMigrate order; parents before children.
var allModels = []any{
	&clientModel{},
	&quoteModel{},
	&revisionModel{},
	&itemModel{},
	&termModel{},
	&legalModel{},
	&commentModel{},
	&feedbackModel{},
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (m *clientModel) BeforeCreate(*gorm.DB) error   { assignID(&m.ID); return nil }
func (m *quoteModel) BeforeCreate(*gorm.DB) error    { assignID(&m.ID); return nil }
func (m *revisionModel) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *itemModel) BeforeCreate(*gorm.DB) error     { assignID(&m.ID); return nil }
func (m *termModel) BeforeCreate(*gorm.DB) error     { assignID(&m.ID); return nil }
func (m *legalModel) BeforeCreate(*gorm.DB) error    { assignID(&m.ID); return nil }
func (m *commentModel) BeforeCreate(*gorm.DB) error  { assignID(&m.ID); return nil }
func (m *feedbackModel) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }

func (m clientModel) toDomain() domain.Client {
	return domain.Client{ID: m.ID, Name: m.Name, Email: m.Email, CreatedAt: m.CreatedAt}
}

func (m quoteModel) toDomain() domain.PersistedQuote {
	return domain.PersistedQuote{
		ID:              m.ID,
		QuoteNumber:     m.QuoteNumber,
		ClientID:        m.ClientID,
		Status:          domain.QuoteStatus(m.Status),
		CurrentRevision: m.CurrentRevision,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func newRevisionModel(r domain.QuoteRevision) revisionModel {
	return revisionModel{
		ID:              r.ID,
		QuoteID:         r.QuoteID,
		RevisionNumber:  r.RevisionNumber,
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

// editableColumns is the UpdateRevision column map. View counters are left alone.
func (m revisionModel) editableColumns() map[string]any {
	return map[string]any{
		"expires_at":       m.ExpiresAt,
		"is_tax_enabled":   m.IsTaxEnabled,
		"tax_rate":         m.TaxRate,
		"notes":            m.Notes,
		"is_recurring":     m.IsRecurring,
		"recurring_amount": m.RecurringAmount,
		"recurring_period": m.RecurringPeriod,
		"url":              m.URL,
		"owner":            m.Owner,
	}
}

func (m revisionModel) toDomain() domain.QuoteRevision {
	return domain.QuoteRevision{
		ID:             m.ID,
		QuoteID:        m.QuoteID,
		RevisionNumber: m.RevisionNumber,
		ExpiresAt:      m.ExpiresAt,
		TaxEnabled:     m.IsTaxEnabled,
		TaxRate:        domain.TaxRateFromPercent(m.TaxRate),
		Notes:          m.Notes,
		Recurring: domain.RecurringBilling{
			Enabled: m.IsRecurring,
			Amount:  m.RecurringAmount,
			Period:  m.RecurringPeriod,
		},
		URL:          m.URL,
		Owner:        m.Owner,
		ViewCount:    m.ViewCount,
		LastViewedAt: m.LastViewedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (m revisionModel) toBundle() domain.RevisionBundle {
	b := domain.RevisionBundle{
		Revision:     m.toDomain(),
		Quote:        m.Quote.toDomain(),
		Client:       m.Quote.Client.toDomain(),
		Items:        make([]domain.RevisionItem, 0, len(m.Items)),
		PaymentTerms: make([]domain.PaymentTerm, 0, len(m.PaymentTerms)),
	}

	for _, it := range m.Items {
		b.Items = append(b.Items, domain.RevisionItem{
			ID:          it.ID,
			RevisionID:  it.RevisionID,
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}

	for _, t := range m.PaymentTerms {
		b.PaymentTerms = append(b.PaymentTerms, domain.PaymentTerm{
			ID:          t.ID,
			RevisionID:  t.RevisionID,
			Position:    t.Position,
			Percentage:  t.Percentage,
			Description: t.Description,
		})
	}

	if len(m.LegalTerms) > 0 {
		l := m.LegalTerms[0]
		b.LegalTerms = &domain.LegalTerms{ID: l.ID, RevisionID: l.RevisionID, Content: l.Content}
	}

	for _, c := range m.Comments {
		b.Comments = append(b.Comments, domain.ClientComment{
			ID:         c.ID,
			RevisionID: c.RevisionID,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		})
	}

	return b
}

func (m feedbackModel) toDomain() domain.ClientFeedback {
	return domain.ClientFeedback{
		ID:          m.ID,
		QuoteID:     m.QuoteID,
		RevisionID:  m.RevisionID,
		ClientEmail: m.ClientEmail,
		Action:      domain.FeedbackAction(m.Action),
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt,
	}
}
