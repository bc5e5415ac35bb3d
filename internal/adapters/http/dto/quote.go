package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// DateLayout is the wire format of expiry dates.
const DateLayout = "2006-01-02"

// SearchRequest is the query string of search endpoints. A zero limit means
// the configured default.
type SearchRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// ListResponse wraps a result list.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse never serializes a nil slice.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}

	return ListResponse[T]{Items: items, Count: len(items)}
}

// --- requests ---

// LineItemRequest adds or edits a line item. On edits absent fields stay unchanged.
type LineItemRequest struct {
	Description *string `json:"description" validate:"omitempty,max=500"`
	Quantity    *int    `json:"quantity"    validate:"omitempty,gte=0"`
	UnitPrice   *string `json:"unit_price"  validate:"omitempty,decimal"`
}

// Patch converts the request to a domain patch.
func (r LineItemRequest) Patch() domain.LineItemPatch {
	p := domain.LineItemPatch{Description: r.Description, Quantity: r.Quantity}

	if r.UnitPrice != nil {
		price := parseDecimal(*r.UnitPrice)
		p.UnitPrice = &price
	}

	return p
}

// TaxRequest toggles tax.
type TaxRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// TaxRateRequest stages a tax rate given as a percentage, e.g. "8.25".
type TaxRateRequest struct {
	Percent string `json:"percent" validate:"required,decimal"`
}

// Rate returns the fractional rate.
func (r TaxRateRequest) Rate() decimal.Decimal {
	return domain.TaxRateFromPercent(parseDecimal(r.Percent))
}

// ScheduleEntryRequest edits a payment schedule row. Percentage is raw input:
// anything that is not a number counts as zero.
type ScheduleEntryRequest struct {
	Percentage  *string `json:"percentage"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// Patch converts the request to a domain patch.
func (r ScheduleEntryRequest) Patch() domain.ScheduleEntryPatch {
	return domain.ScheduleEntryPatch{Percentage: r.Percentage, Description: r.Description}
}

// RecurringRequest describes recurring billing.
type RecurringRequest struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"  validate:"omitempty,decimal"`
	Period  string `json:"period"  validate:"max=32"`
}

// HeaderRequest edits the free-form fields of a draft. Absent fields stay unchanged.
// An empty expires_at clears the expiry.
type HeaderRequest struct {
	ClientName     *string           `json:"client_name"     validate:"omitempty,max=200"`
	ClientEmail    *string           `json:"client_email"    validate:"omitempty,max=320"`
	QuoteNumber    *string           `json:"quote_number"    validate:"omitempty,max=64"`
	URL            *string           `json:"url"             validate:"omitempty,max=2048"`
	ExpiresAt      *string           `json:"expires_at"      validate:"omitempty,date"`
	Notes          *string           `json:"notes"`
	LegalTerms     *string           `json:"legal_terms"`
	ClientComments *string           `json:"client_comments"`
	Recurring      *RecurringRequest `json:"recurring"`
}

// Patch converts the request to a domain patch. The date was validated by the tags.
func (r HeaderRequest) Patch() domain.DraftHeaderPatch {
	p := domain.DraftHeaderPatch{
		ClientName:     r.ClientName,
		ClientEmail:    r.ClientEmail,
		QuoteNumber:    r.QuoteNumber,
		URL:            r.URL,
		Notes:          r.Notes,
		LegalTerms:     r.LegalTerms,
		ClientComments: r.ClientComments,
	}

	if r.ExpiresAt != nil {
		if strings.TrimSpace(*r.ExpiresAt) == "" {
			p.ClearExpiry = true
		} else if t, err := time.Parse(DateLayout, *r.ExpiresAt); err == nil {
			p.ExpiresAt = &t
		}
	}

	if r.Recurring != nil {
		p.Recurring = &domain.RecurringBilling{
			Enabled: r.Recurring.Enabled,
			Amount:  parseDecimal(r.Recurring.Amount),
			Period:  r.Recurring.Period,
		}
	}

	return p
}

// OpenQuoteRequest loads an existing quote into a draft.
type OpenQuoteRequest struct {
	QuoteNumber string `json:"quote_number" validate:"required,notblank"`
}

// StatusRequest sets a quote status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent accepted declined revision_requested"`
}

// FeedbackRequest is a client's reaction to a revision. The action is matched case-insensitively.
type FeedbackRequest struct {
	ClientEmail string `json:"client_email" validate:"required,email"`
	Action      string `json:"action"       validate:"required"`
	Comment     string `json:"comment"      validate:"max=5000"`
}

// --- responses ---

// TotalsResponse carries display amounts with two decimals.
type TotalsResponse struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// ScheduleStatusResponse is the payment schedule check.
type ScheduleStatusResponse struct {
	Total    string `json:"total"`
	Balanced bool   `json:"balanced"`
}

// LineItemResponse is one line item.
type LineItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

// ScheduleEntryResponse is one payment schedule row.
type ScheduleEntryResponse struct {
	ID          string `json:"id"`
	Percentage  string `json:"percentage"`
	Description string `json:"description"`
}

// RecurringResponse describes recurring billing.
type RecurringResponse struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"`
	Period  string `json:"period,omitempty"`
}

// SavedResponse tells the editor which persisted quote the draft maps to.
type SavedResponse struct {
	QuoteID    string    `json:"quote_id"`
	RevisionID string    `json:"revision_id"`
	SavedAt    time.Time `json:"saved_at"`
	ClientLink string    `json:"client_link,omitempty"`
}

// DraftResponse is the editor state.
type DraftResponse struct {
	ID             string                  `json:"id"`
	ClientName     string                  `json:"client_name"`
	ClientEmail    string                  `json:"client_email"`
	QuoteNumber    string                  `json:"quote_number"`
	URL            string                  `json:"url"`
	ExpiresAt      string                  `json:"expires_at,omitempty"`
	Notes          string                  `json:"notes"`
	LegalTerms     string                  `json:"legal_terms"`
	ClientComments string                  `json:"client_comments"`
	Recurring      RecurringResponse       `json:"recurring"`
	TaxEnabled     bool                    `json:"tax_enabled"`
	TaxPercent     string                  `json:"tax_percent"`
	StagedPercent  string                  `json:"staged_tax_percent,omitempty"`
	Items          []LineItemResponse      `json:"items"`
	Schedule       []ScheduleEntryResponse `json:"schedule"`
	ScheduleStatus ScheduleStatusResponse  `json:"schedule_status"`
	Totals         TotalsResponse          `json:"totals"`
	Saved          *SavedResponse          `json:"saved,omitempty"`
}

// NewDraftResponse converts a draft. link builds the client view link of a revision.
func NewDraftResponse(d *domain.QuoteDraft, link func(revisionID string) string) DraftResponse {
	resp := DraftResponse{
		ID:             d.ID,
		ClientName:     d.ClientName,
		ClientEmail:    d.ClientEmail,
		QuoteNumber:    d.QuoteNumber,
		URL:            d.URL,
		ExpiresAt:      formatDate(d.ExpiresAt),
		Notes:          d.Notes,
		LegalTerms:     d.LegalTerms,
		ClientComments: d.ClientComments,
		Recurring:      newRecurring(d.Recurring),
		TaxEnabled:     d.TaxEnabled,
		TaxPercent:     domain.TaxRatePercent(d.TaxRate).String(),
		Items:          newLineItems(d.Items),
		Schedule:       make([]ScheduleEntryResponse, 0, len(d.Schedule)),
		ScheduleStatus: newScheduleStatus(d.ScheduleStatus()),
		Totals:         NewTotals(d.Totals),
	}

	if staged, ok := d.StagedTaxRate(); ok {
		resp.StagedPercent = domain.TaxRatePercent(staged).String()
	}

	for _, e := range d.Schedule {
		resp.Schedule = append(resp.Schedule, ScheduleEntryResponse{
			ID:          e.ID,
			Percentage:  e.Percentage.String(),
			Description: e.Description,
		})
	}

	if d.Saved != nil {
		resp.Saved = &SavedResponse{
			QuoteID:    d.Saved.QuoteID,
			RevisionID: d.Saved.RevisionID,
			SavedAt:    d.Saved.SavedAt,
		}

		if link != nil {
			resp.Saved.ClientLink = link(d.Saved.RevisionID)
		}
	}

	return resp
}

// SaveResponse reports a successful save.
type SaveResponse struct {
	QuoteID        string                 `json:"quote_id"`
	RevisionID     string                 `json:"revision_id"`
	ClientID       string                 `json:"client_id"`
	QuoteCreated   bool                   `json:"quote_created"`
	ClientCreated  bool                   `json:"client_created"`
	ItemCount      int                    `json:"item_count"`
	Totals         TotalsResponse         `json:"totals"`
	ScheduleStatus ScheduleStatusResponse `json:"schedule_status"`
	SavedAt        time.Time              `json:"saved_at"`
	Message        string                 `json:"message"`
	Draft          DraftResponse          `json:"draft"`
}

// NewSaveResponse converts a save result.
func NewSaveResponse(r domain.SaveResult, draft DraftResponse) SaveResponse {
	msg := "Quote saved"
	if r.QuoteCreated {
		msg = "Quote created"
	}

	if !r.Schedule.Balanced && len(draft.Schedule) > 0 {
		msg += "; payment schedule adds up to " + domain.FormatMoney(r.Schedule.Total) + "%, not 100%"
	}

	return SaveResponse{
		QuoteID:        r.QuoteID,
		RevisionID:     r.RevisionID,
		ClientID:       r.ClientID,
		QuoteCreated:   r.QuoteCreated,
		ClientCreated:  r.ClientCreated,
		ItemCount:      r.ItemCount,
		Totals:         NewTotals(r.Totals),
		ScheduleStatus: newScheduleStatus(r.Schedule),
		SavedAt:        r.SavedAt,
		Message:        msg,
		Draft:          draft,
	}
}

// DeliveryResponse reports how a quote email went out.
type DeliveryResponse struct {
	Channel string    `json:"channel"`
	Link    string    `json:"link,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// NewDeliveryResponse converts a delivery.
func NewDeliveryResponse(d ports.Delivery) DeliveryResponse {
	return DeliveryResponse{Channel: d.Channel, Link: d.Link, SentAt: d.SentAt}
}

// SelectionResponse reports where an open-quote request stands.
type SelectionResponse struct {
	State       string `json:"state"`
	QuoteNumber string `json:"quote_number,omitempty"`
	RevisionID  string `json:"revision_id,omitempty"`
}

// NewSelectionResponse converts a selection snapshot.
func NewSelectionResponse(s domain.SelectionSnapshot) SelectionResponse {
	return SelectionResponse{State: s.State.String(), QuoteNumber: s.QuoteNumber, RevisionID: s.RevisionID}
}

// QuoteSummaryResponse is a search result row.
type QuoteSummaryResponse struct {
	QuoteID     string    `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
	ClientName  string    `json:"client_name"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewQuoteSummaries converts search results.
func NewQuoteSummaries(in []domain.QuoteSummary) []QuoteSummaryResponse {
	out := make([]QuoteSummaryResponse, 0, len(in))
	for _, q := range in {
		out = append(out, QuoteSummaryResponse{
			QuoteID:     q.QuoteID,
			QuoteNumber: q.QuoteNumber,
			ClientName:  q.ClientName,
			Status:      string(q.Status),
			UpdatedAt:   q.UpdatedAt,
		})
	}

	return out
}

// QuoteResponse is a persisted quote header.
type QuoteResponse struct {
	ID              string    `json:"id"`
	QuoteNumber     string    `json:"quote_number"`
	ClientID        string    `json:"client_id"`
	Status          string    `json:"status"`
	CurrentRevision int       `json:"current_revision"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewQuoteResponse converts a persisted quote.
func NewQuoteResponse(q domain.PersistedQuote) QuoteResponse {
	return QuoteResponse{
		ID:              q.ID,
		QuoteNumber:     q.QuoteNumber,
		ClientID:        q.ClientID,
		Status:          string(q.Status),
		CurrentRevision: q.CurrentRevisionNumber(),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

// RevisionSummaryResponse is one entry of a revision list.
type RevisionSummaryResponse struct {
	ID             string    `json:"id"`
	RevisionNumber int       `json:"revision_number"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewRevisionSummaries converts a revision list.
func NewRevisionSummaries(in []domain.RevisionSummary) []RevisionSummaryResponse {
	out := make([]RevisionSummaryResponse, 0, len(in))
	for _, r := range in {
		out = append(out, RevisionSummaryResponse{ID: r.ID, RevisionNumber: r.RevisionNumber, UpdatedAt: r.UpdatedAt})
	}

	return out
}

// HistoryEntryResponse is one local save record.
type HistoryEntryResponse struct {
	QuoteID    string    `json:"quote_id"`
	RevisionID string    `json:"revision_id"`
	Total      string    `json:"total"`
	SavedAt    time.Time `json:"saved_at"`
	Current    bool      `json:"current"`
}

// NewHistory converts save history entries.
func NewHistory(in []domain.SaveHistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(in))
	for _, e := range in {
		out = append(out, HistoryEntryResponse{
			QuoteID:    e.QuoteID,
			RevisionID: e.RevisionID,
			Total:      domain.FormatMoney(e.Total),
			SavedAt:    e.SavedAt,
			Current:    e.Current,
		})
	}

	return out
}

// ClientResponse is a client row.
type ClientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewClients converts clients.
func NewClients(in []domain.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(in))
	for _, c := range in {
		out = append(out, ClientResponse{ID: c.ID, Name: c.Name, Email: c.Email})
	}

	return out
}

// FeedbackResponse is one stored feedback record.
type FeedbackResponse struct {
	ID          string    `json:"id"`
	RevisionID  string    `json:"revision_id"`
	ClientEmail string    `json:"client_email"`
	Action      string    `json:"action"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFeedbackResponse converts a feedback record.
func NewFeedbackResponse(f domain.ClientFeedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		RevisionID:  f.RevisionID,
		ClientEmail: f.ClientEmail,
		Action:      string(f.Action),
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
	}
}

// ClientViewResponse is the read-only client page of one revision.
type ClientViewResponse struct {
	QuoteNumber    string                  `json:"quote_number"`
	Status         string                  `json:"status"`
	RevisionID     string                  `json:"revision_id"`
	RevisionNumber int                     `json:"revision_number"`
	Client         ClientResponse          `json:"client"`
	ExpiresAt      string                  `json:"expires_at,omitempty"`
	Items          []LineItemResponse      `json:"items"`
	TaxEnabled     bool                    `json:"tax_enabled"`
	TaxPercent     string                  `json:"tax_percent"`
	Totals         TotalsResponse          `json:"totals"`
	Recurring      RecurringResponse       `json:"recurring"`
	Schedule       []ScheduleEntryResponse `json:"schedule"`
	ScheduleStatus ScheduleStatusResponse  `json:"schedule_status"`
	Notes          string                  `json:"notes,omitempty"`
	LegalTerms     string                  `json:"legal_terms,omitempty"`
	Comments       []string                `json:"comments"`
	Feedback       []FeedbackResponse      `json:"feedback"`
	ViewCount      int                     `json:"view_count"`
	Documents      []string                `json:"documents"`
}

// NewClientViewResponse converts a client view. formats lists the downloadable documents.
func NewClientViewResponse(v domain.ClientView, formats []string) ClientViewResponse {
	b := v.Bundle

	resp := ClientViewResponse{
		QuoteNumber:    b.Quote.QuoteNumber,
		Status:         string(b.Quote.Status),
		RevisionID:     b.Revision.ID,
		RevisionNumber: b.Revision.RevisionNumber,
		Client:         ClientResponse{ID: b.Client.ID, Name: b.Client.Name, Email: b.Client.Email},
		ExpiresAt:      formatDate(b.Revision.ExpiresAt),
		Items:          newLineItems(b.LineItems()),
		TaxEnabled:     b.Revision.TaxEnabled,
		TaxPercent:     domain.TaxRatePercent(b.Revision.TaxRate).String(),
		Totals:         NewTotals(v.Totals),
		Recurring:      newRecurring(b.Revision.Recurring),
		Schedule:       make([]ScheduleEntryResponse, 0, len(b.PaymentTerms)),
		ScheduleStatus: newScheduleStatus(v.Schedule),
		Notes:          b.Revision.Notes,
		Comments:       make([]string, 0, len(b.Comments)),
		Feedback:       make([]FeedbackResponse, 0, len(v.Feedback)),
		ViewCount:      b.Revision.ViewCount,
		Documents:      formats,
	}

	if resp.Documents == nil {
		resp.Documents = []string{}
	}

	if b.LegalTerms != nil {
		resp.LegalTerms = b.LegalTerms.Content
	}

	for _, t := range b.PaymentTerms {
		resp.Schedule = append(resp.Schedule, ScheduleEntryResponse{
			ID:          t.ID,
			Percentage:  t.Percentage.String(),
			Description: t.Description,
		})
	}

	for _, c := range b.Comments {
		resp.Comments = append(resp.Comments, c.Content)
	}

	for _, f := range v.Feedback {
		resp.Feedback = append(resp.Feedback, NewFeedbackResponse(f))
	}

	return resp
}

// NewTotals formats totals for display.
func NewTotals(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal: domain.FormatMoney(t.Subtotal),
		Tax:      domain.FormatMoney(t.Tax),
		Total:    domain.FormatMoney(t.Total),
	}
}

func newScheduleStatus(s domain.ScheduleStatus) ScheduleStatusResponse {
	return ScheduleStatusResponse{Total: domain.FormatMoney(s.Total), Balanced: s.Balanced}
}

func newRecurring(r domain.RecurringBilling) RecurringResponse {
	return RecurringResponse{Enabled: r.Enabled, Amount: domain.FormatMoney(r.Amount), Period: r.Period}
}

func newLineItems(items []domain.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, LineItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   domain.FormatMoney(it.UnitPrice),
			Total:       domain.FormatMoney(it.Total),
		})
	}

	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(DateLayout)
}

// parseDecimal reads a value already checked by the decimal validator.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}

	return d
}
