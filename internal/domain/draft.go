package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecurringBilling describes an optional repeating charge on top of the quote total.
type RecurringBilling struct {
	Enabled bool
	Amount  decimal.Decimal
	Period  string
}

// SavedMarker records which persisted quote and revision the draft was last saved to.
type SavedMarker struct {
	QuoteID    string
	RevisionID string
	SavedAt    time.Time
}

// DraftHeader groups the free-form fields of a draft.
type DraftHeader struct {
	ClientName     string
	ClientEmail    string
	QuoteNumber    string
	URL            string
	ExpiresAt      *time.Time
	Notes          string
	LegalTerms     string
	ClientComments string
	Recurring      RecurringBilling
}

// DraftHeaderPatch edits header fields. Nil fields are left as they are.
type DraftHeaderPatch struct {
	ClientName     *string
	ClientEmail    *string
	QuoteNumber    *string
	URL            *string
	ExpiresAt      *time.Time
	ClearExpiry    bool
	Notes          *string
	LegalTerms     *string
	ClientComments *string
	Recurring      *RecurringBilling
}

// QuoteDraft is the quote being edited in one session.
// Every mutator keeps Totals in sync with the items and tax settings.
type QuoteDraft struct {
	ID    string
	Owner string
	DraftHeader

	TaxEnabled bool
	// TaxRate is fractional: 0.08 means 8%.
	TaxRate decimal.Decimal

	Items    []LineItem
	Schedule []PaymentScheduleEntry
	Totals   Totals

	Saved *SavedMarker

	stagedTaxRate *decimal.Decimal
}

// NewQuoteDraft starts a draft with one empty line item and tax disabled.
func NewQuoteDraft(owner string, defaultTaxRate decimal.Decimal) *QuoteDraft {
	d := &QuoteDraft{
		ID:      newID(),
		Owner:   owner,
		TaxRate: defaultTaxRate,
		Items: []LineItem{{
			ID:        newID(),
			Quantity:  1,
			UnitPrice: decimal.Zero,
		}},
	}
	d.recompute()

	return d
}

func (d *QuoteDraft) recompute() {
	d.Totals = Recompute(d.Items, d.TaxEnabled, d.TaxRate)
}

func (d *QuoteDraft) itemIndex(id string) int {
	return slices.IndexFunc(d.Items, func(li LineItem) bool { return li.ID == id })
}

func (d *QuoteDraft) entryIndex(id string) int {
	return slices.IndexFunc(d.Schedule, func(e PaymentScheduleEntry) bool { return e.ID == id })
}

// AddLineItem appends a line item.
func (d *QuoteDraft) AddLineItem(description string, qty int, unitPrice decimal.Decimal) (LineItem, error) {
	li, err := NewLineItem(description, qty, unitPrice)
	if err != nil {
		return LineItem{}, err
	}

	d.Items = append(d.Items, li)
	d.recompute()

	return li, nil
}

// UpdateLineItem edits a line item in place and refreshes its total.
func (d *QuoteDraft) UpdateLineItem(id string, patch LineItemPatch) (LineItem, error) {
	i := d.itemIndex(id)
	if i < 0 {
		return LineItem{}, NewNotFoundError("line item", id)
	}

	// Apply to a copy so a rejected patch leaves the row as it was.
	li := d.Items[i]
	if err := li.apply(patch); err != nil {
		return LineItem{}, err
	}

	d.Items[i] = li
	d.recompute()

	return li, nil
}

// RemoveLineItem deletes a line item. Removing the last one returns ErrLastLineItem.
func (d *QuoteDraft) RemoveLineItem(id string) error {
	i := d.itemIndex(id)
	if i < 0 {
		return NewNotFoundError("line item", id)
	}

	if len(d.Items) == 1 {
		return ErrLastLineItem
	}

	d.Items = slices.Delete(d.Items, i, i+1)
	d.recompute()

	return nil
}

// SetTaxEnabled toggles tax. The committed rate is kept so toggling back restores the same totals.
func (d *QuoteDraft) SetTaxEnabled(enabled bool) {
	d.TaxEnabled = enabled
	d.recompute()
}

// StageTaxRate holds a proposed rate without touching the committed rate or the totals.
func (d *QuoteDraft) StageTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return NewValidationErrorWithValue("tax_rate", "must not be negative", rate.String())
	}

	d.stagedTaxRate = &rate

	return nil
}

// StagedTaxRate returns the pending rate, if any.
func (d *QuoteDraft) StagedTaxRate() (decimal.Decimal, bool) {
	if d.stagedTaxRate == nil {
		return decimal.Zero, false
	}

	return *d.stagedTaxRate, true
}

// ConfirmTaxRate commits the staged rate and recomputes. It reports false when nothing was staged.
func (d *QuoteDraft) ConfirmTaxRate() bool {
	if d.stagedTaxRate == nil {
		return false
	}

	d.TaxRate = *d.stagedTaxRate
	d.stagedTaxRate = nil
	d.recompute()

	return true
}

// CancelTaxRate drops the staged rate.
func (d *QuoteDraft) CancelTaxRate() {
	d.stagedTaxRate = nil
}

// AddScheduleEntry appends a blank zero-percent row.
func (d *QuoteDraft) AddScheduleEntry() PaymentScheduleEntry {
	e := PaymentScheduleEntry{ID: newID(), Percentage: decimal.Zero}
	d.Schedule = append(d.Schedule, e)

	return e
}

// UpdateScheduleEntry edits a schedule row.
func (d *QuoteDraft) UpdateScheduleEntry(id string, patch ScheduleEntryPatch) (PaymentScheduleEntry, error) {
	i := d.entryIndex(id)
	if i < 0 {
		return PaymentScheduleEntry{}, NewNotFoundError("payment schedule entry", id)
	}

	if patch.Percentage != nil {
		d.Schedule[i].Percentage = ParsePercentage(*patch.Percentage)
	}

	if patch.Description != nil {
		d.Schedule[i].Description = *patch.Description
	}

	return d.Schedule[i], nil
}

// RemoveScheduleEntry deletes a schedule row. There is no minimum count.
func (d *QuoteDraft) RemoveScheduleEntry(id string) error {
	i := d.entryIndex(id)
	if i < 0 {
		return NewNotFoundError("payment schedule entry", id)
	}

	d.Schedule = slices.Delete(d.Schedule, i, i+1)

	return nil
}

// ScheduleStatus reports the schedule sum and whether it balances to 100.
func (d *QuoteDraft) ScheduleStatus() ScheduleStatus {
	return CheckSchedule(d.Schedule)
}

// ApplyHeader edits the header fields.
func (d *QuoteDraft) ApplyHeader(p DraftHeaderPatch) {
	setString(&d.ClientName, p.ClientName)
	setString(&d.ClientEmail, p.ClientEmail)
	setString(&d.QuoteNumber, p.QuoteNumber)
	setString(&d.URL, p.URL)
	setString(&d.Notes, p.Notes)
	setString(&d.LegalTerms, p.LegalTerms)
	setString(&d.ClientComments, p.ClientComments)

	switch {
	case p.ClearExpiry:
		d.ExpiresAt = nil
	case p.ExpiresAt != nil:
		t := *p.ExpiresAt
		d.ExpiresAt = &t
	}

	if p.Recurring != nil {
		d.Recurring = *p.Recurring
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// ValidateForSave checks the fields a save needs before any store call is made.
func (d *QuoteDraft) ValidateForSave() error {
	verr := &ValidationError{}

	if strings.TrimSpace(d.QuoteNumber) == "" {
		verr.Add("quote_number", "is required")
	}

	if strings.TrimSpace(d.ClientName) == "" {
		verr.Add("client_name", "is required")
	}

	if len(d.Items) == 0 {
		verr.Add("items", "at least one line item is required")
	}

	return verr.OrNil()
}

// Clone returns a deep copy. The save workflow works on a clone so the session draft
// only changes once the save succeeds.
func (d *QuoteDraft) Clone() *QuoteDraft {
	c := *d
	c.Items = slices.Clone(d.Items)
	c.Schedule = slices.Clone(d.Schedule)

	if d.ExpiresAt != nil {
		t := *d.ExpiresAt
		c.ExpiresAt = &t
	}

	if d.Saved != nil {
		s := *d.Saved
		c.Saved = &s
	}

	if d.stagedTaxRate != nil {
		r := *d.stagedTaxRate
		c.stagedTaxRate = &r
	}

	return &c
}

// MarkSaved records a successful save.
func (d *QuoteDraft) MarkSaved(m SavedMarker) {
	d.Saved = &m
}
