package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"60", "60"},
		{" 12.5 ", "12.5"},
		{"40%", "40"},
		{"", "0"},
		{"abc", "0"},
		{"1e", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.True(t, ParsePercentage(tt.raw).Equal(dec(tt.want)), "got %s", ParsePercentage(tt.raw))
		})
	}
}

func TestCheckSchedule(t *testing.T) {
	tests := []struct {
		name     string
		entries  []PaymentScheduleEntry
		display  string
		balanced bool
	}{
		{
			name:     "balanced",
			entries:  []PaymentScheduleEntry{{Percentage: dec("60")}, {Percentage: dec("40")}},
			display:  "100.00",
			balanced: true,
		},
		{
			name:     "short",
			entries:  []PaymentScheduleEntry{{Percentage: dec("60")}, {Percentage: dec("30")}},
			display:  "90.00",
			balanced: false,
		},
		{
			name:     "fractional balanced",
			entries:  []PaymentScheduleEntry{{Percentage: dec("33.3")}, {Percentage: dec("33.3")}, {Percentage: dec("33.4")}},
			display:  "100.00",
			balanced: true,
		},
		{
			name:     "empty",
			display:  "0.00",
			balanced: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := CheckSchedule(tt.entries)

			assert.Equal(t, tt.display, FormatMoney(status.Total))
			assert.Equal(t, tt.balanced, status.Balanced)
		})
	}
}

func TestRecompute(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, UnitPrice: dec("50")},
		{Quantity: 3, UnitPrice: dec("0.333")},
		{Quantity: 0, UnitPrice: dec("1000")},
	}

	off := Recompute(items, false, dec("0.08"))
	assert.True(t, off.Subtotal.Equal(dec("100.999")))
	assert.True(t, off.Tax.IsZero())
	assert.Equal(t, "101.00", FormatMoney(off.Total))

	on := Recompute(items, true, dec("0.08"))
	assert.True(t, on.Tax.Equal(dec("8.07992")))
	assert.Equal(t, "109.08", FormatMoney(on.Total))

	empty := Recompute(nil, true, dec("0.08"))
	assert.True(t, empty.Total.IsZero())
}

func TestTaxRateConversions(t *testing.T) {
	assert.True(t, TaxRateFromPercent(dec("10")).Equal(dec("0.1")))
	assert.True(t, TaxRatePercent(dec("0.08")).Equal(dec("8")))
}

func TestRevisionBundle_TotalsFromPersistedFlags(t *testing.T) {
	bundle := RevisionBundle{
		Revision: QuoteRevision{TaxEnabled: true, TaxRate: TaxRateFromPercent(dec("10"))},
		Items: []RevisionItem{
			{Quantity: 1, UnitPrice: dec("120")},
			{Quantity: 4, UnitPrice: dec("20")},
		},
	}

	totals := bundle.Totals()

	assert.Equal(t, "200.00", FormatMoney(totals.Subtotal))
	assert.Equal(t, "20.00", FormatMoney(totals.Tax))
	assert.Equal(t, "220.00", FormatMoney(totals.Total))
}

func TestRevisionBundle_ToDraft(t *testing.T) {
	bundle := RevisionBundle{
		Quote:        PersistedQuote{ID: "q1", QuoteNumber: "1000"},
		Client:       Client{Name: "Acme", Email: "acme@example.com"},
		Revision:     QuoteRevision{ID: "r1", TaxRate: dec("0.08"), Notes: "n"},
		Items:        []RevisionItem{{ID: "i1", Quantity: 3, UnitPrice: dec("50")}},
		PaymentTerms: []PaymentTerm{{ID: "p1", Percentage: dec("100"), Description: "Upfront"}},
		LegalTerms:   &LegalTerms{Content: "terms"},
		Comments:     []ClientComment{{Content: "hello"}},
	}

	d := bundle.ToDraft("bob")

	assert.Equal(t, "1000", d.QuoteNumber)
	assert.Equal(t, "Acme", d.ClientName)
	assert.Equal(t, "terms", d.LegalTerms)
	assert.Equal(t, "hello", d.ClientComments)
	assert.Len(t, d.Items, 1)
	assert.Equal(t, "150.00", FormatMoney(d.Totals.Total))
	assert.True(t, d.ScheduleStatus().Balanced)
	assert.Equal(t, "r1", d.Saved.RevisionID)
}

func TestPersistedQuote_CurrentRevisionNumber(t *testing.T) {
	assert.Equal(t, 1, PersistedQuote{}.CurrentRevisionNumber())
	assert.Equal(t, 3, PersistedQuote{CurrentRevision: 3}.CurrentRevisionNumber())
}
