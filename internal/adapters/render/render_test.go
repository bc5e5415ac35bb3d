package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

func sampleView(withTerms bool) domain.ClientView {
	expires := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	b := domain.RevisionBundle{
		Revision: domain.QuoteRevision{
			ID:             "r-1",
			RevisionNumber: 1,
			ExpiresAt:      &expires,
			TaxEnabled:     true,
			TaxRate:        decimal.RequireFromString("0.0825"),
			Notes:          "Includes onsite setup.",
		},
		Quote:  domain.PersistedQuote{ID: "q-1", QuoteNumber: "Q-2026/001"},
		Client: domain.Client{ID: "c-1", Name: "Café Münster", Email: "hello@cafe.test"},
		Items: []domain.RevisionItem{
			{Description: "Espresso machine", Quantity: 1, UnitPrice: decimal.NewFromInt(200)},
			{Description: "Grinder", Quantity: 2, UnitPrice: decimal.RequireFromString("25.50")},
		},
		LegalTerms: &domain.LegalTerms{Content: "Payment due within 30 days."},
	}

	if withTerms {
		b.PaymentTerms = []domain.PaymentTerm{
			{Percentage: decimal.NewFromInt(50), Description: "Deposit"},
			{Percentage: decimal.NewFromInt(40), Description: "On delivery"},
		}
	}

	return domain.NewClientView(b, nil)
}

func TestPDF_Render(t *testing.T) {
	r := NewPDF()
	r.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }

	doc, err := r.Render(context.Background(), sampleView(true))
	require.NoError(t, err)

	assert.Equal(t, FormatPDF, r.Format())
	assert.Equal(t, "quote-Q-2026_001-r1.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF-")))
}

func TestPDF_RenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDF().Render(ctx, sampleView(false))
	require.ErrorIs(t, err, context.Canceled)
}

func TestXLSX_Render(t *testing.T) {
	doc, err := XLSX{}.Render(context.Background(), sampleView(true))
	require.NoError(t, err)

	assert.Equal(t, "quote-Q-2026_001-r1.xlsx", doc.Filename)
	assert.Equal(t, contentTypeXLSX, doc.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{sheetItems, sheetSchedule}, f.GetSheetList())

	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)

		return v
	}

	assert.Equal(t, "Q-2026/001", cell(sheetItems, "B1"))
	assert.Equal(t, "Café Münster", cell(sheetItems, "B2"))
	assert.Equal(t, "2026-12-31", cell(sheetItems, "B4"))
	assert.Equal(t, "Description", cell(sheetItems, "A6"))
	assert.Equal(t, "Espresso machine", cell(sheetItems, "A7"))
	assert.Equal(t, "Grinder", cell(sheetItems, "A8"))
	assert.Equal(t, "Subtotal", cell(sheetItems, "C10"))
	assert.Equal(t, "Total", cell(sheetItems, "C13"))

	assert.Equal(t, "Deposit", cell(sheetSchedule, "B2"))
	assert.Equal(t, "Total (does not add up to 100%)", cell(sheetSchedule, "B4"))
}

func TestXLSX_RenderWithoutSchedule(t *testing.T) {
	doc, err := XLSX{}.Render(context.Background(), sampleView(false))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{sheetItems}, f.GetSheetList())
}

func TestFilename(t *testing.T) {
	b := domain.RevisionBundle{Revision: domain.QuoteRevision{ID: "rev 9", RevisionNumber: 1}}

	assert.Equal(t, "quote-rev_9-r1.pdf", filename(b, FormatPDF))
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "short", trim("short", 10))
	assert.Equal(t, "abcdefg...", trim("abcdefghijklmnop", 10))
}
