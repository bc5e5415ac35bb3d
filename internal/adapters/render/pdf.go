// Package render turns a client view into downloadable documents.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "January 2, 2006"
	fontFamily = "Helvetica"

	maxDescriptionRunes = 60
)

// PDF renders a client view as an A4 quote document.
type PDF struct {
	now func() time.Time
}

var _ ports.DocumentRenderer = (*PDF)(nil)

// NewPDF creates a PDF renderer.
func NewPDF() *PDF {
	return &PDF{now: time.Now}
}

// Format implements ports.DocumentRenderer.
func (*PDF) Format() string { return FormatPDF }

// Render implements ports.DocumentRenderer.
func (r *PDF) Render(ctx context.Context, view domain.ClientView) (ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return ports.Document{}, err
	}

	b := view.Bundle

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Quote "+b.Quote.QuoteNumber), false)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.Cell(0, 10, tr("Quote "+b.Quote.QuoteNumber))
	pdf.Ln(10)

	pdf.SetFont(fontFamily, "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Client: %s <%s>", b.Client.Name, b.Client.Email)))
	pdf.Ln(6)

	if b.Revision.ExpiresAt != nil {
		pdf.Cell(0, 6, "Valid until: "+b.Revision.ExpiresAt.Format(dateLayout))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(100, 7, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)

	for _, it := range b.LineItems() {
		pdf.CellFormat(100, 6, tr(trim(it.Description, maxDescriptionRunes)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, domain.FormatMoney(it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, domain.FormatMoney(it.Total), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	totalRow(pdf, "Subtotal", view.Totals.Subtotal, false)

	if b.Revision.TaxEnabled {
		label := fmt.Sprintf("Tax (%s%%)", domain.TaxRatePercent(b.Revision.TaxRate).String())
		totalRow(pdf, label, view.Totals.Tax, false)
	}

	totalRow(pdf, "Total", view.Totals.Total, true)

	if b.Revision.Recurring.Enabled {
		pdf.Ln(2)
		pdf.SetFont(fontFamily, "", 10)
		pdf.Cell(0, 6, tr(fmt.Sprintf("Recurring: %s %s",
			domain.FormatMoney(b.Revision.Recurring.Amount), b.Revision.Recurring.Period)))
		pdf.Ln(6)
	}

	if len(b.PaymentTerms) > 0 {
		section(pdf, "Payment schedule")

		for _, t := range b.PaymentTerms {
			pdf.Cell(0, 6, tr(fmt.Sprintf("%s%%  %s", t.Percentage.String(), t.Description)))
			pdf.Ln(6)
		}
	}

	if b.Revision.Notes != "" {
		section(pdf, "Notes")
		pdf.MultiCell(0, 5, tr(b.Revision.Notes), "", "L", false)
	}

	if b.LegalTerms != nil && b.LegalTerms.Content != "" {
		section(pdf, "Terms")
		pdf.MultiCell(0, 5, tr(b.LegalTerms.Content), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "", 8)
	pdf.Cell(0, 5, "Generated "+r.now().UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return ports.Document{}, fmt.Errorf("render pdf: %w", err)
	}

	return ports.Document{
		Filename:    filename(b, FormatPDF),
		ContentType: contentTypePDF,
		Body:        buf.Bytes(),
	}, nil
}

func totalRow(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, bold bool) {
	style := ""
	if bold {
		style = "B"
	}

	pdf.SetFont(fontFamily, style, 11)
	pdf.CellFormat(150, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, domain.FormatMoney(amount), "", 1, "R", false, 0, "")
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont(fontFamily, "", 10)
}

func filename(b domain.RevisionBundle, ext string) string {
	name := b.Quote.QuoteNumber
	if name == "" {
		name = b.Revision.ID
	}

	return fmt.Sprintf("quote-%s-r%d.%s", sanitize(name), b.Revision.RevisionNumber, ext)
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}

	return string(out)
}

func trim(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}

	return string(r[:maxRunes-3]) + "..."
}
