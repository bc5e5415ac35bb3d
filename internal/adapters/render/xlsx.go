package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

const (
	sheetItems    = "Quote"
	sheetSchedule = "Payment schedule"
)

// XLSX renders a client view as a workbook with an items sheet and a schedule sheet.
type XLSX struct{}

var _ ports.DocumentRenderer = XLSX{}

// Format implements ports.DocumentRenderer.
func (XLSX) Format() string { return FormatXLSX }

// Render implements ports.DocumentRenderer.
func (XLSX) Render(ctx context.Context, view domain.ClientView) (ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return ports.Document{}, err
	}

	b := view.Bundle

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetItems); err != nil {
		return ports.Document{}, fmt.Errorf("render xlsx: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return ports.Document{}, fmt.Errorf("render xlsx: %w", err)
	}

	w := &sheetWriter{f: f, sheet: sheetItems}

	w.row(bold, "Quote", b.Quote.QuoteNumber)
	w.row(0, "Client", b.Client.Name)
	w.row(0, "Email", b.Client.Email)

	if b.Revision.ExpiresAt != nil {
		w.row(0, "Valid until", b.Revision.ExpiresAt.Format("2006-01-02"))
	}

	w.next++
	w.row(bold, "Description", "Quantity", "Unit price", "Total")

	for _, it := range b.LineItems() {
		w.row(0, it.Description, it.Quantity, it.UnitPrice.InexactFloat64(), it.Total.InexactFloat64())
	}

	w.next++
	w.row(0, "", "", "Subtotal", view.Totals.Subtotal.Round(2).InexactFloat64())

	if b.Revision.TaxEnabled {
		w.row(0, "", "", "Tax rate %", domain.TaxRatePercent(b.Revision.TaxRate).InexactFloat64())
		w.row(0, "", "", "Tax", view.Totals.Tax.Round(2).InexactFloat64())
	}

	w.row(bold, "", "", "Total", view.Totals.Total.Round(2).InexactFloat64())

	if b.Revision.Recurring.Enabled {
		w.row(0, "", "", "Recurring "+b.Revision.Recurring.Period, b.Revision.Recurring.Amount.InexactFloat64())
	}

	if w.err != nil {
		return ports.Document{}, fmt.Errorf("render xlsx: %w", w.err)
	}

	_ = f.SetColWidth(sheetItems, "A", "A", 40)
	_ = f.SetColWidth(sheetItems, "B", "D", 14)

	if len(b.PaymentTerms) > 0 {
		if _, err := f.NewSheet(sheetSchedule); err != nil {
			return ports.Document{}, fmt.Errorf("render xlsx: %w", err)
		}

		s := &sheetWriter{f: f, sheet: sheetSchedule}
		s.row(bold, "Percentage", "Description")

		for _, t := range b.PaymentTerms {
			s.row(0, t.Percentage.InexactFloat64(), t.Description)
		}

		s.row(bold, view.Schedule.Total.InexactFloat64(), balanceLabel(view.Schedule))

		if s.err != nil {
			return ports.Document{}, fmt.Errorf("render xlsx: %w", s.err)
		}

		_ = f.SetColWidth(sheetSchedule, "B", "B", 40)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return ports.Document{}, fmt.Errorf("render xlsx: %w", err)
	}

	return ports.Document{
		Filename:    filename(b, FormatXLSX),
		ContentType: contentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}

func balanceLabel(s domain.ScheduleStatus) string {
	if s.Balanced {
		return "Total"
	}

	return "Total (does not add up to 100%)"
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func (w *sheetWriter) row(style int, values ...any) {
	w.next++

	if w.err != nil {
		return
	}

	start, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}

	if err := w.f.SetSheetRow(w.sheet, start, &values); err != nil {
		w.err = err
		return
	}

	if style == 0 {
		return
	}

	end, err := excelize.CoordinatesToCellName(len(values), w.next)
	if err != nil {
		w.err = err
		return
	}

	w.err = w.f.SetCellStyle(w.sheet, start, end, style)
}
