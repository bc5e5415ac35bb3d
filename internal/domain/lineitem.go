package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newID generates identifiers for draft rows. Tests replace it for stable IDs.
var newID = uuid.NewString

// LineItem is one priced row of a quote.
type LineItem struct {
	ID          string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal

	// Total is Quantity × UnitPrice, refreshed on every quantity or price change.
	Total decimal.Decimal
}

// LineItemPatch carries the fields of a line item edit. Nil fields are left as they are.
type LineItemPatch struct {
	Description *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
}

func (li LineItem) lineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li *LineItem) refresh() {
	li.Total = li.lineTotal()
}

func validateQuantity(qty int) error {
	if qty < 0 {
		return NewValidationErrorWithValue("quantity", "must not be negative", qty)
	}

	return nil
}

func validateUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return NewValidationErrorWithValue("unit_price", "must not be negative", price.String())
	}

	return nil
}

// NewLineItem builds a line item with its total already computed.
func NewLineItem(description string, qty int, unitPrice decimal.Decimal) (LineItem, error) {
	if err := validateQuantity(qty); err != nil {
		return LineItem{}, err
	}

	if err := validateUnitPrice(unitPrice); err != nil {
		return LineItem{}, err
	}

	li := LineItem{
		ID:          newID(),
		Description: description,
		Quantity:    qty,
		UnitPrice:   unitPrice,
	}
	li.refresh()

	return li, nil
}

func (li *LineItem) apply(p LineItemPatch) error {
	if p.Quantity != nil {
		if err := validateQuantity(*p.Quantity); err != nil {
			return err
		}
	}

	if p.UnitPrice != nil {
		if err := validateUnitPrice(*p.UnitPrice); err != nil {
			return err
		}
	}

	if p.Description != nil {
		li.Description = *p.Description
	}

	if p.Quantity != nil {
		li.Quantity = *p.Quantity
	}

	if p.UnitPrice != nil {
		li.UnitPrice = *p.UnitPrice
	}

	li.refresh()

	return nil
}
