package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentScheduleEntry is one installment row: a share of the total and what it is for.
type PaymentScheduleEntry struct {
	ID          string
	Percentage  decimal.Decimal
	Description string
}

// ScheduleEntryPatch carries an edit to a schedule row. Percentage is raw user input.
type ScheduleEntryPatch struct {
	Percentage  *string
	Description *string
}

// ScheduleStatus is what the editor shows under the payment schedule.
type ScheduleStatus struct {
	Total    decimal.Decimal
	Balanced bool
}

// ParsePercentage reads a percentage typed by a user. Anything that is not a number counts as zero.
func ParsePercentage(raw string) decimal.Decimal {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")

	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}

	return d
}

// ScheduleTotal sums the percentages of all entries.
func ScheduleTotal(entries []PaymentScheduleEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Percentage)
	}

	return sum
}

// CheckSchedule reports the sum and whether it is exactly 100.
// An unbalanced schedule is a warning only.
func CheckSchedule(entries []PaymentScheduleEntry) ScheduleStatus {
	total := ScheduleTotal(entries)

	return ScheduleStatus{
		Total:    total,
		Balanced: total.Equal(hundred),
	}
}
