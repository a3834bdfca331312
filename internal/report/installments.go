package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// BelongsToMonth reports whether an expense is active in the target
// month. Single-shot expenses occupy exactly their due-date month; an
// expense in k installments occupies the k consecutive months starting
// at the due-date month. The day of the month never participates, so an
// expense due on the 31st rolls into the next month regardless of that
// month's length.
func BelongsToMonth(e core.Expense, target YearMonth) bool {
	start := YearMonthOf(e.DueDate)
	if e.Installments <= 1 {
		return start.Compare(target) == 0
	}
	end := start.AddMonths(e.Installments - 1)
	return !target.Before(start) && !target.After(end)
}

// InstallmentIndex returns the 1-based installment that falls in the
// target month. Calling it for a month the expense does not belong to is
// caller misuse and yields ErrInvalidInstallmentIndex.
func InstallmentIndex(e core.Expense, target YearMonth) (int, error) {
	if !BelongsToMonth(e, target) {
		return 0, fmt.Errorf("%w: expense %s not active in %s",
			core.ErrInvalidInstallmentIndex, e.ID, target)
	}
	return target.MonthsSince(YearMonthOf(e.DueDate)) + 1, nil
}

// InstallmentAmount is the per-month share of the expense: the full
// amount for single-shot expenses, amount/installments otherwise. Every
// occupied month carries the same share.
func InstallmentAmount(e core.Expense) decimal.Decimal {
	if e.Installments > 1 {
		return e.Amount.Div(decimal.NewFromInt(int64(e.Installments)))
	}
	return e.Amount
}
