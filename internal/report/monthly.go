package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contas/internal/core"
)

type (
	// MonthFilter narrows the expense set fed into a monthly summary.
	// Zero values mean "no filter".
	MonthFilter struct {
		Category uuid.UUID
		Fixed    *bool
	}

	// MonthEntry is one expense as it appears in a specific month:
	// the record itself, the installment that month shows (0 for
	// single-shot expenses) and the prorated amount.
	MonthEntry struct {
		Expense     core.Expense
		Installment int
		Amount      decimal.Decimal
	}

	// MonthlySummary partitions one month's active expenses into the
	// three payment buckets and carries the month's totals.
	MonthlySummary struct {
		Month                YearMonth
		TotalMonth           decimal.Decimal
		TotalOverdue         decimal.Decimal
		TotalPending         decimal.Decimal
		TotalPaid            decimal.Decimal
		TotalIncomesReceived decimal.Decimal
		Overdue              []MonthEntry
		Pending              []MonthEntry
		Paid                 []MonthEntry
		All                  []MonthEntry
	}
)

// ComputeMonthlySummary builds the month view: expenses active in the
// target month (per BelongsToMonth) partitioned into overdue, pending
// and paid, with prorated totals per bucket, plus the sum of incomes
// received in that month.
//
// Bucket rules, exhaustive and disjoint over {PENDING, PAID, OVERDUE}:
//
//	overdue: status OVERDUE, or PENDING with dueDate before asOf
//	pending: status PENDING with dueDate at or after asOf
//	paid:    status PAID
//
// Empty input is not an error: all totals are zero and all buckets
// empty.
func ComputeMonthlySummary(expenses []core.Expense, incomes []core.Income, target YearMonth, asOf time.Time, filter MonthFilter) MonthlySummary {
	s := MonthlySummary{
		Month:                target,
		TotalMonth:           decimal.Zero,
		TotalOverdue:         decimal.Zero,
		TotalPending:         decimal.Zero,
		TotalPaid:            decimal.Zero,
		TotalIncomesReceived: decimal.Zero,
	}

	for _, e := range expenses {
		if !BelongsToMonth(e, target) {
			continue
		}
		if filter.Category != uuid.Nil && e.Category.ID != filter.Category {
			continue
		}
		if filter.Fixed != nil && e.IsFixed != *filter.Fixed {
			continue
		}

		entry := MonthEntry{Expense: e, Amount: InstallmentAmount(e)}
		if e.Installments > 1 {
			// Membership already established, the index cannot fail.
			idx, _ := InstallmentIndex(e, target)
			entry.Installment = idx
		}

		s.All = append(s.All, entry)
		s.TotalMonth = s.TotalMonth.Add(entry.Amount)

		switch {
		case e.Status == core.StatusOverdue,
			e.Status == core.StatusPending && e.DueDate.Before(asOf):
			s.Overdue = append(s.Overdue, entry)
			s.TotalOverdue = s.TotalOverdue.Add(entry.Amount)
		case e.Status == core.StatusPending:
			s.Pending = append(s.Pending, entry)
			s.TotalPending = s.TotalPending.Add(entry.Amount)
		case e.Status == core.StatusPaid:
			s.Paid = append(s.Paid, entry)
			s.TotalPaid = s.TotalPaid.Add(entry.Amount)
		}
	}

	for _, in := range incomes {
		if YearMonthOf(in.ReceiveDate).Compare(target) != 0 {
			continue
		}
		if in.Status == core.StatusPaid {
			s.TotalIncomesReceived = s.TotalIncomesReceived.Add(in.Amount)
		}
	}

	return s
}
