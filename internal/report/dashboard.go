package report

import (
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// DashboardSummary condenses the anchor month for the landing page:
// nominal totals, the paid/pending split, the balance, and percent
// deltas against the previous month.
type DashboardSummary struct {
	Month              YearMonth
	TotalExpenses      decimal.Decimal
	TotalIncomes       decimal.Decimal
	PaidExpenses       decimal.Decimal
	PendingExpenses    decimal.Decimal
	Balance            decimal.Decimal
	ExpensesComparison decimal.Decimal // percent vs previous month
	IncomesComparison  decimal.Decimal
	BalanceComparison  decimal.Decimal
}

// ComputeDashboardSummary sums the anchor month and the month before it
// by due/receive date at raw amounts, matching the trend charts rather
// than the prorated monthly summary. Comparison percentages are zero
// when the previous month has nothing to compare against.
func ComputeDashboardSummary(expenses []core.Expense, incomes []core.Income, anchor time.Time) DashboardSummary {
	current := YearMonthOf(anchor)
	previous := current.AddMonths(-1)

	s := DashboardSummary{
		Month:           current,
		TotalExpenses:   decimal.Zero,
		TotalIncomes:    decimal.Zero,
		PaidExpenses:    decimal.Zero,
		PendingExpenses: decimal.Zero,
	}
	prevExpenses := decimal.Zero
	prevIncomes := decimal.Zero

	for _, e := range expenses {
		switch YearMonthOf(e.DueDate) {
		case current:
			s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
			switch e.Status {
			case core.StatusPaid:
				s.PaidExpenses = s.PaidExpenses.Add(e.Amount)
			case core.StatusPending:
				s.PendingExpenses = s.PendingExpenses.Add(e.Amount)
			}
		case previous:
			prevExpenses = prevExpenses.Add(e.Amount)
		}
	}
	for _, in := range incomes {
		switch YearMonthOf(in.ReceiveDate) {
		case current:
			s.TotalIncomes = s.TotalIncomes.Add(in.Amount)
		case previous:
			prevIncomes = prevIncomes.Add(in.Amount)
		}
	}

	s.Balance = s.TotalIncomes.Sub(s.TotalExpenses)
	prevBalance := prevIncomes.Sub(prevExpenses)

	s.ExpensesComparison = percentDelta(s.TotalExpenses, prevExpenses)
	s.IncomesComparison = percentDelta(s.TotalIncomes, prevIncomes)
	if !prevBalance.IsZero() {
		s.BalanceComparison = s.Balance.Sub(prevBalance).Div(prevBalance.Abs()).Mul(decimal.NewFromInt(100))
	} else {
		s.BalanceComparison = decimal.Zero
	}
	return s
}

func percentDelta(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
}
