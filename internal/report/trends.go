package report

import (
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

type (
	// MonthComparison is one bar of the incomes-vs-expenses trend chart.
	MonthComparison struct {
		Month    YearMonth
		Label    string
		Incomes  decimal.Decimal
		Expenses decimal.Decimal
		Balance  decimal.Decimal
	}

	// BalancePoint is one point of the cumulative evolution line.
	BalancePoint struct {
		Month   YearMonth
		Label   string
		Balance decimal.Decimal
	}
)

// DefaultTrendMonths is the trailing window used by the chart views.
const DefaultTrendMonths = 6

// CompareMonths produces the trailing monthCount-month series ending at
// the anchor's month, ordered oldest to newest. Sums are nominal period
// activity: the raw expense amount lands in the due-date month and the
// raw income amount in the receive-date month, with no installment
// proration. Trend charts intentionally differ from the monthly summary
// here.
//
// The series always has exactly monthCount entries; months without data
// carry zeros.
func CompareMonths(expenses []core.Expense, incomes []core.Income, monthCount int, anchor time.Time) []MonthComparison {
	if monthCount < 1 {
		return nil
	}

	// One scan per record set, bucketed by month; the window months then
	// read from the maps instead of re-scanning per month.
	expByMonth := make(map[YearMonth]decimal.Decimal)
	for _, e := range expenses {
		ym := YearMonthOf(e.DueDate)
		expByMonth[ym] = expByMonth[ym].Add(e.Amount)
	}
	incByMonth := make(map[YearMonth]decimal.Decimal)
	for _, in := range incomes {
		ym := YearMonthOf(in.ReceiveDate)
		incByMonth[ym] = incByMonth[ym].Add(in.Amount)
	}

	last := YearMonthOf(anchor)
	series := make([]MonthComparison, 0, monthCount)
	for i := monthCount - 1; i >= 0; i-- {
		ym := last.AddMonths(-i)
		inc := incByMonth[ym]
		exp := expByMonth[ym]
		series = append(series, MonthComparison{
			Month:    ym,
			Label:    ym.Label(),
			Incomes:  inc,
			Expenses: exp,
			Balance:  inc.Sub(exp),
		})
	}
	return series
}

// CumulativeBalance extends CompareMonths with a running sum: each point
// is the net position accumulated from the window's oldest month. It is
// not an all-time balance; activity before the window is excluded by
// construction.
func CumulativeBalance(expenses []core.Expense, incomes []core.Income, monthCount int, anchor time.Time) []BalancePoint {
	comparison := CompareMonths(expenses, incomes, monthCount, anchor)
	points := make([]BalancePoint, 0, len(comparison))
	accumulated := decimal.Zero
	for _, m := range comparison {
		accumulated = accumulated.Add(m.Balance)
		points = append(points, BalancePoint{Month: m.Month, Label: m.Label, Balance: accumulated})
	}
	return points
}
