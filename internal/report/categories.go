package report

import (
	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// CategorySlice is one pie-chart slice: the category name, the summed
// value for the period and the category color passed through verbatim.
type CategorySlice struct {
	Name  string
	Value decimal.Decimal
	Color string
}

// ExpensesByCategory groups the month's active expenses by category
// name and sums their prorated amounts. Month membership goes through
// the same installment resolver as the monthly summary, so a
// multi-installment expense contributes one share to each month it
// occupies instead of its full amount to the due-date month only.
//
// Categories with no matching records are omitted. Output order follows
// first occurrence in the input; callers must not depend on it.
func ExpensesByCategory(expenses []core.Expense, target YearMonth) []CategorySlice {
	var (
		slices []CategorySlice
		index  = make(map[string]int)
	)
	for _, e := range expenses {
		if !BelongsToMonth(e, target) {
			continue
		}
		addSlice(&slices, index, e.Category, InstallmentAmount(e))
	}
	return slices
}

// IncomesByCategory groups the month's incomes by category name.
// Incomes have no installment concept: membership is receive-date month
// equality and the raw amount is summed.
func IncomesByCategory(incomes []core.Income, target YearMonth) []CategorySlice {
	var (
		slices []CategorySlice
		index  = make(map[string]int)
	)
	for _, in := range incomes {
		if YearMonthOf(in.ReceiveDate).Compare(target) != 0 {
			continue
		}
		addSlice(&slices, index, in.Category, in.Amount)
	}
	return slices
}

func addSlice(slices *[]CategorySlice, index map[string]int, cat core.Category, amount decimal.Decimal) {
	if i, ok := index[cat.Name]; ok {
		(*slices)[i].Value = (*slices)[i].Value.Add(amount)
		return
	}
	index[cat.Name] = len(*slices)
	*slices = append(*slices, CategorySlice{Name: cat.Name, Value: amount, Color: cat.Color})
}
