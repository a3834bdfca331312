package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

func TestComputeDashboardSummary(t *testing.T) {
	anchor := mustDate(t, "2024-06-15")
	expenses := []core.Expense{
		testExpense(t, "400", 1, "2024-06-05", core.StatusPaid),
		testExpense(t, "100", 1, "2024-06-20", core.StatusPending),
		testExpense(t, "60", 1, "2024-06-10", core.StatusOverdue),
		testExpense(t, "250", 1, "2024-05-10", core.StatusPaid), // previous month
	}
	incomes := []core.Income{
		testIncome(t, "2000", "2024-06-01", core.StatusPaid),
		testIncome(t, "1000", "2024-05-01", core.StatusPaid),
	}

	s := ComputeDashboardSummary(expenses, incomes, anchor)

	if s.Month != (YearMonth{2024, 6}) {
		t.Fatalf("month = %v, want 2024-06", s.Month)
	}
	if !s.TotalExpenses.Equal(decimal.NewFromInt(560)) {
		t.Fatalf("TotalExpenses = %s, want 560", s.TotalExpenses)
	}
	if !s.TotalIncomes.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("TotalIncomes = %s, want 2000", s.TotalIncomes)
	}
	if !s.PaidExpenses.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("PaidExpenses = %s, want 400", s.PaidExpenses)
	}
	if !s.PendingExpenses.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("PendingExpenses = %s, want 100 (overdue excluded)", s.PendingExpenses)
	}
	if !s.Balance.Equal(decimal.NewFromInt(1440)) {
		t.Fatalf("Balance = %s, want 1440", s.Balance)
	}

	// Expenses: (560-250)/250 * 100 = 124%.
	if !s.ExpensesComparison.Equal(decimal.NewFromInt(124)) {
		t.Fatalf("ExpensesComparison = %s, want 124", s.ExpensesComparison)
	}
	// Incomes: (2000-1000)/1000 * 100 = 100%.
	if !s.IncomesComparison.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("IncomesComparison = %s, want 100", s.IncomesComparison)
	}
	// Balance: prev 750, (1440-750)/750 * 100 = 92%.
	if !s.BalanceComparison.Equal(decimal.NewFromInt(92)) {
		t.Fatalf("BalanceComparison = %s, want 92", s.BalanceComparison)
	}
}

func TestComputeDashboardSummaryGuardsEmptyPreviousMonth(t *testing.T) {
	anchor := mustDate(t, "2024-06-15")
	expenses := []core.Expense{testExpense(t, "100", 1, "2024-06-05", core.StatusPaid)}

	s := ComputeDashboardSummary(expenses, nil, anchor)
	if !s.ExpensesComparison.IsZero() || !s.IncomesComparison.IsZero() || !s.BalanceComparison.IsZero() {
		t.Fatalf("comparisons against an empty previous month must be zero")
	}
}
