package report

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contas/internal/core"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseLocalDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func testExpense(t *testing.T, amount string, installments int, due string, status core.TransactionStatus) core.Expense {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("amount %q: %v", amount, err)
	}
	return core.Expense{
		ID:           uuid.New(),
		Title:        "despesa",
		Amount:       amt,
		Category:     core.Category{ID: uuid.New(), Name: "Outros", Color: "#6B7280", Type: core.CategoryExpense},
		DueDate:      mustDate(t, due),
		Installments: installments,
		Status:       status,
	}
}

func testIncome(t *testing.T, amount string, receive string, status core.TransactionStatus) core.Income {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("amount %q: %v", amount, err)
	}
	return core.Income{
		ID:          uuid.New(),
		Title:       "receita",
		Amount:      amt,
		Category:    core.Category{ID: uuid.New(), Name: "Salário", Color: "#10B981", Type: core.CategoryIncome},
		ReceiveDate: mustDate(t, receive),
		Status:      status,
	}
}

func TestBelongsToMonthSingleInstallment(t *testing.T) {
	e := testExpense(t, "500", 1, "2024-03-10", core.StatusPending)

	// Exactly one membership month across a wide scan.
	hits := 0
	ym := YearMonth{2023, 1}
	for i := 0; i < 36; i++ {
		if BelongsToMonth(e, ym) {
			hits++
			if ym != (YearMonth{2024, 3}) {
				t.Fatalf("unexpected membership in %v", ym)
			}
		}
		ym = ym.AddMonths(1)
	}
	if hits != 1 {
		t.Fatalf("expected exactly 1 active month, got %d", hits)
	}
}

func TestBelongsToMonthInstallmentWindow(t *testing.T) {
	// 12 installments due 2024-01: active 2024-01 .. 2024-12 with
	// indexes 1..12, nothing before or after.
	e := testExpense(t, "1200", 12, "2024-01-15", core.StatusPending)

	if BelongsToMonth(e, YearMonth{2023, 12}) {
		t.Fatalf("must not be active before the due-date month")
	}
	if BelongsToMonth(e, YearMonth{2025, 1}) {
		t.Fatalf("must not be active after the last installment month")
	}

	seen := make(map[int]bool)
	for i := 0; i < 12; i++ {
		ym := YearMonth{2024, 1}.AddMonths(i)
		if !BelongsToMonth(e, ym) {
			t.Fatalf("expected active in %v", ym)
		}
		idx, err := InstallmentIndex(e, ym)
		if err != nil {
			t.Fatalf("index in %v: %v", ym, err)
		}
		if idx != i+1 {
			t.Fatalf("index in %v = %d, want %d", ym, idx, i+1)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
}

func TestInstallmentWindowCrossesYear(t *testing.T) {
	// Due November 2024, 4 installments: nov, dez, jan, fev.
	e := testExpense(t, "400", 4, "2024-11-20", core.StatusPending)

	cases := []struct {
		ym   YearMonth
		idx  int
		want bool
	}{
		{YearMonth{2024, 10}, 0, false},
		{YearMonth{2024, 11}, 1, true},
		{YearMonth{2024, 12}, 2, true},
		{YearMonth{2025, 1}, 3, true},
		{YearMonth{2025, 2}, 4, true},
		{YearMonth{2025, 3}, 0, false},
	}
	for _, tc := range cases {
		if got := BelongsToMonth(e, tc.ym); got != tc.want {
			t.Fatalf("BelongsToMonth(%v) = %v, want %v", tc.ym, got, tc.want)
		}
		if tc.want {
			idx, err := InstallmentIndex(e, tc.ym)
			if err != nil || idx != tc.idx {
				t.Fatalf("InstallmentIndex(%v) = %d (err=%v), want %d", tc.ym, idx, err, tc.idx)
			}
		}
	}
}

func TestDayOfMonthIsIgnored(t *testing.T) {
	// Due on the 31st of January: installment 2 falls in February even
	// though February has no day 31. No day clamping is involved since
	// only year and month participate.
	e := testExpense(t, "200", 2, "2024-01-31", core.StatusPending)

	if !BelongsToMonth(e, YearMonth{2024, 2}) {
		t.Fatalf("expected active in February")
	}
	idx, err := InstallmentIndex(e, YearMonth{2024, 2})
	if err != nil || idx != 2 {
		t.Fatalf("index = %d (err=%v), want 2", idx, err)
	}
}

func TestInstallmentIndexOutsideWindow(t *testing.T) {
	e := testExpense(t, "300", 3, "2024-01-10", core.StatusPending)
	_, err := InstallmentIndex(e, YearMonth{2024, 6})
	if !errors.Is(err, core.ErrInvalidInstallmentIndex) {
		t.Fatalf("expected ErrInvalidInstallmentIndex, got %v", err)
	}
}

func TestInstallmentAmountSumsToTotal(t *testing.T) {
	cases := []struct {
		amount       string
		installments int
	}{
		{"300", 3},
		{"1200", 12},
		{"100", 7}, // non-terminating division
		{"999.99", 5},
	}
	for _, tc := range cases {
		e := testExpense(t, tc.amount, tc.installments, "2024-01-15", core.StatusPending)
		per := InstallmentAmount(e)
		sum := decimal.Zero
		for i := 0; i < tc.installments; i++ {
			sum = sum.Add(per)
		}
		diff := sum.Sub(e.Amount).Abs()
		if diff.GreaterThan(decimal.New(1, -9)) { // 1e-9 tolerance
			t.Fatalf("%s / %d: per-month %s sums to %s, want %s",
				tc.amount, tc.installments, per, sum, e.Amount)
		}
	}
}

func TestInstallmentAmountSingleShot(t *testing.T) {
	e := testExpense(t, "500", 1, "2024-03-10", core.StatusOverdue)
	if !InstallmentAmount(e).Equal(decimal.NewFromInt(500)) {
		t.Fatalf("single-shot amount must be the full amount")
	}
}

func TestTwelveInstallmentScenario(t *testing.T) {
	// amount 1200, 12 installments, due 2024-01-15, queried for 2024-06.
	e := testExpense(t, "1200", 12, "2024-01-15", core.StatusPending)
	target := YearMonth{2024, 6}

	if !BelongsToMonth(e, target) {
		t.Fatalf("expected membership in %v", target)
	}
	idx, err := InstallmentIndex(e, target)
	if err != nil || idx != 6 {
		t.Fatalf("index = %d (err=%v), want 6", idx, err)
	}
	if !InstallmentAmount(e).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("installment amount = %s, want 100", InstallmentAmount(e))
	}
}
