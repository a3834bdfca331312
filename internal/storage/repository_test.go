package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCategory(t *testing.T, repo *SQLiteRepository, name string, typ core.CategoryType) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		Name:  name,
		Color: "#FF5733",
		Type:  typ,
	})
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return c
}

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedCategory(t, repo, "Mercado", core.CategoryExpense)

	got, err := repo.GetCategory(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "Mercado" || got.Color != "#FF5733" || got.Type != core.CategoryExpense {
		t.Errorf("GetCategory = %+v, want created category back", got)
	}

	got.Name = "Supermercado"
	got.Color = "#00AA00"
	if err := repo.UpdateCategory(ctx, got); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	updated, err := repo.GetCategory(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCategory after update: %v", err)
	}
	if updated.Name != "Supermercado" || updated.Color != "#00AA00" {
		t.Errorf("after update got %+v", updated)
	}

	if err := repo.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetCategory(ctx, created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetCategory after delete: err = %v, want sql.ErrNoRows", err)
	}
}

func TestListCategoriesFiltersByType(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedCategory(t, repo, "Mercado", core.CategoryExpense)
	seedCategory(t, repo, "Transporte", core.CategoryExpense)
	seedCategory(t, repo, "Salario", core.CategoryIncome)

	all, err := repo.ListCategories(ctx, "")
	if err != nil {
		t.Fatalf("ListCategories(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListCategories(all) returned %d, want 3", len(all))
	}

	expenses, err := repo.ListCategories(ctx, core.CategoryExpense)
	if err != nil {
		t.Fatalf("ListCategories(expense): %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("ListCategories(expense) returned %d, want 2", len(expenses))
	}
	for _, c := range expenses {
		if c.Type != core.CategoryExpense {
			t.Errorf("expense filter returned category of type %s", c.Type)
		}
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Eletronicos", core.CategoryExpense)

	created, err := repo.CreateExpense(ctx, core.Expense{
		Title:        "Notebook",
		Amount:       decimal.RequireFromString("3600.00"),
		Category:     cat,
		DueDate:      localDate(2024, time.March, 15),
		Installments: 12,
		IsFixed:      true,
		Status:       core.StatusPending,
		Description:  "parcelado em 12x",
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Title != "Notebook" {
		t.Errorf("Title = %q", got.Title)
	}
	if !got.Amount.Equal(decimal.RequireFromString("3600.00")) {
		t.Errorf("Amount = %s, want 3600.00", got.Amount)
	}
	if got.Installments != 12 {
		t.Errorf("Installments = %d, want 12", got.Installments)
	}
	if got.DueDate.Year() != 2024 || got.DueDate.Month() != time.March || got.DueDate.Day() != 15 {
		t.Errorf("DueDate = %v", got.DueDate)
	}
	if got.DueDate.Hour() != 12 {
		t.Errorf("DueDate hour = %d, want noon anchor", got.DueDate.Hour())
	}
	if got.Category.ID != cat.ID || got.Category.Name != cat.Name {
		t.Errorf("Category = %+v, want joined %+v", got.Category, cat)
	}
	if !got.IsFixed {
		t.Errorf("IsFixed = false, want true")
	}
	if got.PaidAt != nil {
		t.Errorf("PaidAt = %v, want nil", got.PaidAt)
	}
}

func TestSetExpenseStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Casa", core.CategoryExpense)

	e, err := repo.CreateExpense(ctx, core.Expense{
		Title:        "Aluguel",
		Amount:       decimal.RequireFromString("1500"),
		Category:     cat,
		DueDate:      localDate(2024, time.June, 5),
		Installments: 1,
		Status:       core.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	paidAt := localDate(2024, time.June, 3)
	if err := repo.SetExpenseStatus(ctx, e.ID, core.StatusPaid, &paidAt); err != nil {
		t.Fatalf("SetExpenseStatus: %v", err)
	}

	got, err := repo.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Status != core.StatusPaid {
		t.Errorf("Status = %s, want PAID", got.Status)
	}
	if got.PaidAt == nil || got.PaidAt.Day() != 3 {
		t.Errorf("PaidAt = %v, want 2024-06-03", got.PaidAt)
	}

	if err := repo.SetExpenseStatus(ctx, uuid.New(), core.StatusPaid, nil); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetExpenseStatus on unknown id: err = %v, want sql.ErrNoRows", err)
	}
}

func TestListPastDuePending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Contas", core.CategoryExpense)

	mk := func(title string, due time.Time, status core.TransactionStatus) {
		t.Helper()
		_, err := repo.CreateExpense(ctx, core.Expense{
			Title:        title,
			Amount:       decimal.RequireFromString("100"),
			Category:     cat,
			DueDate:      due,
			Installments: 1,
			Status:       status,
		})
		if err != nil {
			t.Fatalf("CreateExpense(%s): %v", title, err)
		}
	}

	mk("luz vencida", localDate(2024, time.May, 10), core.StatusPending)
	mk("agua vencida", localDate(2024, time.May, 20), core.StatusPending)
	mk("internet futura", localDate(2024, time.July, 1), core.StatusPending)
	mk("gas ja paga", localDate(2024, time.May, 5), core.StatusPaid)

	got, err := repo.ListPastDuePending(ctx, localDate(2024, time.June, 1))
	if err != nil {
		t.Fatalf("ListPastDuePending: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("returned %d expenses, want 2", len(got))
	}
	if got[0].Title != "luz vencida" || got[1].Title != "agua vencida" {
		t.Errorf("unexpected order or selection: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestListRecentExpensesHonorsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Mercado", core.CategoryExpense)

	for i := 0; i < 7; i++ {
		_, err := repo.CreateExpense(ctx, core.Expense{
			Title:        fmt.Sprintf("compra %d", i),
			Amount:       decimal.RequireFromString("50"),
			Category:     cat,
			DueDate:      localDate(2024, time.June, 1+i),
			Installments: 1,
			Status:       core.StatusPending,
		})
		if err != nil {
			t.Fatalf("CreateExpense(%d): %v", i, err)
		}
	}

	got, err := repo.ListRecentExpenses(ctx, 5)
	if err != nil {
		t.Fatalf("ListRecentExpenses: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("returned %d expenses, want 5", len(got))
	}
	for _, e := range got {
		if e.Category.Name != "Mercado" {
			t.Errorf("expense %q missing joined category: %+v", e.Title, e.Category)
		}
	}
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Salario", core.CategoryIncome)

	created, err := repo.CreateIncome(ctx, core.Income{
		Title:       "Salario de junho",
		Amount:      decimal.RequireFromString("5200.50"),
		Category:    cat,
		ReceiveDate: localDate(2024, time.June, 5),
		Status:      core.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	receivedAt := localDate(2024, time.June, 5)
	if err := repo.SetIncomeStatus(ctx, created.ID, core.StatusPaid, &receivedAt); err != nil {
		t.Fatalf("SetIncomeStatus: %v", err)
	}

	got, err := repo.GetIncome(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetIncome: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("5200.50")) {
		t.Errorf("Amount = %s, want 5200.50", got.Amount)
	}
	if got.Status != core.StatusPaid || got.ReceivedAt == nil {
		t.Errorf("Status = %s, ReceivedAt = %v; want PAID with receipt date", got.Status, got.ReceivedAt)
	}

	list, err := repo.ListIncomes(ctx)
	if err != nil {
		t.Fatalf("ListIncomes: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListIncomes returned %d, want 1", len(list))
	}
}

func TestInstallmentPaymentLedger(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "Eletronicos", core.CategoryExpense)

	e, err := repo.CreateExpense(ctx, core.Expense{
		Title:        "Celular",
		Amount:       decimal.RequireFromString("1200"),
		Category:     cat,
		DueDate:      localDate(2024, time.January, 10),
		Installments: 6,
		Status:       core.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	paidAt := localDate(2024, time.January, 9)
	if err := repo.UpsertInstallmentPayment(ctx, InstallmentPayment{
		ExpenseID:     e.ID,
		InstallmentNo: 1,
		Status:        core.StatusPaid,
		PaidAt:        &paidAt,
	}); err != nil {
		t.Fatalf("UpsertInstallmentPayment: %v", err)
	}

	// Upserting the same installment again overwrites, it does not duplicate.
	if err := repo.UpsertInstallmentPayment(ctx, InstallmentPayment{
		ExpenseID:     e.ID,
		InstallmentNo: 1,
		Status:        core.StatusOverdue,
	}); err != nil {
		t.Fatalf("UpsertInstallmentPayment (second): %v", err)
	}
	if err := repo.UpsertInstallmentPayment(ctx, InstallmentPayment{
		ExpenseID:     e.ID,
		InstallmentNo: 2,
		Status:        core.StatusPaid,
		PaidAt:        &paidAt,
	}); err != nil {
		t.Fatalf("UpsertInstallmentPayment (installment 2): %v", err)
	}

	payments, err := repo.ListInstallmentPayments(ctx)
	if err != nil {
		t.Fatalf("ListInstallmentPayments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("ledger has %d rows, want 2", len(payments))
	}
	byNo := map[int]InstallmentPayment{}
	for _, p := range payments {
		byNo[p.InstallmentNo] = p
	}
	if byNo[1].Status != core.StatusOverdue || byNo[1].PaidAt != nil {
		t.Errorf("installment 1 = %+v, want overwritten OVERDUE without paid_at", byNo[1])
	}
	if byNo[2].Status != core.StatusPaid || byNo[2].PaidAt == nil {
		t.Errorf("installment 2 = %+v, want PAID with paid_at", byNo[2])
	}

	// Deleting the expense cascades to its ledger rows.
	if err := repo.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	payments, err = repo.ListInstallmentPayments(ctx)
	if err != nil {
		t.Fatalf("ListInstallmentPayments after delete: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("ledger has %d rows after expense delete, want 0", len(payments))
	}
}
