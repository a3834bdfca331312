package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/report"
	"contas/internal/storage"
)

// ReportService loads snapshots from storage, resolves
// ledger-effective installment statuses and delegates to the report
// engine. The clock is injected so reports are reproducible in tests.
type ReportService struct {
	storage     *storage.SQLiteRepository
	trendMonths int
	now         func() time.Time
}

func NewReportService(storage *storage.SQLiteRepository, trendMonths int) *ReportService {
	if trendMonths <= 0 {
		trendMonths = report.DefaultTrendMonths
	}
	return &ReportService{
		storage:     storage,
		trendMonths: trendMonths,
		now:         time.Now,
	}
}

// WithClock replaces the time source. Tests use this to pin reports to
// a fixed instant.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

type snapshot struct {
	expenses []core.Expense
	incomes  []core.Income
}

// loadSnapshot reads all transactions and, for the target month,
// replaces each expense's status with its ledger-resolved installment
// status. Expenses without a ledger row keep the record status.
func (s *ReportService) loadSnapshot(ctx context.Context, target report.YearMonth) (snapshot, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("load expenses: %w", err)
	}
	incomes, err := s.storage.ListIncomes(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("load incomes: %w", err)
	}
	payments, err := s.storage.ListInstallmentPayments(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("load installment ledger: %w", err)
	}

	type ledgerKey struct {
		id uuid.UUID
		no int
	}
	ledger := make(map[ledgerKey]storage.InstallmentPayment, len(payments))
	for _, p := range payments {
		ledger[ledgerKey{p.ExpenseID, p.InstallmentNo}] = p
	}

	for i, e := range expenses {
		if !report.BelongsToMonth(e, target) {
			continue
		}
		idx, err := report.InstallmentIndex(e, target)
		if err != nil {
			continue
		}
		if p, ok := ledger[ledgerKey{e.ID, idx}]; ok {
			expenses[i].Status = p.Status
			expenses[i].PaidAt = p.PaidAt
		}
	}

	return snapshot{expenses: expenses, incomes: incomes}, nil
}

// MonthlySummary computes the bucketed view of one month.
func (s *ReportService) MonthlySummary(ctx context.Context, target report.YearMonth, filter report.MonthFilter) (report.MonthlySummary, error) {
	snap, err := s.loadSnapshot(ctx, target)
	if err != nil {
		return report.MonthlySummary{}, err
	}
	return report.ComputeMonthlySummary(snap.expenses, snap.incomes, target, s.now(), filter), nil
}

// ExpensesByCategory aggregates the month's prorated expense amounts
// per category.
func (s *ReportService) ExpensesByCategory(ctx context.Context, target report.YearMonth) ([]report.CategorySlice, error) {
	snap, err := s.loadSnapshot(ctx, target)
	if err != nil {
		return nil, err
	}
	return report.ExpensesByCategory(snap.expenses, target), nil
}

// IncomesByCategory aggregates the month's income amounts per category.
func (s *ReportService) IncomesByCategory(ctx context.Context, target report.YearMonth) ([]report.CategorySlice, error) {
	snap, err := s.loadSnapshot(ctx, target)
	if err != nil {
		return nil, err
	}
	return report.IncomesByCategory(snap.incomes, target), nil
}

// Trends returns the trailing months comparison ending at the current
// month. months <= 0 falls back to the configured window.
func (s *ReportService) Trends(ctx context.Context, months int) ([]report.MonthComparison, error) {
	if months <= 0 {
		months = s.trendMonths
	}
	now := s.now()
	snap, err := s.loadSnapshot(ctx, report.YearMonthOf(now))
	if err != nil {
		return nil, err
	}
	return report.CompareMonths(snap.expenses, snap.incomes, months, now), nil
}

// Evolution returns the cumulative balance over the trailing months.
func (s *ReportService) Evolution(ctx context.Context, months int) ([]report.BalancePoint, error) {
	if months <= 0 {
		months = s.trendMonths
	}
	now := s.now()
	snap, err := s.loadSnapshot(ctx, report.YearMonthOf(now))
	if err != nil {
		return nil, err
	}
	return report.CumulativeBalance(snap.expenses, snap.incomes, months, now), nil
}

// recentTransactionsLimit matches the dashboard widget size.
const recentTransactionsLimit = 5

// RecentTransactions returns the latest created expenses and incomes.
func (s *ReportService) RecentTransactions(ctx context.Context) ([]core.Expense, []core.Income, error) {
	expenses, err := s.storage.ListRecentExpenses(ctx, recentTransactionsLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("load recent expenses: %w", err)
	}
	incomes, err := s.storage.ListRecentIncomes(ctx, recentTransactionsLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("load recent incomes: %w", err)
	}
	return expenses, incomes, nil
}

// Dashboard returns the current month's headline numbers with deltas
// against the previous month.
func (s *ReportService) Dashboard(ctx context.Context) (report.DashboardSummary, error) {
	now := s.now()
	snap, err := s.loadSnapshot(ctx, report.YearMonthOf(now))
	if err != nil {
		return report.DashboardSummary{}, err
	}
	return report.ComputeDashboardSummary(snap.expenses, snap.incomes, now), nil
}
