// Package services orchestrates storage, messaging and the report
// engine behind the HTTP handlers and workers.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/report"
	"contas/internal/storage"
)

// ExpenseService orchestrates expense operations across SQLite and AMQP.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense validates and saves an expense, then publishes a sync
// event. A publish failure does not fail the request, the record is
// already durable locally.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	if e.Installments == 0 {
		e.Installments = 1
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	saved, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, saved.ID, amqp.EntityExpense, amqp.ActionCreated)
	return saved, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate expense: %w", err)
	}
	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.publish(ctx, e.ID, amqp.EntityExpense, amqp.ActionUpdated)
	return nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, id, amqp.EntityExpense, amqp.ActionDeleted)
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx)
}

// MarkExpensePaid toggles the whole expense between paid and pending.
// A paid expense goes back to PENDING with its payment date cleared.
func (s *ExpenseService) MarkExpensePaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	status, at := core.StatusPaid, &paidAt
	action := amqp.ActionPaid
	if e.Status == core.StatusPaid {
		status, at = core.StatusPending, nil
		action = amqp.ActionUpdated
	}
	if err := s.storage.SetExpenseStatus(ctx, id, status, at); err != nil {
		return fmt.Errorf("mark expense paid: %w", err)
	}
	s.publish(ctx, id, amqp.EntityExpense, action)
	return nil
}

// MarkInstallmentPaid records payment of a single installment in the
// ledger. When every installment of the expense is paid, the expense
// itself flips to PAID.
func (s *ExpenseService) MarkInstallmentPaid(ctx context.Context, id uuid.UUID, installmentNo int, paidAt time.Time) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if installmentNo < 1 || installmentNo > e.Installments {
		return fmt.Errorf("installment %d of expense with %d installments: %w",
			installmentNo, e.Installments, core.ErrInvalidInstallmentIndex)
	}

	err = s.storage.UpsertInstallmentPayment(ctx, storage.InstallmentPayment{
		ExpenseID:     id,
		InstallmentNo: installmentNo,
		Status:        core.StatusPaid,
		PaidAt:        &paidAt,
	})
	if err != nil {
		return fmt.Errorf("record installment payment: %w", err)
	}

	allPaid, err := s.allInstallmentsPaid(ctx, e)
	if err != nil {
		return err
	}
	if allPaid {
		if err := s.storage.SetExpenseStatus(ctx, id, core.StatusPaid, &paidAt); err != nil {
			return fmt.Errorf("mark expense paid after last installment: %w", err)
		}
		slog.InfoContext(ctx, "All installments paid, expense settled",
			"expense_id", id,
			"installments", e.Installments)
	}

	s.publish(ctx, id, amqp.EntityExpense, amqp.ActionPaid)
	return nil
}

func (s *ExpenseService) allInstallmentsPaid(ctx context.Context, e core.Expense) (bool, error) {
	payments, err := s.storage.ListInstallmentPayments(ctx)
	if err != nil {
		return false, fmt.Errorf("load installment ledger: %w", err)
	}
	paid := map[int]bool{}
	for _, p := range payments {
		if p.ExpenseID == e.ID && p.Status == core.StatusPaid {
			paid[p.InstallmentNo] = true
		}
	}
	for n := 1; n <= e.Installments; n++ {
		if !paid[n] {
			return false, nil
		}
	}
	return true, nil
}

// InstallmentStatuses returns the effective status of every installment
// of the expense, ledger entries overriding the record status.
func (s *ExpenseService) InstallmentStatuses(ctx context.Context, id uuid.UUID) ([]storage.InstallmentPayment, error) {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load expense: %w", err)
	}
	payments, err := s.storage.ListInstallmentPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load installment ledger: %w", err)
	}
	ledger := map[int]storage.InstallmentPayment{}
	for _, p := range payments {
		if p.ExpenseID == id {
			ledger[p.InstallmentNo] = p
		}
	}

	out := make([]storage.InstallmentPayment, 0, e.Installments)
	for n := 1; n <= e.Installments; n++ {
		if p, ok := ledger[n]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, storage.InstallmentPayment{
			ExpenseID:     id,
			InstallmentNo: n,
			Status:        e.Status,
			PaidAt:        e.PaidAt,
		})
	}
	return out, nil
}

// InstallmentDueMonth reports the due month of the given installment.
func InstallmentDueMonth(e core.Expense, installmentNo int) (report.YearMonth, error) {
	if installmentNo < 1 || installmentNo > e.Installments {
		return report.YearMonth{}, core.ErrInvalidInstallmentIndex
	}
	return report.YearMonthOf(e.DueDate).AddMonths(installmentNo - 1), nil
}

func (s *ExpenseService) publish(ctx context.Context, id uuid.UUID, entity, action string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event", "entity", entity, "action", action)
		return
	}
	if err := s.amqpClient.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(id, entity, action)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id,
			"entity", entity,
			"action", action,
			"error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
