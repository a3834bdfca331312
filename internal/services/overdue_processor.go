package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// OverdueProcessor sweeps PENDING expenses whose due date has passed
// and flips them to OVERDUE.
type OverdueProcessor struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewOverdueProcessor(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *OverdueProcessor {
	return &OverdueProcessor{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// ProcessOverdue marks every past-due pending expense as overdue and
// returns how many were flipped. Per-item failures are logged and do
// not stop the sweep.
func (p *OverdueProcessor) ProcessOverdue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	pastDue, err := p.storage.ListPastDuePending(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list past-due expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing overdue expenses",
		"candidates", len(pastDue),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, e := range pastDue {
		if err := p.storage.SetExpenseStatus(ctx, e.ID, core.StatusOverdue, nil); err != nil {
			slog.ErrorContext(ctx, "Failed to mark expense overdue",
				"expense_id", e.ID,
				"title", e.Title,
				"error", err)
			continue
		}

		processed++
		slog.InfoContext(ctx, "Expense marked overdue",
			"expense_id", e.ID,
			"title", e.Title,
			"due_date", e.DueDate.Format("2006-01-02"))

		if p.amqpClient != nil {
			event := amqp.NewTransactionEvent(e.ID, amqp.EntityExpense, amqp.ActionUpdated)
			if err := p.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
				slog.ErrorContext(ctx, "Failed to publish overdue event",
					"expense_id", e.ID,
					"error", err)
			}
		}
	}

	slog.InfoContext(ctx, "Overdue sweep complete",
		"processed", processed,
		"candidates", len(pastDue))

	return processed, nil
}
