// Package worker consumes transaction events and exports the affected
// records to an external sheet.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/sheets"
	"contas/internal/storage"
)

const exportDateLayout = "2006-01-02"

// SyncWorker resolves each event against SQLite and appends the
// current state of the record to the exporter.
type SyncWorker struct {
	storage  *storage.SQLiteRepository
	exporter sheets.Exporter
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter sheets.Exporter) *SyncWorker {
	return &SyncWorker{
		storage:  storage,
		exporter: exporter,
	}
}

// HandleTransactionEvent exports the event's record. Deleted records
// get a tombstone row so the sheet keeps a full audit trail. A record
// missing for a non-delete event was deleted after the event was
// queued; that is not an error.
func (w *SyncWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", event.ID,
		"entity", event.Entity,
		"action", event.Action)

	if event.Action == amqp.ActionDeleted {
		return w.exportTombstone(ctx, event)
	}

	row, err := w.rowForEvent(ctx, event)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.WarnContext(ctx, "Record gone before export, skipping",
				"id", event.ID,
				"entity", event.Entity)
			return nil
		}
		return err
	}

	ref, err := w.exporter.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("export row: %w", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", event.ID,
		"entity", event.Entity,
		"action", event.Action,
		"row_ref", ref)
	return nil
}

func (w *SyncWorker) rowForEvent(ctx context.Context, event *amqp.TransactionEvent) (sheets.Row, error) {
	switch event.Entity {
	case amqp.EntityExpense:
		e, err := w.storage.GetExpense(ctx, event.ID)
		if err != nil {
			return sheets.Row{}, fmt.Errorf("get expense: %w", err)
		}
		return sheets.Row{
			Date:     e.DueDate.Format(exportDateLayout),
			Title:    e.Title,
			Category: e.Category.Name,
			Kind:     amqp.EntityExpense,
			Amount:   e.Amount,
			Status:   string(e.Status),
			Action:   event.Action,
		}, nil
	case amqp.EntityIncome:
		in, err := w.storage.GetIncome(ctx, event.ID)
		if err != nil {
			return sheets.Row{}, fmt.Errorf("get income: %w", err)
		}
		return sheets.Row{
			Date:     in.ReceiveDate.Format(exportDateLayout),
			Title:    in.Title,
			Category: in.Category.Name,
			Kind:     amqp.EntityIncome,
			Amount:   in.Amount,
			Status:   string(in.Status),
			Action:   event.Action,
		}, nil
	default:
		return sheets.Row{}, fmt.Errorf("unknown entity %q", event.Entity)
	}
}

func (w *SyncWorker) exportTombstone(ctx context.Context, event *amqp.TransactionEvent) error {
	row := sheets.Row{
		Date:   event.Timestamp.Format(exportDateLayout),
		Title:  event.ID.String(),
		Kind:   event.Entity,
		Action: amqp.ActionDeleted,
	}
	if _, err := w.exporter.Append(ctx, row); err != nil {
		return fmt.Errorf("export tombstone: %w", err)
	}
	return nil
}
