package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// IncomeService orchestrates income operations across SQLite and AMQP.
type IncomeService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewIncomeService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *IncomeService {
	return &IncomeService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *IncomeService) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if in.Status == "" {
		in.Status = core.StatusPending
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("validate income: %w", err)
	}

	saved, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}

	s.publish(ctx, saved.ID, amqp.ActionCreated)
	return saved, nil
}

func (s *IncomeService) UpdateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("validate income: %w", err)
	}
	if err := s.storage.UpdateIncome(ctx, in); err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	s.publish(ctx, in.ID, amqp.ActionUpdated)
	return nil
}

func (s *IncomeService) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *IncomeService) GetIncome(ctx context.Context, id uuid.UUID) (core.Income, error) {
	return s.storage.GetIncome(ctx, id)
}

func (s *IncomeService) ListIncomes(ctx context.Context) ([]core.Income, error) {
	return s.storage.ListIncomes(ctx)
}

// MarkIncomeReceived marks the income as received.
func (s *IncomeService) MarkIncomeReceived(ctx context.Context, id uuid.UUID, receivedAt time.Time) error {
	if err := s.storage.SetIncomeStatus(ctx, id, core.StatusPaid, &receivedAt); err != nil {
		return fmt.Errorf("mark income received: %w", err)
	}
	s.publish(ctx, id, amqp.ActionPaid)
	return nil
}

func (s *IncomeService) publish(ctx context.Context, id uuid.UUID, action string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event", "entity", amqp.EntityIncome, "action", action)
		return
	}
	if err := s.amqpClient.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(id, amqp.EntityIncome, action)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id,
			"entity", amqp.EntityIncome,
			"action", action,
			"error", err)
	}
}
