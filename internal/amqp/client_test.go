package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{40, 30 * time.Second}, // shift overflow also caps
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestNewTransactionEvent(t *testing.T) {
	id := uuid.New()

	ev := NewTransactionEvent(id, EntityExpense, ActionCreated)

	if ev.ID != id {
		t.Errorf("ID = %v, want %v", ev.ID, id)
	}
	if ev.Entity != EntityExpense {
		t.Errorf("Entity = %q, want %q", ev.Entity, EntityExpense)
	}
	if ev.Action != ActionCreated {
		t.Errorf("Action = %q, want %q", ev.Action, ActionCreated)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(ev.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestTransactionEvent_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := &TransactionEvent{
		ID:        uuid.New(),
		Entity:    EntityIncome,
		Action:    ActionPaid,
		Timestamp: timestamp,
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON() error = %v", err)
	}

	if parsed.ID != ev.ID {
		t.Errorf("ID = %v, want %v", parsed.ID, ev.ID)
	}
	if parsed.Entity != ev.Entity || parsed.Action != ev.Action {
		t.Errorf("Entity/Action = %q/%q, want %q/%q", parsed.Entity, parsed.Action, ev.Entity, ev.Action)
	}
	if !parsed.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, ev.Timestamp)
	}
}

func TestTransactionEvent_InvalidJSON(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte(`{"id": 42}`)); err == nil {
		t.Error("TransactionEventFromJSON() should fail when id is not a UUID string")
	}
}
