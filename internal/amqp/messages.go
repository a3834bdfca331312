package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity kinds carried by transaction events.
const (
	EntityExpense = "expense"
	EntityIncome  = "income"
)

// Actions carried by transaction events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionPaid    = "paid"
)

// TransactionEvent is a lightweight notification that an expense or
// income changed. The worker fetches the full record from the database,
// so the event only carries identity and what happened.
type TransactionEvent struct {
	ID        uuid.UUID `json:"id"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id uuid.UUID, entity, action string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Entity:    entity,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal transaction event: %w", err)
	}
	return &ev, nil
}
