package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent announces that the stored list changed. It carries only
// the id and the store revision; consumers reload the list themselves.
type TransactionEvent struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(action, id string, revision uint64) *TransactionEvent {
	return &TransactionEvent{
		Action:    action,
		ID:        id,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown event action %q", msg.Action)
	}
	return &msg, nil
}
