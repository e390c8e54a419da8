package amqp

import (
	"encoding/json"
	"time"
)

// Change actions carried on the row change queue.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionRestored = "restored"
)

// ChangeMessage is a lightweight notification that a row changed.
// It carries only identifiers; the worker re-fetches current rows from the
// database before recomputing, so stale messages are harmless.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Year      int       `json:"year,omitempty"`
	Month     int       `json:"month,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(entity, id, action string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// WithMonth attaches the calendar month affected by the change.
func (m *ChangeMessage) WithMonth(year int, month time.Month) *ChangeMessage {
	m.Year = year
	m.Month = int(month)
	return m
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
