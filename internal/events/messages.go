package events

import (
	"encoding/json"
	"time"
)

// Change operations carried on the wire.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeMessage announces that a user's transaction list changed.
// It carries only identifiers; consumers reload the list from the store.
type ChangeMessage struct {
	User      string    `json:"user"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(user, op, id string) *ChangeMessage {
	return &ChangeMessage{
		User:      user,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
