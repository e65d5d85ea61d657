package amqp

import (
	"encoding/json"
	"time"
)

// Mutation kinds carried on the wire.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RecordChangedMessage notifies external consumers that an owner's record
// set changed. It carries identifiers only; consumers refetch what they
// need from the store.
type RecordChangedMessage struct {
	OwnerID   string    `json:"owner_id"`
	RecordID  string    `json:"record_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(ownerID, recordID, op string) *RecordChangedMessage {
	return &RecordChangedMessage{
		OwnerID:   ownerID,
		RecordID:  recordID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
