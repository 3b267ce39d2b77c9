package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by snapshot change messages.
const (
	OpRecordAdded      = "record_added"
	OpRecordEdited     = "record_edited"
	OpRecordDeleted    = "record_deleted"
	OpBudgetsUpdated   = "budgets_updated"
	OpCategoryAdded    = "category_added"
	OpCategoryDeleted  = "category_deleted"
	OpDocumentImported = "document_imported"
)

// SnapshotChangedMessage announces that the ledger document changed.
// It carries only the operation and the affected record ID; consumers
// reload the full snapshot from the store.
type SnapshotChangedMessage struct {
	Op        string    `json:"op"`
	RecordID  string    `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotChangedMessage creates a change message for the given operation
func NewSnapshotChangedMessage(op, recordID string) *SnapshotChangedMessage {
	return &SnapshotChangedMessage{
		Op:        op,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotChangedMessageFromJSON creates a message from JSON bytes
func SnapshotChangedMessageFromJSON(data []byte) (*SnapshotChangedMessage, error) {
	var msg SnapshotChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
