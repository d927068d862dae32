package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"rentledger/internal/store"
)

// ImportMessage carries a batch of raw spreadsheet rows for the import
// worker. Rows travel in the message itself; the worker owns the
// currency cleanup and the store writes.
type ImportMessage struct {
	BatchID   string          `json:"batchId"`
	Rows      []store.SeedRow `json:"rows"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewImportMessage wraps rows in a new batch.
func NewImportMessage(rows []store.SeedRow) *ImportMessage {
	return &ImportMessage{
		BatchID:   uuid.NewString(),
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportMessageFromJSON creates a message from JSON bytes
func ImportMessageFromJSON(data []byte) (*ImportMessage, error) {
	var msg ImportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
