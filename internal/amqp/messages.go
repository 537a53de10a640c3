package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the exchange.
const (
	KindRefreshRequest     = "refresh_request"
	KindSnapshotRefreshed  = "snapshot_refreshed"
	KindSettlementRecorded = "settlement_recorded"
)

// Message is the envelope for every event. RefreshRequest asks the worker
// to re-fetch the feed; SnapshotRefreshed tells the server to drop its
// memoized snapshots; SettlementRecorded announces a settlement so other
// consumers can invalidate too.
type Message struct {
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	TxCount   int       `json:"transaction_count,omitempty"`
	SettledAt time.Time `json:"settled_at,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRefreshRequest creates a message asking the worker for a re-fetch
func NewRefreshRequest(reason string) *Message {
	return &Message{
		Kind:      KindRefreshRequest,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// NewSnapshotRefreshed creates a message announcing a fresh snapshot
func NewSnapshotRefreshed(txCount int) *Message {
	return &Message{
		Kind:      KindSnapshotRefreshed,
		TxCount:   txCount,
		Timestamp: time.Now(),
	}
}

// NewSettlementRecorded creates a message announcing a settlement
func NewSettlementRecorded(settledAt time.Time) *Message {
	return &Message{
		Kind:      KindSettlementRecorded,
		SettledAt: settledAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON creates a message from JSON bytes
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
