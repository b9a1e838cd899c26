package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettledItem is one line item settled by a commit.
type SettledItem struct {
	ItemID        int64           `json:"itemId"`
	Type          string          `json:"type"`
	AmountApplied decimal.Decimal `json:"amountApplied"`
	LineItemDate  string          `json:"lineItemDate"`
}

// SettlementCommittedMessage announces that a payment was allocated to line
// items. Consumers must treat MessageID as the idempotency key: the broker may
// redeliver.
type SettlementCommittedMessage struct {
	MessageID       string          `json:"messageId"`
	ClientID        int64           `json:"clientId"`
	ClientName      string          `json:"clientName"`
	PaymentID       int64           `json:"paymentId"`
	PaymentDate     string          `json:"paymentDate"`
	Policy          string          `json:"policy"`
	SettledCount    int             `json:"settledCount"`
	RemainingCredit decimal.Decimal `json:"remainingCredit"`
	Items           []SettledItem   `json:"items"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewSettlementCommittedMessage stamps a fresh message id and timestamp.
func NewSettlementCommittedMessage(clientID, paymentID int64) *SettlementCommittedMessage {
	return &SettlementCommittedMessage{
		MessageID: uuid.NewString(),
		ClientID:  clientID,
		PaymentID: paymentID,
		Items:     make([]SettledItem, 0),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SettlementCommittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SettlementCommittedMessageFromJSON creates a message from JSON bytes
func SettlementCommittedMessageFromJSON(data []byte) (*SettlementCommittedMessage, error) {
	var msg SettlementCommittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
