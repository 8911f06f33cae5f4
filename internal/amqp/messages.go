package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"spendtrend/internal/budget"
)

// MessageVersion is bumped whenever BudgetAlertMessage changes shape.
const MessageVersion = 1

// BudgetAlertMessage carries one over-budget verdict to the alert worker.
type BudgetAlertMessage struct {
	Version   int          `json:"version"`
	Alert     budget.Alert `json:"alert"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewBudgetAlertMessage(a budget.Alert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Version:   MessageVersion,
		Alert:     a,
		Timestamp: time.Now().UTC(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes and sanity checks a message body.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != MessageVersion {
		return nil, errors.New("unsupported message version")
	}
	if msg.Alert.Month.Year == 0 {
		return nil, errors.New("alert has no month")
	}
	return &msg, nil
}
