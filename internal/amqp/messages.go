package amqp

import (
	"encoding/json"
	"time"
)

// FeedDegradedMessage reports a render cycle that fell back to the built-in
// dataset because a live feed read failed.
type FeedDegradedMessage struct {
	Feed      string    `json:"feed"`
	Endpoint  string    `json:"endpoint"`
	Error     string    `json:"error"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFeedDegradedMessage stamps a message with the current time.
func NewFeedDegradedMessage(feed, endpoint string, cause error, records int) *FeedDegradedMessage {
	msg := &FeedDegradedMessage{
		Feed:      feed,
		Endpoint:  endpoint,
		Records:   records,
		Timestamp: time.Now(),
	}
	if cause != nil {
		msg.Error = cause.Error()
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *FeedDegradedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FeedDegradedMessageFromJSON creates a message from JSON bytes
func FeedDegradedMessageFromJSON(data []byte) (*FeedDegradedMessage, error) {
	var msg FeedDegradedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
