package core

import "time"

// MessageType distinguishes server notices from user-authored messages.
type MessageType string

const (
	MessageTypeSystem MessageType = "system"
	MessageTypeUser   MessageType = "user"
)

// Message is a room broadcast. It is never mutated after construction.
type Message struct {
	Type         MessageType
	Username     string
	Text         string
	Room         string
	ConnectionID string
	CreatedAt    time.Time
}

// PrivateMessage is delivered to a single recipient and echoed to the sender.
// It never enters room history.
type PrivateMessage struct {
	FromUsername     string
	ToUsername       string
	Text             string
	FromConnectionID string
	ToConnectionID   string
	CreatedAt        time.Time
}
