package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin           = "join"
	InboundTypeChatMessage    = "chat_message"
	InboundTypePrivateMessage = "private_message"
	InboundTypeTyping         = "typing"
	InboundTypeChangeRoom     = "change_room"
	InboundTypeGetUsers       = "get_users"
	InboundTypeGetRooms       = "get_rooms"
)

const (
	EventConnected              = "connected"
	EventMessageHistory         = "message_history"
	EventUserJoined             = "user_joined"
	EventUserLeft               = "user_left"
	EventUsersList              = "users_list"
	EventJoinSuccess            = "join_success"
	EventError                  = "error"
	EventReceivedMessage        = "received_message"
	EventPrivateMessageReceived = "private_message_received"
	EventPrivateMessageSent     = "private_message_sent"
	EventUserTyping             = "user_typing"
	EventRoomChanged            = "room_changed"
	EventRoomsList              = "rooms_list"
)

// MaxUsernameLength bounds the raw username a client may submit.
const MaxUsernameLength = 20

// JoinData requests to join a room under a username. Text fields stay
// untyped so that non-string values reach the sanitizer as such.
type JoinData struct {
	Username any `json:"username"`
	Room     any `json:"room"`
}

// ChatMessageData is a room broadcast from the client.
type ChatMessageData struct {
	Message any `json:"message"`
}

// PrivateMessageData is a direct message to another connection.
type PrivateMessageData struct {
	Message            any    `json:"message"`
	TargetConnectionID string `json:"targetConnectionId"`
}

// TypingData toggles the typing indicator.
type TypingData struct {
	IsTyping bool `json:"isTyping"`
}

// ChangeRoomData moves the client to another room.
type ChangeRoomData struct {
	Room any `json:"room"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Message is a room broadcast as seen by clients.
type Message struct {
	Type         string `json:"type"`
	Username     string `json:"username,omitempty"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
	Room         string `json:"room"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// PrivateMessage is a direct message as seen by both parties.
type PrivateMessage struct {
	Type             string `json:"type"`
	FromUsername     string `json:"fromUsername"`
	ToUsername       string `json:"toUsername"`
	Message          string `json:"message"`
	Timestamp        string `json:"timestamp"`
	FromConnectionID string `json:"fromConnectionId"`
	ToConnectionID   string `json:"toConnectionId"`
}

// User is one entry of users_list.
type User struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId"`
}

// Room is one entry of rooms_list.
type Room struct {
	Name       string `json:"name"`
	UsersCount int    `json:"usersCount"`
}

// Connected tells a client its connection id.
type Connected struct {
	ConnectionID string `json:"connectionId"`
}

// JoinSuccess confirms a join.
type JoinSuccess struct {
	Username   string `json:"username"`
	Room       string `json:"room"`
	UsersCount int    `json:"usersCount"`
}

// RoomChanged confirms a room change.
type RoomChanged struct {
	Room       string `json:"room"`
	UsersCount int    `json:"usersCount"`
}

// UserTyping notifies that a room member is typing.
type UserTyping struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// Error describes an error sent to the client.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
