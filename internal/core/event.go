package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventConnected tells a client its own connection id.
	EventConnected EventKind = iota
	// EventHistory delivers room history to a client upon joining a room.
	EventHistory
	// EventUserJoined notifies a room about a user joining.
	EventUserJoined
	// EventUserLeft notifies a room about a user leaving.
	EventUserLeft
	// EventUsersList carries the current member list of a room.
	EventUsersList
	// EventJoinSuccess confirms a join to the joining client.
	EventJoinSuccess
	// EventRoomMessage notifies a room about a chat message.
	EventRoomMessage
	// EventPrivateReceived delivers a private message to its recipient.
	EventPrivateReceived
	// EventPrivateSent echoes a private message back to its sender.
	EventPrivateSent
	// EventTyping notifies a room that a member started or stopped typing.
	EventTyping
	// EventRoomChanged confirms a room change to the moving client.
	EventRoomChanged
	// EventRoomsList carries the room directory.
	EventRoomsList
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// A single Event may be shared by every recipient of a broadcast and must be
// treated as read-only.
type Event struct {
	Kind         EventKind
	Room         string
	User         string
	ConnectionID string
	UsersCount   int
	IsTyping     bool
	Message      *Message
	Messages     []Message // For EventHistory
	Users        []Member  // For EventUsersList
	Rooms        []RoomCount
	Private      *PrivateMessage
	Error        *CoreError
}

// RoomCount is one entry of the room directory.
type RoomCount struct {
	Name       string
	UsersCount int
}
