package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin registers the connection under a username in a room.
	CommandJoin CommandKind = iota
	// CommandSendMessage broadcasts a chat message to the sender's room.
	CommandSendMessage
	// CommandSendPrivate delivers a message to a single connection.
	CommandSendPrivate
	// CommandTyping tells the rest of the room the sender is (not) typing.
	CommandTyping
	// CommandChangeRoom moves a joined user to another room.
	CommandChangeRoom
	// CommandGetUsers asks for the member list of the sender's room.
	CommandGetUsers
	// CommandGetRooms asks for the directory of all occupied rooms.
	CommandGetRooms

	// commandConnect and commandDisconnect are raised by the hub itself
	// around the lifetime of a client's command stream.
	commandConnect
	commandDisconnect
)

// Command represents an action requested by a client.
//
// Username, Room and Text carry the raw values decoded from the client and may
// be of any type; the hub sanitizes them before use.
type Command struct {
	Kind     CommandKind
	Username any
	Room     any
	Text     any
	TargetID string
	IsTyping bool
}
