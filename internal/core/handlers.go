package core

import (
	"slices"
	"strings"

	"github.com/vovakirdan/chatrelay/internal/sanitize"
)

const (
	// DefaultRoom is used when a client names no room.
	DefaultRoom = "general"
	// MinUsernameLength is the shortest accepted username, after sanitizing.
	MinUsernameLength = 2
)

func roomOrDefault(room string) string {
	if room == "" {
		return DefaultRoom
	}
	return room
}

func (h *Hub) handleConnect(c *Client) {
	h.clients[c.ID] = c
	h.emit(c, &Event{Kind: EventConnected, ConnectionID: c.ID})
	h.log.Debug().Str("client_id", c.ID).Msg("client connected")
}

func (h *Hub) handleDisconnect(c *Client) {
	h.limiter.Forget(c.ID)
	if h.clients[c.ID] != c {
		return
	}

	if user, ok := h.presence.Get(c.ID); ok {
		h.unsubscribe(c, user.Room)
		h.broadcast(user.Room, &Event{
			Kind:    EventUserLeft,
			Room:    user.Room,
			User:    user.Username,
			Message: h.systemMessage(user.Room, user.Username, user.Username+" left the room"),
		})
		h.presence.Remove(c.ID)
		h.broadcastUsers(user.Room)
		h.log.Debug().Str("client_id", c.ID).Str("user", user.Username).Str("room", user.Room).Msg("user left")
	}

	delete(h.clients, c.ID)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Msg("client disconnected")
}

func (h *Hub) handleJoin(c *Client, cmd *Command) *CoreError {
	if _, joined := h.presence.Get(c.ID); joined {
		return coreError(ErrCodeValidation, MsgAlreadyJoined)
	}

	username := sanitize.Text(cmd.Username)
	room := roomOrDefault(sanitize.Text(cmd.Room))

	if sanitize.Length(username) < MinUsernameLength {
		return coreError(ErrCodeValidation, MsgUsernameTooShort)
	}
	if !h.presence.IsUsernameAvailable(username, room) {
		return coreError(ErrCodeConflict, MsgUsernameTaken)
	}

	h.subscribe(c, room)
	h.presence.Add(c.ID, username, room)

	h.emit(c, &Event{Kind: EventHistory, Room: room, Messages: h.history.Get(room)})
	h.broadcast(room, &Event{
		Kind:    EventUserJoined,
		Room:    room,
		User:    username,
		Message: h.systemMessage(room, username, username+" joined the room"),
	})
	users := h.broadcastUsers(room)
	h.emit(c, &Event{Kind: EventJoinSuccess, Room: room, User: username, UsersCount: len(users)})

	h.log.Debug().Str("client_id", c.ID).Str("user", username).Str("room", room).Msg("user joined")
	return nil
}

func (h *Hub) handleChatMessage(c *Client, cmd *Command) *CoreError {
	user, ok := h.presence.Get(c.ID)
	if !ok {
		return coreError(ErrCodeValidation, MsgMustJoinFirst)
	}
	if h.limiter.Limited(c.ID) {
		return coreError(ErrCodeRateLimited, MsgRateLimited)
	}

	text := sanitize.Text(cmd.Text)
	if text == "" {
		return nil
	}
	h.limiter.Record(c.ID)

	msg := Message{
		Type:         MessageTypeUser,
		Username:     user.Username,
		Text:         text,
		Room:         user.Room,
		ConnectionID: c.ID,
		CreatedAt:    h.now(),
	}
	h.history.Append(user.Room, msg)
	h.broadcast(user.Room, &Event{Kind: EventRoomMessage, Room: user.Room, User: user.Username, Message: &msg})
	return nil
}

func (h *Hub) handlePrivateMessage(c *Client, cmd *Command) *CoreError {
	sender, ok := h.presence.Get(c.ID)
	if !ok {
		return coreError(ErrCodeValidation, MsgMustJoinFirst)
	}
	recipient, ok := h.presence.Get(cmd.TargetID)
	if !ok {
		return coreError(ErrCodeNotFound, MsgRecipientMissing)
	}
	target, ok := h.clients[recipient.ConnectionID]
	if !ok {
		return coreError(ErrCodeNotFound, MsgRecipientMissing)
	}
	if h.limiter.Limited(c.ID) {
		return coreError(ErrCodeRateLimited, MsgRateLimited)
	}

	text := sanitize.Text(cmd.Text)
	h.limiter.Record(c.ID)

	pm := &PrivateMessage{
		FromUsername:     sender.Username,
		ToUsername:       recipient.Username,
		Text:             text,
		FromConnectionID: c.ID,
		ToConnectionID:   recipient.ConnectionID,
		CreatedAt:        h.now(),
	}
	h.emit(target, &Event{Kind: EventPrivateReceived, User: sender.Username, Private: pm})
	h.emit(c, &Event{Kind: EventPrivateSent, User: recipient.Username, Private: pm})
	return nil
}

func (h *Hub) handleTyping(c *Client, cmd *Command) {
	user, ok := h.presence.Get(c.ID)
	if !ok {
		return
	}
	h.broadcastExcept(user.Room, &Event{
		Kind:     EventTyping,
		Room:     user.Room,
		User:     user.Username,
		IsTyping: cmd.IsTyping,
	}, c)
}

func (h *Hub) handleChangeRoom(c *Client, cmd *Command) *CoreError {
	user, ok := h.presence.Get(c.ID)
	if !ok {
		return nil
	}

	newRoom := roomOrDefault(sanitize.Text(cmd.Room))
	oldRoom := user.Room
	if newRoom == oldRoom {
		return nil
	}
	if h.opts.UniqueNameOnRoomChange && !h.presence.IsUsernameAvailable(user.Username, newRoom) {
		return coreError(ErrCodeConflict, MsgUsernameTaken)
	}

	h.unsubscribe(c, oldRoom)
	h.broadcast(oldRoom, &Event{
		Kind:    EventUserLeft,
		Room:    oldRoom,
		User:    user.Username,
		Message: h.systemMessage(oldRoom, user.Username, user.Username+" left the room"),
	})
	// Member lists come from presence, so move before listing the old room.
	h.subscribe(c, newRoom)
	h.presence.Move(c.ID, newRoom)
	h.broadcastUsers(oldRoom)

	h.emit(c, &Event{Kind: EventHistory, Room: newRoom, Messages: h.history.Get(newRoom)})
	h.broadcast(newRoom, &Event{
		Kind:    EventUserJoined,
		Room:    newRoom,
		User:    user.Username,
		Message: h.systemMessage(newRoom, user.Username, user.Username+" joined the room"),
	})
	users := h.broadcastUsers(newRoom)
	h.emit(c, &Event{Kind: EventRoomChanged, Room: newRoom, UsersCount: len(users)})

	h.log.Debug().Str("client_id", c.ID).Str("user", user.Username).Str("from", oldRoom).Str("to", newRoom).Msg("user changed room")
	return nil
}

func (h *Hub) handleGetUsers(c *Client) {
	user, ok := h.presence.Get(c.ID)
	if !ok {
		return
	}
	h.emit(c, &Event{Kind: EventUsersList, Room: user.Room, Users: h.presence.UsersInRoom(user.Room)})
}

func (h *Hub) handleGetRooms(c *Client) {
	h.emit(c, &Event{Kind: EventRoomsList, Rooms: h.roomDirectory()})
}

// broadcastUsers sends the room's member list to the room and returns it.
func (h *Hub) broadcastUsers(room string) []Member {
	users := h.presence.UsersInRoom(room)
	h.broadcast(room, &Event{Kind: EventUsersList, Room: room, Users: users})
	return users
}

func (h *Hub) roomDirectory() []RoomCount {
	counts := h.presence.RoomCounts()
	rooms := make([]RoomCount, 0, len(counts))
	for name, n := range counts {
		rooms = append(rooms, RoomCount{Name: name, UsersCount: n})
	}
	slices.SortFunc(rooms, func(a, b RoomCount) int {
		return strings.Compare(a.Name, b.Name)
	})
	return rooms
}

func (h *Hub) systemMessage(room, username, text string) *Message {
	return &Message{
		Type:      MessageTypeSystem,
		Username:  username,
		Text:      text,
		Room:      room,
		CreatedAt: h.now(),
	}
}
