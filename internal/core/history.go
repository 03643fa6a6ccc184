package core

// DefaultHistoryLimit is the number of messages kept per room.
const DefaultHistoryLimit = 100

// History keeps the most recent broadcast messages of every room.
// Buffers are created on first append and live for the process lifetime.
// Not safe for concurrent use; the hub owns it.
type History struct {
	limit int
	rooms map[string][]Message
}

// NewHistory builds a store keeping at most limit messages per room.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit: limit,
		rooms: make(map[string][]Message),
	}
}

// Append records msg as the newest message of room, evicting the oldest one
// when the buffer is full.
func (h *History) Append(room string, msg Message) {
	buf := h.rooms[room]
	if len(buf) >= h.limit {
		buf = buf[len(buf)-h.limit+1:]
	}
	h.rooms[room] = append(buf, msg)
}

// Get returns a copy of the room's messages, oldest first. Unknown rooms
// yield an empty, non-nil slice.
func (h *History) Get(room string) []Message {
	return append(make([]Message, 0, len(h.rooms[room])), h.rooms[room]...)
}
