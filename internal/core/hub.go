package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Options tune the hub. Zero values fall back to the package defaults.
type Options struct {
	HistoryLimit    int
	RateLimitMax    int
	RateLimitWindow time.Duration
	// UniqueNameOnRoomChange rejects a room change when the destination room
	// already has a user with the same name. Join always checks.
	UniqueNameOnRoomChange bool
}

// Hub owns every piece of shared chat state and processes client commands
// one at a time on the goroutine running Run.
type Hub struct {
	inbox     chan envelope
	snapshots chan chan []RoomCount
	done      chan struct{}

	clients  map[string]*Client
	channels map[string]*channel
	presence *Presence
	history  *History
	limiter  *RateLimiter

	opts Options
	now  func() time.Time
	log  *zerolog.Logger
}

type envelope struct {
	client *Client
	cmd    *Command
}

// NewHub creates a new chat hub instance. A nil logger disables logging.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		inbox:     make(chan envelope),
		snapshots: make(chan chan []RoomCount),
		done:      make(chan struct{}),
		clients:   make(map[string]*Client),
		channels:  make(map[string]*channel),
		presence:  NewPresence(),
		history:   NewHistory(opts.HistoryLimit),
		limiter:   NewRateLimiter(opts.RateLimitMax, opts.RateLimitWindow),
		opts:      opts,
		now:       time.Now,
		log:       logger,
	}
}

// Run processes commands until ctx is cancelled. On exit the event channels
// of all connected clients are closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		for id, c := range h.clients {
			close(c.Events)
			delete(h.clients, id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("hub stopped")
			return
		case env := <-h.inbox:
			h.dispatch(env)
		case reply := <-h.snapshots:
			reply <- h.roomDirectory()
		}
	}
}

// RegisterClient starts feeding the client's commands to the hub.
func (h *Hub) RegisterClient(c *Client) {
	go h.pump(c)
}

// UnregisterClient closes the client's command stream; the hub disconnects
// it after handling whatever was already queued.
func (h *Hub) UnregisterClient(c *Client) {
	c.Close()
}

// Rooms returns the current room directory.
func (h *Hub) Rooms(ctx context.Context) ([]RoomCount, error) {
	reply := make(chan []RoomCount, 1)
	select {
	case h.snapshots <- reply:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) pump(c *Client) {
	if !h.deliver(c, &Command{Kind: commandConnect}) {
		// The hub stopped before it saw the client, so nothing else will
		// close its event stream.
		close(c.Events)
		return
	}
	for cmd := range c.Commands {
		if cmd == nil {
			continue
		}
		if !h.deliver(c, cmd) {
			return
		}
	}
	h.deliver(c, &Command{Kind: commandDisconnect})
}

// deliver hands cmd to the hub. The inbox is unbuffered, so an accepted
// envelope is always dispatched and deliveries fail once Run has returned.
func (h *Hub) deliver(c *Client, cmd *Command) bool {
	select {
	case h.inbox <- envelope{client: c, cmd: cmd}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) dispatch(env envelope) {
	c, cmd := env.client, env.cmd

	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("client_id", c.ID).Int("command", int(cmd.Kind)).Msg("command handler panicked")
			h.emitError(c, coreError(ErrCodeInternal, MsgInternal))
		}
	}()

	var err *CoreError
	switch cmd.Kind {
	case commandConnect:
		h.handleConnect(c)
	case commandDisconnect:
		h.handleDisconnect(c)
	case CommandJoin:
		err = h.handleJoin(c, cmd)
	case CommandSendMessage:
		err = h.handleChatMessage(c, cmd)
	case CommandSendPrivate:
		err = h.handlePrivateMessage(c, cmd)
	case CommandTyping:
		h.handleTyping(c, cmd)
	case CommandChangeRoom:
		err = h.handleChangeRoom(c, cmd)
	case CommandGetUsers:
		h.handleGetUsers(c)
	case CommandGetRooms:
		h.handleGetRooms(c)
	default:
		err = coreError(ErrCodeBadRequest, MsgUnknownCommand)
	}

	if err != nil {
		h.log.Debug().Str("client_id", c.ID).Str("code", err.Code).Msg(err.Message)
		h.emitError(c, err)
	}
}

// emit sends an event to a single client if it is still connected.
func (h *Hub) emit(c *Client, event *Event) {
	if h.clients[c.ID] != c {
		return
	}
	send(c, event)
}

func (h *Hub) emitError(c *Client, err *CoreError) {
	h.emit(c, &Event{Kind: EventError, Error: err})
}

func (h *Hub) broadcast(room string, event *Event) {
	h.broadcastExcept(room, event, nil)
}

func (h *Hub) broadcastExcept(room string, event *Event, skip *Client) {
	if ch, ok := h.channels[room]; ok {
		ch.publish(event, skip)
	}
}

func (h *Hub) subscribe(c *Client, room string) {
	ch, ok := h.channels[room]
	if !ok {
		ch = newChannel()
		h.channels[room] = ch
	}
	ch.subscribe(c)
}

func (h *Hub) unsubscribe(c *Client, room string) {
	ch, ok := h.channels[room]
	if !ok {
		return
	}
	ch.unsubscribe(c)
	if ch.len() == 0 {
		delete(h.channels, room)
	}
}
