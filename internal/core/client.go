package core

import "sync"

// DefaultClientBuffer is the event buffer used when none is given.
const DefaultClientBuffer = 64

// Client is one live connection as seen by the core layer.
//
// The transport writes to Commands and reads from Events. The hub closes
// Events once the client has been disconnected.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
	}
}

// Close ends the client's command stream. The hub treats it as a disconnect
// once every command sent before it has been handled. Safe to call twice.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Commands)
	})
}
