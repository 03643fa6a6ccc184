package core

// channel is the fanout set of a room: the live clients that receive its
// broadcasts. History and presence live elsewhere, so a channel is dropped
// as soon as its last subscriber leaves.
type channel struct {
	subscribers map[string]*Client
}

func newChannel() *channel {
	return &channel{subscribers: make(map[string]*Client)}
}

func (ch *channel) subscribe(c *Client) {
	ch.subscribers[c.ID] = c
}

func (ch *channel) unsubscribe(c *Client) {
	delete(ch.subscribers, c.ID)
}

func (ch *channel) len() int {
	return len(ch.subscribers)
}

// publish delivers event to every subscriber except skip, which may be nil.
func (ch *channel) publish(event *Event, skip *Client) {
	for id, c := range ch.subscribers {
		if skip != nil && id == skip.ID {
			continue
		}
		send(c, event)
	}
}

// send never blocks the hub; a full buffer drops the event for that client.
func send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
