package core

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// User is the session state of a joined connection.
type User struct {
	ConnectionID string
	Username     string
	Room         string

	seq uint64
}

// Member is a user as listed to other clients.
type Member struct {
	Username     string
	ConnectionID string
}

// Presence maps connections to their users. Not safe for concurrent use;
// the hub owns it.
type Presence struct {
	users map[string]*User
	seq   uint64
}

// NewPresence creates an empty registry.
func NewPresence() *Presence {
	return &Presence{users: make(map[string]*User)}
}

// Add inserts or overwrites the user for a connection.
func (p *Presence) Add(connID, username, room string) {
	p.seq++
	p.users[connID] = &User{
		ConnectionID: connID,
		Username:     username,
		Room:         room,
		seq:          p.seq,
	}
}

// Get returns the user of a connection, if it has joined.
func (p *Presence) Get(connID string) (*User, bool) {
	u, ok := p.users[connID]
	return u, ok
}

// Remove deletes the user of a connection.
func (p *Presence) Remove(connID string) {
	delete(p.users, connID)
}

// Move changes the room of a joined user in place.
func (p *Presence) Move(connID, room string) {
	if u, ok := p.users[connID]; ok {
		p.seq++
		u.Room = room
		u.seq = p.seq
	}
}

// UsersInRoom lists the members of room in the order they entered it.
func (p *Presence) UsersInRoom(room string) []Member {
	users := lo.Filter(lo.Values(p.users), func(u *User, _ int) bool {
		return u.Room == room
	})
	slices.SortFunc(users, func(a, b *User) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return lo.Map(users, func(u *User, _ int) Member {
		return Member{Username: u.Username, ConnectionID: u.ConnectionID}
	})
}

// IsUsernameAvailable reports whether no user in room goes by username.
func (p *Presence) IsUsernameAvailable(username, room string) bool {
	return !lo.SomeBy(lo.Values(p.users), func(u *User) bool {
		return u.Room == room && u.Username == username
	})
}

// RoomCounts returns the number of users in every occupied room.
func (p *Presence) RoomCounts() map[string]int {
	return lo.CountValuesBy(lo.Values(p.users), func(u *User) string {
		return u.Room
	})
}
