package chat

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// RoomInfo is a read-only view of a room and how many connections are in it.
type RoomInfo struct {
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// Membership records the single room each connection is currently in.
// Rooms are never created or destroyed explicitly: a room exists while at
// least one connection points at it.
type Membership struct {
	mu    sync.RWMutex
	rooms map[ConnectionID]string
}

func NewMembership() *Membership {
	return &Membership{rooms: make(map[ConnectionID]string)}
}

// SwitchRoom records room as current for id and returns the room that was
// current immediately before, if any. The swap is atomic, so readers never
// see id in zero or two rooms.
func (m *Membership) SwitchRoom(id ConnectionID, room string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, ok := m.rooms[id]
	m.rooms[id] = room
	return previous, ok
}

// Clear drops the membership of id and returns the vacated room, if any.
func (m *Membership) Clear(id ConnectionID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, ok := m.rooms[id]
	if ok {
		delete(m.rooms, id)
	}
	return previous, ok
}

func (m *Membership) CurrentRoom(id ConnectionID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[id]
	return room, ok
}

// Rooms lists every non-empty room sorted by name.
func (m *Membership) Rooms() []RoomInfo {
	m.mu.RLock()
	counts := lo.CountValues(lo.Values(m.rooms))
	m.mu.RUnlock()

	rooms := lo.MapToSlice(counts, func(name string, count int) RoomInfo {
		return RoomInfo{Name: name, MemberCount: count}
	})
	slices.SortFunc(rooms, func(a, b RoomInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return rooms
}
