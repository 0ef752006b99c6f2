// Package chattest provides an in-memory chat.Broadcaster that records every
// delivery, for use in tests.
package chattest

import (
	"slices"
	"sync"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/samber/lo"
)

type Target int

const (
	TargetAll Target = iota
	TargetGroup
	TargetConnection
)

// Delivery is one recorded call. For group deliveries Recipients holds the
// group members at the time of the call.
type Delivery struct {
	Target     Target
	Room       string
	Connection chat.ConnectionID
	Recipients []chat.ConnectionID
	Event      chat.Event
}

// Recorder implements chat.Broadcaster. It is safe for concurrent use.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
	groups     map[string]map[chat.ConnectionID]struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{groups: make(map[string]map[chat.ConnectionID]struct{})}
}

func (r *Recorder) DeliverToAll(evt chat.Event) {
	r.record(Delivery{Target: TargetAll, Event: evt})
}

func (r *Recorder) DeliverToGroup(room string, evt chat.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{
		Target:     TargetGroup,
		Room:       room,
		Recipients: lo.Keys(r.groups[room]),
		Event:      evt,
	})
}

func (r *Recorder) DeliverToConnection(id chat.ConnectionID, evt chat.Event) {
	r.record(Delivery{Target: TargetConnection, Connection: id, Event: evt})
}

func (r *Recorder) AddToGroup(id chat.ConnectionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[room]; !ok {
		r.groups[room] = make(map[chat.ConnectionID]struct{})
	}
	r.groups[room][id] = struct{}{}
}

func (r *Recorder) RemoveFromGroup(id chat.ConnectionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups[room], id)
	if len(r.groups[room]) == 0 {
		delete(r.groups, room)
	}
}

func (r *Recorder) record(d Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
}

// Deliveries returns a copy of everything recorded so far.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.deliveries)
}

// Reset forgets recorded deliveries but keeps group membership.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}

// GroupMembers returns the current members of room, unordered.
func (r *Recorder) GroupMembers(room string) []chat.ConnectionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.groups[room])
}

// ToGroup returns the events delivered to room, in order.
func (r *Recorder) ToGroup(room string) []chat.Event {
	return r.events(func(d Delivery) bool { return d.Target == TargetGroup && d.Room == room })
}

// ToAll returns the events delivered to every connection, in order.
func (r *Recorder) ToAll() []chat.Event {
	return r.events(func(d Delivery) bool { return d.Target == TargetAll })
}

// ReceivedBy returns, in order, every event id would have received: broadcasts
// to all, group deliveries made while id was a member, and direct deliveries.
func (r *Recorder) ReceivedBy(id chat.ConnectionID) []chat.Event {
	return r.events(func(d Delivery) bool {
		switch d.Target {
		case TargetAll:
			return true
		case TargetGroup:
			return slices.Contains(d.Recipients, id)
		default:
			return d.Connection == id
		}
	})
}

func (r *Recorder) events(keep func(Delivery) bool) []chat.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.FilterMap(r.deliveries, func(d Delivery, _ int) (chat.Event, bool) {
		return d.Event, keep(d)
	})
}
