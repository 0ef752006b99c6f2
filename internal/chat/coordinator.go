// Package chat is the presence and routing core of the service. It tracks live
// connections and their current room, and decides who receives room messages,
// typing signals, direct messages and presence updates. Delivery itself is
// delegated to a Broadcaster supplied by the transport.
package chat

import (
	"fmt"
	"log/slog"
)

// Coordinator drives the connection lifecycle:
//
//	Unconnected -> Connected(no room) -> Connected(in room R)
//
// It is safe for concurrent use; operations on different connections are
// never serialized against each other.
type Coordinator struct {
	registry          *Registry
	membership        *Membership
	broadcaster       Broadcaster
	typing            *TypingRelay
	private           *PrivateRouter
	enforceMembership bool
	log               *slog.Logger
}

type Option func(*Coordinator)

// WithRoomMembershipEnforced drops SendMessage calls that target a room the
// caller is not currently in.
func WithRoomMembershipEnforced(enforce bool) Option {
	return func(c *Coordinator) { c.enforceMembership = enforce }
}

func NewCoordinator(log *slog.Logger, broadcaster Broadcaster, opts ...Option) *Coordinator {
	registry := NewRegistry()
	membership := NewMembership()
	c := &Coordinator{
		registry:    registry,
		membership:  membership,
		broadcaster: broadcaster,
		typing:      NewTypingRelay(log, registry, membership, broadcaster),
		private:     NewPrivateRouter(log, registry, broadcaster),
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Registry() *Registry     { return c.registry }
func (c *Coordinator) Membership() *Membership { return c.membership }

// OnConnect registers id and pushes the new presence list to everyone.
// Joining a room is a separate, later step.
func (c *Coordinator) OnConnect(id ConnectionID, username string) {
	if username == "" {
		username = UnknownUser
	}
	c.registry.Register(id, username)
	c.log.Info("Connection registered", "connection_id", id, "username", username, "online", c.registry.Len())
	c.broadcastPresence()
}

// OnDisconnect is terminal for id. Disconnecting an id that never connected
// only rebroadcasts presence.
func (c *Coordinator) OnDisconnect(id ConnectionID) {
	username, ok := c.registry.Unregister(id)
	if !ok {
		username = UnknownUser
	}
	if room, ok := c.membership.Clear(id); ok {
		c.broadcaster.RemoveFromGroup(id, room)
		c.broadcaster.DeliverToGroup(room, NotificationEvent{Text: fmt.Sprintf("%s left the chat.", username)})
	}
	c.log.Info("Connection unregistered", "connection_id", id, "username", username, "online", c.registry.Len())
	c.broadcastPresence()
}

// JoinRoom moves id into room. Re-joining the current room re-adds the
// connection to the group but sends no leave/join notices.
func (c *Coordinator) JoinRoom(id ConnectionID, room string) {
	if room == "" {
		c.log.Debug("Join ignored", "connection_id", id, "error", ErrEmptyRoom)
		return
	}
	username := usernameOf(c.registry, id)

	previous, hadRoom := c.membership.SwitchRoom(id, room)
	changed := !hadRoom || previous != room
	if hadRoom && previous != room {
		c.broadcaster.RemoveFromGroup(id, previous)
		c.broadcaster.DeliverToGroup(previous, NotificationEvent{Text: fmt.Sprintf("%s left the room.", username)})
	}

	c.broadcaster.AddToGroup(id, room)
	if changed {
		c.broadcaster.DeliverToGroup(room, NotificationEvent{Text: fmt.Sprintf("%s joined the room '%s'.", username, room)})
		attrs := []any{"connection_id", id, "username", username, "room", room}
		if hadRoom {
			attrs = append(attrs, "previous", previous)
		}
		c.log.Debug("Room joined", attrs...)
	}
	c.broadcastPresence()
}

// SendMessage broadcasts text to room under the caller's name. Unless
// membership enforcement is on, the caller does not need to be in room.
func (c *Coordinator) SendMessage(id ConnectionID, text, room string) {
	if room == "" {
		c.log.Debug("Message ignored", "connection_id", id, "error", ErrEmptyRoom)
		return
	}
	if c.enforceMembership {
		if current, ok := c.membership.CurrentRoom(id); !ok || current != room {
			c.log.Warn("Message dropped", "connection_id", id, "room", room, "error", ErrNotRoomMember)
			return
		}
	}
	c.broadcaster.DeliverToGroup(room, MessageEvent{Sender: usernameOf(c.registry, id), Text: text})
}

func (c *Coordinator) NotifyTyping(id ConnectionID, isTyping bool) {
	c.typing.NotifyTyping(id, isTyping)
}

func (c *Coordinator) SendPrivateMessage(id ConnectionID, recipient, text string) {
	c.private.SendPrivate(id, recipient, text)
}

func (c *Coordinator) broadcastPresence() {
	c.broadcaster.DeliverToAll(UserListEvent{Users: c.registry.SnapshotUsernames()})
}
