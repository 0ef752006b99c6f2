package chat

import "log/slog"

// TypingRelay forwards start/stop typing signals to the caller's current
// room. It keeps no typing state; throttling is the client's job.
type TypingRelay struct {
	registry    *Registry
	membership  *Membership
	broadcaster Broadcaster
	log         *slog.Logger
}

func NewTypingRelay(log *slog.Logger, registry *Registry, membership *Membership, broadcaster Broadcaster) *TypingRelay {
	return &TypingRelay{registry: registry, membership: membership, broadcaster: broadcaster, log: log}
}

// NotifyTyping is a no-op when id is not in a room.
func (t *TypingRelay) NotifyTyping(id ConnectionID, isTyping bool) {
	room, ok := t.membership.CurrentRoom(id)
	if !ok {
		t.log.Debug("Typing signal outside of a room ignored", "connection_id", id)
		return
	}
	t.broadcaster.DeliverToGroup(room, TypingEvent{
		Username: usernameOf(t.registry, id),
		IsTyping: isTyping,
	})
}

func usernameOf(registry *Registry, id ConnectionID) string {
	if username, ok := registry.Username(id); ok && username != "" {
		return username
	}
	return UnknownUser
}
