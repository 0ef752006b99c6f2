package chat

import "log/slog"

// PrivateRouter delivers direct messages between online users.
//
// Delivery is online-only: a message to a user with no live connection is
// dropped without telling the sender, and nothing is queued for later.
type PrivateRouter struct {
	registry    *Registry
	broadcaster Broadcaster
	log         *slog.Logger
}

func NewPrivateRouter(log *slog.Logger, registry *Registry, broadcaster Broadcaster) *PrivateRouter {
	return &PrivateRouter{registry: registry, broadcaster: broadcaster, log: log}
}

// SendPrivate delivers text to the first live connection of recipient, then
// echoes it back to the sender with IsEcho set.
func (p *PrivateRouter) SendPrivate(sender ConnectionID, recipient, text string) {
	senderName := usernameOf(p.registry, sender)

	target, ok := p.registry.LookupByUsername(recipient)
	if !ok {
		p.log.Debug("Private message to offline user dropped",
			"connection_id", sender, "username", senderName, "recipient", recipient)
		return
	}

	p.broadcaster.DeliverToConnection(target, PrivateMessageEvent{Sender: senderName, Text: text})
	p.broadcaster.DeliverToConnection(sender, PrivateMessageEvent{Sender: senderName, Text: text, IsEcho: true})
}
