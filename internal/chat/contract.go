//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package chat

// ConnectionID identifies one live transport session. It is assigned by the
// transport layer and is never reused across sessions.
type ConnectionID string

// Broadcaster is the delivery capability the core depends on. Every method is
// fire-and-forget: implementations must not block on a slow recipient and must
// swallow per-recipient failures.
type Broadcaster interface {
	DeliverToAll(evt Event)
	DeliverToGroup(room string, evt Event)
	DeliverToConnection(id ConnectionID, evt Event)
	AddToGroup(id ConnectionID, room string)
	RemoveFromGroup(id ConnectionID, room string)
}
