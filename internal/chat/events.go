package chat

// EventName is the wire name of an outbound event.
type EventName string

const (
	EventMessage            EventName = "message"
	EventNotification       EventName = "notification"
	EventUserList           EventName = "userList"
	EventTypingNotification EventName = "typingNotification"
	EventPrivateMessage     EventName = "privateMessage"
)

// Event is an outbound event emitted toward one or more connections.
type Event interface {
	Name() EventName
}

// MessageEvent is a chat line broadcast to a room.
type MessageEvent struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (MessageEvent) Name() EventName { return EventMessage }

// NotificationEvent is a system notice (joins, leaves).
type NotificationEvent struct {
	Text string `json:"text"`
}

func (NotificationEvent) Name() EventName { return EventNotification }

// UserListEvent carries the presence list. Users is unordered and holds one
// entry per live connection, so a user connected twice appears twice.
type UserListEvent struct {
	Users []string `json:"users"`
}

func (UserListEvent) Name() EventName { return EventUserList }

// TypingEvent relays a point-in-time typing signal.
type TypingEvent struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

func (TypingEvent) Name() EventName { return EventTypingNotification }

// PrivateMessageEvent is a direct message. IsEcho is set on the copy sent
// back to the author.
type PrivateMessageEvent struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	IsEcho bool   `json:"isEcho"`
}

func (PrivateMessageEvent) Name() EventName { return EventPrivateMessage }
