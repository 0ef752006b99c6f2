package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tyrowin/roomchat/internal/chat"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownFrame   = errors.New("unknown frame type")
	ErrInvalidFrame   = errors.New("invalid frame payload")
)

// Inbound frame types.
const (
	FrameJoinRoom       = "joinRoom"
	FrameSendMessage    = "sendMessage"
	FrameTyping         = "typing"
	FramePrivateMessage = "privateMessage"
)

// Envelope is the JSON wrapper of every websocket frame, in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Session is the set of operations a connection can trigger on the chat core.
type Session interface {
	OnConnect(id chat.ConnectionID, username string)
	OnDisconnect(id chat.ConnectionID)
	JoinRoom(id chat.ConnectionID, room string)
	SendMessage(id chat.ConnectionID, text, room string)
	NotifyTyping(id chat.ConnectionID, isTyping bool)
	SendPrivateMessage(id chat.ConnectionID, recipient, text string)
}

type command interface {
	dispatch(s Session, id chat.ConnectionID)
}

// textCarrier is implemented by frames whose text is bounded by
// MaxMessageSize.
type textCarrier interface {
	bodyText() string
}

type JoinRoomFrame struct {
	Room string `json:"room" validate:"required"`
}

func (f JoinRoomFrame) dispatch(s Session, id chat.ConnectionID) { s.JoinRoom(id, f.Room) }

type SendMessageFrame struct {
	Text string `json:"text" validate:"required"`
	Room string `json:"room" validate:"required"`
}

func (f SendMessageFrame) dispatch(s Session, id chat.ConnectionID) { s.SendMessage(id, f.Text, f.Room) }
func (f SendMessageFrame) bodyText() string                         { return f.Text }

// TypingFrame may name a room, but the signal always goes to the sender's
// current room.
type TypingFrame struct {
	Room     string `json:"room,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

func (f TypingFrame) dispatch(s Session, id chat.ConnectionID) { s.NotifyTyping(id, f.IsTyping) }

type PrivateMessageFrame struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
}

func (f PrivateMessageFrame) dispatch(s Session, id chat.ConnectionID) {
	s.SendPrivateMessage(id, f.To, f.Text)
}

func (f PrivateMessageFrame) bodyText() string { return f.Text }

// decodeFrame parses one inbound frame. Text longer than maxText characters
// is rejected with ErrInvalidFrame; maxText <= 0 disables the bound.
func decodeFrame(raw []byte, maxText int64) (command, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	switch envelope.Type {
	case FrameJoinRoom:
		return decodePayload[JoinRoomFrame](envelope, maxText)
	case FrameSendMessage:
		return decodePayload[SendMessageFrame](envelope, maxText)
	case FrameTyping:
		return decodePayload[TypingFrame](envelope, maxText)
	case FramePrivateMessage:
		return decodePayload[PrivateMessageFrame](envelope, maxText)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, envelope.Type)
	}
}

func decodePayload[T command](envelope Envelope, maxText int64) (command, error) {
	var payload T
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedFrame, envelope.Type, err)
		}
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFrame, envelope.Type, err)
	}
	if carrier, ok := any(payload).(textCarrier); ok && maxText > 0 {
		if err := validate.Var(carrier.bodyText(), fmt.Sprintf("max=%d", maxText)); err != nil {
			return nil, fmt.Errorf("%w: %s: text longer than %d: %w", ErrInvalidFrame, envelope.Type, maxText, err)
		}
	}
	return payload, nil
}

func encodeEvent(evt chat.Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", evt.Name(), err)
	}
	return json.Marshal(Envelope{Type: string(evt.Name()), Data: data})
}
