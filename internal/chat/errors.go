package chat

import "errors"

var (
	ErrEmptyRoom     = errors.New("room name is empty")
	ErrNotRoomMember = errors.New("connection is not a member of the room")
)
