package server

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    command
		wantErr error
	}{
		{"Join room", `{"type":"joinRoom","data":{"room":"lobby"}}`, JoinRoomFrame{Room: "lobby"}, nil},
		{"Send message", `{"type":"sendMessage","data":{"text":"hi","room":"lobby"}}`, SendMessageFrame{Text: "hi", Room: "lobby"}, nil},
		{"Typing", `{"type":"typing","data":{"room":"lobby","isTyping":true}}`, TypingFrame{Room: "lobby", IsTyping: true}, nil},
		{"Typing without room", `{"type":"typing","data":{"isTyping":false}}`, TypingFrame{}, nil},
		{"Private message", `{"type":"privateMessage","data":{"to":"bob","text":"secret"}}`, PrivateMessageFrame{To: "bob", Text: "secret"}, nil},
		{"Empty room", `{"type":"joinRoom","data":{"room":""}}`, nil, ErrInvalidFrame},
		{"Missing data", `{"type":"sendMessage"}`, nil, ErrInvalidFrame},
		{"Missing recipient", `{"type":"privateMessage","data":{"text":"x"}}`, nil, ErrInvalidFrame},
		{"Unknown type", `{"type":"dance","data":{}}`, nil, ErrUnknownFrame},
		{"Not JSON", `hello`, nil, ErrMalformedFrame},
		{"Message at the limit", `{"type":"sendMessage","data":{"text":"` + strings.Repeat("x", 16) + `","room":"lobby"}}`, SendMessageFrame{Text: strings.Repeat("x", 16), Room: "lobby"}, nil},
		{"Message over the limit", `{"type":"sendMessage","data":{"text":"` + strings.Repeat("x", 17) + `","room":"lobby"}}`, nil, ErrInvalidFrame},
		{"Private message over the limit", `{"type":"privateMessage","data":{"to":"bob","text":"` + strings.Repeat("x", 17) + `"}}`, nil, ErrInvalidFrame},
		{"Room name is not bounded by the text limit", `{"type":"joinRoom","data":{"room":"` + strings.Repeat("r", 40) + `"}}`, JoinRoomFrame{Room: strings.Repeat("r", 40)}, nil},
		{"Wrong payload shape", `{"type":"joinRoom","data":{"room":42}}`, nil, ErrMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, err := decodeFrame([]byte(tt.raw), 16)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, cmd)
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	req := require.New(t)

	raw, err := encodeEvent(chat.PrivateMessageEvent{Sender: "alice", Text: "secret", IsEcho: true})
	req.NoError(err)

	var envelope struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal("privateMessage", envelope.Type)
	req.Equal(map[string]any{"sender": "alice", "text": "secret", "isEcho": true}, envelope.Data)
}

type recordingSession struct {
	calls []string
}

func (s *recordingSession) OnConnect(chat.ConnectionID, string) {}
func (s *recordingSession) OnDisconnect(chat.ConnectionID)      {}
func (s *recordingSession) JoinRoom(_ chat.ConnectionID, room string) {
	s.calls = append(s.calls, "join:"+room)
}
func (s *recordingSession) SendMessage(_ chat.ConnectionID, text, room string) {
	s.calls = append(s.calls, "send:"+room+":"+text)
}
func (s *recordingSession) NotifyTyping(_ chat.ConnectionID, isTyping bool) {
	if isTyping {
		s.calls = append(s.calls, "typing:on")
		return
	}
	s.calls = append(s.calls, "typing:off")
}
func (s *recordingSession) SendPrivateMessage(_ chat.ConnectionID, to, text string) {
	s.calls = append(s.calls, "private:"+to+":"+text)
}

func TestClient_ProcessFrame_Dispatches_In_Order(t *testing.T) {
	req := require.New(t)
	session := &recordingSession{}
	client := NewClient("c1", "alice", nil, nil, session, "127.0.0.1:1", NewConfig(), testLogger())

	frames := []string{
		`{"type":"joinRoom","data":{"room":"lobby"}}`,
		`{"type":"typing","data":{"isTyping":true}}`,
		`{"type":"bogus"}`,
		`{"type":"typing","data":{"isTyping":false}}`,
		`{"type":"sendMessage","data":{"text":"hi","room":"lobby"}}`,
		`{"type":"privateMessage","data":{"to":"bob","text":"psst"}}`,
	}
	for _, f := range frames {
		client.processFrame([]byte(f))
	}

	req.Equal([]string{
		"join:lobby",
		"typing:on",
		"typing:off",
		"send:lobby:hi",
		"private:bob:psst",
	}, session.calls)
}
