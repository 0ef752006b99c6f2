package chat_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/chat/chattest"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const (
	alice chat.ConnectionID = "conn-alice"
	bob   chat.ConnectionID = "conn-bob"
	carol chat.ConnectionID = "conn-carol"
)

func newCoordinator(opts ...chat.Option) (*chat.Coordinator, *chattest.Recorder) {
	recorder := chattest.NewRecorder()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return chat.NewCoordinator(log, recorder, opts...), recorder
}

func notifications(events []chat.Event) []string {
	var texts []string
	for _, evt := range events {
		if n, ok := evt.(chat.NotificationEvent); ok {
			texts = append(texts, n.Text)
		}
	}
	return texts
}

func lastUserList(t *testing.T, events []chat.Event) []string {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if list, ok := events[i].(chat.UserListEvent); ok {
			return list.Users
		}
	}
	t.Fatal("no user list delivered")
	return nil
}

func TestCoordinator_OnConnect_Broadcasts_Presence(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()

	// When two users connect
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")

	// Then each connect pushed the presence list to everyone
	all := recorder.ToAll()
	req.Len(all, 2)
	req.ElementsMatch([]string{"alice", "bob"}, lastUserList(t, all))

	// And no room notice was sent
	req.Empty(notifications(recorder.ReceivedBy(alice)))
}

func TestCoordinator_OnConnect_Empty_Username_Uses_Sentinel(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()

	coordinator.OnConnect(alice, "")

	req.Equal([]string{chat.UnknownUser}, lastUserList(t, recorder.ToAll()))
}

func TestCoordinator_Registry_Tracks_Live_Connections(t *testing.T) {
	req := require.New(t)
	coordinator, _ := newCoordinator()

	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.OnDisconnect(alice)
	coordinator.OnConnect(carol, "carol")

	_, ok := coordinator.Registry().Username(alice)
	req.False(ok)
	req.ElementsMatch([]string{"bob", "carol"}, coordinator.Registry().SnapshotUsernames())
}

func TestCoordinator_JoinRoom_Sequence(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()

	// Given alice and bob are in lobby and carol in games
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.OnConnect(carol, "carol")
	coordinator.JoinRoom(alice, "lobby")
	coordinator.JoinRoom(bob, "lobby")
	coordinator.JoinRoom(carol, "games")
	recorder.Reset()

	// When alice moves to games
	coordinator.JoinRoom(alice, "games")

	// Then lobby gets exactly one leave notice and games exactly one join notice
	req.Equal([]string{"alice left the room."}, notifications(recorder.ToGroup("lobby")))
	req.Equal([]string{"alice joined the room 'games'."}, notifications(recorder.ToGroup("games")))

	// And bob saw the leave while carol saw the join
	req.Equal([]string{"alice left the room."}, notifications(recorder.ReceivedBy(bob)))
	req.Equal([]string{"alice joined the room 'games'."}, notifications(recorder.ReceivedBy(carol)))

	// And the group and membership moved together
	req.ElementsMatch([]chat.ConnectionID{bob}, recorder.GroupMembers("lobby"))
	req.ElementsMatch([]chat.ConnectionID{alice, carol}, recorder.GroupMembers("games"))
	room, ok := coordinator.Membership().CurrentRoom(alice)
	req.True(ok)
	req.Equal("games", room)

	// And presence was rebroadcast
	req.Len(recorder.ToAll(), 1)
}

func TestCoordinator_JoinRoom_Same_Room_Twice_No_Duplicate_Notices(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()
	coordinator.OnConnect(alice, "alice")

	coordinator.JoinRoom(alice, "lobby")
	coordinator.JoinRoom(alice, "lobby")

	req.Equal([]string{"alice joined the room 'lobby'."}, notifications(recorder.ToGroup("lobby")))
	req.ElementsMatch([]chat.ConnectionID{alice}, recorder.GroupMembers("lobby"))
}

func TestCoordinator_JoinRoom_Empty_Room_Is_Noop(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()
	coordinator.OnConnect(alice, "alice")
	recorder.Reset()

	coordinator.JoinRoom(alice, "")

	req.Empty(recorder.Deliveries())
	_, ok := coordinator.Membership().CurrentRoom(alice)
	req.False(ok)
}

func TestCoordinator_SendMessage_Not_Enforced_By_Default(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.JoinRoom(bob, "lobby")
	recorder.Reset()

	// When alice posts to a room she never joined
	coordinator.SendMessage(alice, "hello", "lobby")

	// Then the message still reaches the room
	req.Equal([]chat.Event{chat.MessageEvent{Sender: "alice", Text: "hello"}}, recorder.ReceivedBy(bob))
}

func TestCoordinator_SendMessage_Enforced(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator(chat.WithRoomMembershipEnforced(true))
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.JoinRoom(bob, "lobby")
	recorder.Reset()

	// When alice posts to a room she is not in
	coordinator.SendMessage(alice, "hello", "lobby")
	// Then nothing is delivered
	req.Empty(recorder.Deliveries())

	// When she joins and posts again
	coordinator.JoinRoom(alice, "lobby")
	recorder.Reset()
	coordinator.SendMessage(alice, "hello", "lobby")

	// Then the message is delivered
	req.Equal([]chat.Event{chat.MessageEvent{Sender: "alice", Text: "hello"}}, recorder.ToGroup("lobby"))
}

func TestCoordinator_SendMessage_Empty_Room_Is_Noop(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()
	coordinator.OnConnect(alice, "alice")
	recorder.Reset()

	coordinator.SendMessage(alice, "hello", "")

	req.Empty(recorder.Deliveries())
}

func TestCoordinator_OnDisconnect_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()

	// When a connection that never connected disconnects
	req.NotPanics(func() { coordinator.OnDisconnect(carol) })

	// Then only presence is rebroadcast
	deliveries := recorder.Deliveries()
	req.Len(deliveries, 1)
	req.Equal(chattest.TargetAll, deliveries[0].Target)
}

func TestCoordinator_Lobby_Scenario(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()

	// Given alice and bob are connected and both in lobby
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.JoinRoom(alice, "lobby")
	coordinator.JoinRoom(bob, "lobby")
	recorder.Reset()

	// When alice says hi
	coordinator.SendMessage(alice, "hi", "lobby")

	// Then bob receives it
	req.Equal([]chat.Event{chat.MessageEvent{Sender: "alice", Text: "hi"}}, recorder.ReceivedBy(bob))
	recorder.Reset()

	// When alice disconnects
	coordinator.OnDisconnect(alice)

	// Then bob is told alice left and gets a user list with only himself
	received := recorder.ReceivedBy(bob)
	req.Equal([]string{"alice left the chat."}, notifications(received))
	req.Equal([]string{"bob"}, lastUserList(t, received))
	req.ElementsMatch([]chat.ConnectionID{bob}, recorder.GroupMembers("lobby"))
	_, ok := coordinator.Membership().CurrentRoom(alice)
	req.False(ok)
}

func TestCoordinator_Private_Scenario(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.OnConnect(carol, "carol")
	recorder.Reset()

	// When alice whispers to bob
	coordinator.SendPrivateMessage(alice, "bob", "secret")

	// Then bob gets it, alice gets the echo and carol gets nothing
	req.Equal([]chat.Event{chat.PrivateMessageEvent{Sender: "alice", Text: "secret"}}, recorder.ReceivedBy(bob))
	req.Equal([]chat.Event{chat.PrivateMessageEvent{Sender: "alice", Text: "secret", IsEcho: true}}, recorder.ReceivedBy(alice))
	req.Empty(recorder.ReceivedBy(carol))
}

func TestCoordinator_Typing_Follows_Current_Room(t *testing.T) {
	req := require.New(t)
	coordinator, recorder := newCoordinator()
	coordinator.OnConnect(alice, "alice")
	coordinator.OnConnect(bob, "bob")
	coordinator.JoinRoom(bob, "lobby")
	recorder.Reset()

	// Given alice is in no room, her typing goes nowhere
	coordinator.NotifyTyping(alice, true)
	req.Empty(recorder.Deliveries())

	// When she joins lobby and types then stops
	coordinator.JoinRoom(alice, "lobby")
	recorder.Reset()
	coordinator.NotifyTyping(alice, true)
	coordinator.NotifyTyping(alice, false)

	// Then bob sees both signals in order
	req.Equal([]chat.Event{
		chat.TypingEvent{Username: "alice", IsTyping: true},
		chat.TypingEvent{Username: "alice", IsTyping: false},
	}, recorder.ReceivedBy(bob))
}

func TestCoordinator_JoinRoom_Logs_Previous_Room_Only_On_Switch(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	coordinator := chat.NewCoordinator(log, chattest.NewRecorder())
	coordinator.OnConnect(alice, "alice")

	joined := func() map[string]any {
		for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
			var record map[string]any
			req.NoError(json.Unmarshal(line, &record))
			if record["msg"] == "Room joined" {
				return record
			}
		}
		req.Fail("no join logged")
		return nil
	}

	// Given a first join
	coordinator.JoinRoom(alice, "lobby")

	// Then no previous room is logged
	req.NotContains(joined(), "previous")

	// When alice switches rooms
	buf.Reset()
	coordinator.JoinRoom(alice, "games")

	// Then the vacated room is logged
	req.Equal("lobby", joined()["previous"])
}
