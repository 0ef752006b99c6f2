// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, the room listing, and the built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/google/uuid"
)

// WebSocketHandler authenticates the request, upgrades it, assigns the
// connection its id and hands it to the hub, which starts the pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	username, err := s.auth.Authenticate(r)
	if err != nil {
		s.log.Warn("Rejected unauthenticated WebSocket request", "addr", r.RemoteAddr, "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	id := chat.ConnectionID(uuid.NewString())
	client := NewClient(id, username, conn, s.hub, s.coordinator, r.RemoteAddr, s.cfg, s.log)

	if !s.hub.Register(client) {
		s.log.Warn("Hub is shutting down; closing new connection", "connection_id", id)
		_ = conn.Close()
	}
}

// HealthHandler responds with a plain text liveness message.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Room chat server is running!")
}

// RoomsHandler lists the rooms that currently have members.
func (s *Server) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.coordinator.Membership().Rooms()); err != nil {
		s.log.Warn("Error writing rooms response", "error", err)
	}
}

// TestPageHandler serves an HTML page that speaks the websocket protocol,
// for trying the server from a browser.
func (s *Server) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		s.log.Warn("Error writing HTML response", "error", err)
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Room chat test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
        #users { float: right; width: 180px; border: 1px solid #ccc; padding: 10px; }
        input[type="text"] { width: 220px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        .notification { color: gray; font-style: italic; }
        .private { color: purple; }
        #typing { color: gray; height: 1em; }
    </style>
</head>
<body>
    <h1>Room chat test</h1>
    <div>
        <input type="text" id="token" placeholder="Identity token">
        <button onclick="connect()">Connect</button>
    </div>
    <div>
        <input type="text" id="room" placeholder="Room" value="lobby">
        <button onclick="joinRoom()">Join</button>
    </div>
    <ul id="users"></ul>
    <div id="messages"></div>
    <div id="typing"></div>
    <div>
        <input type="text" id="messageInput" placeholder="Type a message...">
        <button onclick="sendMessage()">Send</button>
    </div>
    <div>
        <input type="text" id="to" placeholder="Private to">
        <input type="text" id="privateInput" placeholder="Private message">
        <button onclick="sendPrivate()">Whisper</button>
    </div>
    <script>
        let ws = null;
        let stopTimer = null;
        const typing = new Set();
        const $ = (id) => document.getElementById(id);

        function add(text, cls) {
            const el = document.createElement('div');
            el.textContent = text;
            if (cls) el.className = cls;
            $('messages').appendChild(el);
            $('messages').scrollTop = $('messages').scrollHeight;
        }

        function send(type, data) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: type, data: data}));
            }
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws?token=' + encodeURIComponent($('token').value));
            ws.onopen = () => add('Connected', 'notification');
            ws.onclose = () => add('Connection closed', 'notification');
            ws.onmessage = (event) => {
                const frame = JSON.parse(event.data);
                const d = frame.data;
                switch (frame.type) {
                case 'message': add(d.sender + ': ' + d.text); break;
                case 'notification': add(d.text, 'notification'); break;
                case 'privateMessage': add((d.isEcho ? 'to ' + $('to').value : 'from ' + d.sender) + ': ' + d.text, 'private'); break;
                case 'userList':
                    $('users').innerHTML = '';
                    d.users.forEach((u) => { const li = document.createElement('li'); li.textContent = u; $('users').appendChild(li); });
                    break;
                case 'typingNotification':
                    if (d.isTyping) typing.add(d.username); else typing.delete(d.username);
                    $('typing').textContent = typing.size ? Array.from(typing).join(', ') + ' typing...' : '';
                    break;
                }
            };
        }

        function joinRoom() { send('joinRoom', {room: $('room').value}); }

        function sendMessage() {
            const text = $('messageInput').value.trim();
            if (!text) return;
            send('sendMessage', {text: text, room: $('room').value});
            send('typing', {room: $('room').value, isTyping: false});
            $('messageInput').value = '';
        }

        function sendPrivate() {
            const text = $('privateInput').value.trim();
            if (!text) return;
            send('privateMessage', {to: $('to').value, text: text});
            $('privateInput').value = '';
        }

        $('messageInput').addEventListener('input', () => {
            if (!stopTimer) send('typing', {room: $('room').value, isTyping: true});
            clearTimeout(stopTimer);
            stopTimer = setTimeout(() => {
                send('typing', {room: $('room').value, isTyping: false});
                stopTimer = null;
            }, 1500);
        });
        $('messageInput').addEventListener('keypress', (e) => { if (e.key === 'Enter') sendMessage(); });
    </script>
</body>
</html>`
