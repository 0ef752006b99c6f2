// Package server coordinates client registration, group membership and event
// fan-out for the websocket transport via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/samber/lo"
)

// Hub owns the live websocket clients and the delivery groups. It implements
// chat.Broadcaster: deliveries enqueue onto each client's buffered send
// channel without blocking, and a client whose buffer is full is evicted
// instead of slowing everyone else down.
type Hub struct {
	clients    map[chat.ConnectionID]*Client
	groups     map[string]map[chat.ConnectionID]struct{}
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        *slog.Logger
}

var _ chat.Broadcaster = (*Hub)(nil)

// NewHub creates a Hub ready to be started with Run.
func NewHub(log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[chat.ConnectionID]*Client),
		groups:     make(map[string]map[chat.ConnectionID]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log,
	}
}

// Register hands a freshly upgraded client to the hub. It returns false when
// the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run is the hub's event loop. Connects and disconnects are handled here, in
// order; room traffic flows through the Deliver methods from each client's
// read pump.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	h.log.Debug("Client registered", "connection_id", client.id, "addr", client.addr, "clients", clientCount)

	// The session learns about the connection before any of its frames are read.
	client.session.OnConnect(client.id, client.username)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mutex.Lock()
	if current, ok := h.clients[client.id]; ok && current == client {
		h.detachLocked(client)
		clientCount := len(h.clients)
		h.mutex.Unlock()
		close(client.send)
		h.log.Debug("Client unregistered", "connection_id", client.id, "addr", client.addr, "clients", clientCount)
	} else {
		h.mutex.Unlock()
	}

	// Evicted clients reach this point too, so the session always sees the disconnect.
	client.session.OnDisconnect(client.id)
}

// detachLocked removes client from the client map and every group.
// h.mutex must be held for writing.
func (h *Hub) detachLocked(client *Client) {
	delete(h.clients, client.id)
	client.closed = true
	for room, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, room)
		}
	}
}

func (h *Hub) DeliverToAll(evt chat.Event) {
	h.mutex.RLock()
	clients := lo.Values(h.clients)
	h.mutex.RUnlock()

	h.deliver(clients, evt)
}

func (h *Hub) DeliverToGroup(room string, evt chat.Event) {
	h.mutex.RLock()
	clients := lo.FilterMap(lo.Keys(h.groups[room]), func(id chat.ConnectionID, _ int) (*Client, bool) {
		client, ok := h.clients[id]
		return client, ok
	})
	h.mutex.RUnlock()

	h.deliver(clients, evt)
}

func (h *Hub) DeliverToConnection(id chat.ConnectionID, evt chat.Event) {
	h.mutex.RLock()
	client, ok := h.clients[id]
	h.mutex.RUnlock()

	if !ok {
		h.log.Debug("Delivery to vanished connection skipped", "connection_id", id, "event", evt.Name())
		return
	}
	h.deliver([]*Client{client}, evt)
}

func (h *Hub) AddToGroup(id chat.ConnectionID, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.groups[room]; !ok {
		h.groups[room] = make(map[chat.ConnectionID]struct{})
	}
	h.groups[room][id] = struct{}{}
}

func (h *Hub) RemoveFromGroup(id chat.ConnectionID, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

// GroupMembers returns the connections currently in the delivery group room.
func (h *Hub) GroupMembers(room string) []chat.ConnectionID {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return lo.Keys(h.groups[room])
}

// deliver encodes evt once and fans it out. Recipients that cannot take it
// right now are evicted; the rest are unaffected.
func (h *Hub) deliver(clients []*Client, evt chat.Event) {
	if len(clients) == 0 {
		return
	}

	payload, err := encodeEvent(evt)
	if err != nil {
		h.log.Error("Dropping undeliverable event", "event", evt.Name(), "error", err)
		return
	}

	failed := lo.Filter(clients, func(client *Client, _ int) bool {
		return !h.safeSend(client, payload)
	})
	h.removeFailedClients(failed)
}

func (h *Hub) safeSend(client *Client, message []byte) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Recovered from panic in safeSend", "connection_id", client.id, "panic", r)
			sent = false
		}
	}()

	// The read lock keeps the send channel from being closed underneath us.
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if current, exists := h.clients[client.id]; !exists || current != client || client.closed {
		return true
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// removeFailedClients evicts clients whose send buffer is full. Closing the
// send channel makes the write pump close the socket, which in turn ends the
// read pump and reports the disconnect.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if current, exists := h.clients[client.id]; exists && current == client {
			h.detachLocked(client)
			channelsToClose = append(channelsToClose, client.send)
			h.log.Warn("Client removed due to full send buffer", "connection_id", client.id, "addr", client.addr)
		}
	}
	h.mutex.Unlock()

	for _, ch := range channelsToClose {
		close(ch)
	}
}

// shutdownClients detaches every client and closes its queue and socket, so
// both pumps return.
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.Lock()
	clients := lo.Values(h.clients)
	for _, client := range clients {
		h.detachLocked(client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
			h.log.Warn("Error closing client connection", "connection_id", client.id, "addr", client.addr, "error", err)
		}
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown stops Run and waits for every client goroutine to finish, or
// until timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
