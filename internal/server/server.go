// Package server constructs the chat service: it wires the websocket hub to
// the chat core and exposes the HTTP surface.
package server

import (
	"log/slog"
	"net/http"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/identity"
	"github.com/gorilla/websocket"
)

// Authenticator resolves the display name behind an upgrade request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// Server bundles the hub, the chat coordinator and the HTTP handlers.
type Server struct {
	cfg         Config
	log         *slog.Logger
	hub         *Hub
	coordinator *chat.Coordinator
	auth        Authenticator
	upgrader    websocket.Upgrader
}

// New builds a Server from cfg. The hub is not running until Start is called.
func New(cfg Config, log *slog.Logger) *Server {
	cfg = sanitizeConfig(cfg)
	hub := NewHub(log)
	origins := newOriginPolicy(cfg.AllowedOrigins, log)

	return &Server{
		cfg: cfg,
		log: log,
		hub: hub,
		coordinator: chat.NewCoordinator(log, hub,
			chat.WithRoomMembershipEnforced(cfg.EnforceRoomMembership)),
		auth: identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
	}
}

// Start launches the hub event loop. Call it before serving HTTP.
func (s *Server) Start() {
	go s.hub.Run()
	s.log.Info("Hub started and ready to manage WebSocket connections")
}

func (s *Server) Hub() *Hub      { return s.hub }
func (s *Server) Config() Config { return s.cfg }
