package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/roomchat/internal/server"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires configuration, the chat server and the HTTP listener, and blocks
// until a signal or a listener failure.
func run() error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)
	log.Info("Starting room chat server...", "port", cfg.Port, "enforce_room_membership", cfg.EnforceRoomMembership)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(cfg, log)
	s.Start()

	httpServer := server.CreateServer(cfg.Port, s.SetupRoutes())

	errChan := make(chan error, 1)
	go func() {
		if err := server.StartServer(httpServer, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		_ = s.Hub().Shutdown(cfg.ShutdownTimeout)
		return err
	}

	httpErr := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, log)
	hubErr := s.Hub().Shutdown(cfg.ShutdownTimeout)
	if err := errors.Join(httpErr, hubErr); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Program stopped cleanly")
	return nil
}
