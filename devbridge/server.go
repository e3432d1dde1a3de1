// Package devbridge is a development-only command relay used to
// simulate incoming calls: a CLI sets a single command value, the app
// polls it over local loopback HTTP and clears it after consuming it.
package devbridge

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultPort matches the app's dev-server expectations.
const DefaultPort = 3001

// Command is a call-simulation instruction.
type Command string

const (
	CommandCall   Command = "call"
	CommandHangup Command = "hangup"
)

// Server holds at most one pending command and serves it to the
// polling app.
type Server struct {
	port int
	log  *zap.Logger

	mu      sync.Mutex
	command Command
}

// NewServer creates a bridge server. A port of zero or less uses
// DefaultPort.
func NewServer(port int, log *zap.Logger) *Server {
	if port <= 0 {
		port = DefaultPort
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{port: port, log: log}
}

// Set stages a command for the next poll, replacing any pending one.
func (s *Server) Set(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.command = cmd
}

// Current returns the pending command, or empty if none.
func (s *Server) Current() Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.command
}

// Clear drops the pending command.
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.command = ""
}

// Handler returns the HTTP handler serving the bridge endpoints.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/command", func(c *gin.Context) {
		var cmd any
		if cur := s.Current(); cur != "" {
			cmd = string(cur)
		}
		c.JSON(http.StatusOK, gin.H{"command": cmd})
	})

	router.POST("/clear", func(c *gin.Context) {
		s.Clear()
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	return router
}

// Start runs the bridge server on local loopback. It blocks until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.log.Info("call bridge listening", zap.Int("port", s.port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("call bridge: %w", err)
	}
	return nil
}
