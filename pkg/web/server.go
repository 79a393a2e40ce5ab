// Package web serves the interview-mirror API: a websocket endpoint the
// browser streams tracking frames and conversation turns into, a
// per-session observer feed for live metrics, and REST routes for
// analytics snapshots.
package web

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/hub"
	"github.com/mirrorlabs/interview-mirror/pkg/session"
)

// Responder produces the interviewer's reply to a candidate turn. The
// default echoes a canned acknowledgement; production wires an LLM here.
type Responder func(sessionID, text string) string

// Server is the interview API server
type Server struct {
	app  *fiber.App
	port string

	sessions *session.Manager

	// One metrics hub per live session
	hubs   map[string]*hub.Hub
	hubsMu sync.RWMutex

	// Interviewer reply callback
	OnConversation Responder
}

// NewServer creates the API server around a session manager.
func NewServer(port string, sessions *session.Manager) *Server {
	s := &Server{
		port:     port,
		sessions: sessions,
		hubs:     make(map[string]*hub.Hub),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Interview Mirror",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id/analytics", s.handleAnalytics)
	api.Get("/sessions/:id/summaries", s.handleSummaries)
	api.Delete("/sessions/:id", s.handleEndSession)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/interview", websocket.New(s.handleInterviewWS))
	app.Get("/ws/observe/:id", websocket.New(s.handleObserveWS))

	s.app = app
	return s
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("interview server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// sessionHub returns the metrics hub for a session, creating and
// starting it on first use.
func (s *Server) sessionHub(id string) *hub.Hub {
	s.hubsMu.Lock()
	defer s.hubsMu.Unlock()
	h, ok := s.hubs[id]
	if !ok {
		h = hub.New("metrics:" + id)
		go h.Run()
		s.hubs[id] = h
	}
	return h
}

// dropHub removes a session's hub and stops its run loop, disconnecting
// any remaining observers.
func (s *Server) dropHub(id string) {
	s.hubsMu.Lock()
	h := s.hubs[id]
	delete(s.hubs, id)
	s.hubsMu.Unlock()
	if h != nil {
		h.Close()
	}
}
