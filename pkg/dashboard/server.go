// Package dashboard provides a small real-time view into a running motion
// loop: REST endpoints for the current state and a websocket stream of
// telemetry events.
package dashboard

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/marcusholm/go-armctl/internal/log"
	"github.com/marcusholm/go-armctl/pkg/hub"
	"github.com/marcusholm/go-armctl/pkg/motion"
	"github.com/marcusholm/go-armctl/pkg/telemetry"
)

// maxEvents is how many discrete events are retained for /api/events.
const maxEvents = 200

// Status summarizes the running harness for /api/status.
type Status struct {
	Session        string `json:"session"`
	Serial         string `json:"serial"`
	FrequencyHz    int    `json:"frequency_hz"`
	Hold           bool   `json:"hold"`
	CollisionCheck bool   `json:"collision_check"`
	Ticks          uint64 `json:"ticks"`
	Collision      bool   `json:"collision"`
}

// Server is the dashboard HTTP/websocket server.
type Server struct {
	app  *fiber.App
	addr string

	mu     sync.RWMutex
	status Status
	last   motion.Snapshot
	events []telemetry.Event

	stateHub *hub.Hub
}

// NewServer creates a dashboard bound to addr (e.g. ":8080").
func NewServer(addr string, status Status) *Server {
	s := &Server{
		addr:     addr,
		status:   status,
		events:   make([]telemetry.Event, 0, maxEvents),
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "armctl dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local tooling
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/state", s.handleState)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start runs the hub and serves until the listener fails or Shutdown is
// called. ctx stops the hub.
func (s *Server) Start(ctx context.Context) error {
	log.Info("dashboard listening", "addr", s.addr)
	go s.stateHub.Run(ctx)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Error("dashboard server error", "err", err)
		}
	}()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishSnapshot records a per-tick snapshot and streams it.
// Wire this to motion.Loop's OnTick.
func (s *Server) PublishSnapshot(snap motion.Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.status.Ticks = snap.Tick + 1
	if snap.Collision {
		s.status.Collision = true
	}
	s.mu.Unlock()

	s.broadcast(telemetry.TypeState, snap)
	if snap.Collision {
		s.publishEvent(telemetry.TypeCollision, telemetry.CollisionData{
			ForceNorm: snap.Wrench.ForceNorm(),
		})
	}
}

// PublishAction records a fired schedule action.
// Wire this to motion.Loop's OnAction.
func (s *Server) PublishAction(name string) {
	s.publishEvent(telemetry.TypeAction, telemetry.ActionData{Name: name})
}

// PublishFault records an observed robot fault.
func (s *Server) PublishFault() {
	s.publishEvent(telemetry.TypeFault, nil)
}

// broadcast streams an event without retaining it.
func (s *Server) broadcast(eventType telemetry.EventType, data any) {
	ev, err := telemetry.NewEvent(eventType, data)
	if err != nil {
		log.Error("encode telemetry event", "type", eventType, "err", err)
		return
	}
	msg, err := ev.Bytes()
	if err != nil {
		log.Error("encode telemetry event", "type", eventType, "err", err)
		return
	}
	s.stateHub.Broadcast(msg)
}

// publishEvent retains a discrete event for /api/events and streams it.
func (s *Server) publishEvent(eventType telemetry.EventType, data any) {
	ev, err := telemetry.NewEvent(eventType, data)
	if err != nil {
		log.Error("encode telemetry event", "type", eventType, "err", err)
		return
	}

	s.mu.Lock()
	s.events = append(s.events, *ev)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.mu.Unlock()

	if msg, err := ev.Bytes(); err == nil {
		s.stateHub.Broadcast(msg)
	}
}
