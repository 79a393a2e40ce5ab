package web

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/hub"
	"github.com/mirrorlabs/interview-mirror/pkg/protocol"
	"github.com/mirrorlabs/interview-mirror/pkg/session"
)

// handleHealth reports service liveness and the live session count
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// handleListSessions returns the live session count
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"active": s.sessions.Count(),
	})
}

// handleAnalytics returns the current report card for a live session
func (s *Server) handleAnalytics(c *fiber.Ctx) error {
	sess := s.sessions.Get(c.Params("id"))
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	return c.JSON(sess.Analytics())
}

// handleSummaries returns every analyzer's session-wide report
func (s *Server) handleSummaries(c *fiber.Ctx) error {
	sess := s.sessions.Get(c.Params("id"))
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	return c.JSON(sess.Summaries())
}

// handleEndSession ends a session and returns its final analytics
func (s *Server) handleEndSession(c *fiber.Ctx) error {
	id := c.Params("id")
	report := s.sessions.End(id)
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	s.dropHub(id)
	return c.JSON(report)
}

// handleInterviewWS runs one candidate connection: a session starts when
// the socket opens and ends when it closes. Frames are processed inline
// on the read loop, so per-session analyzer state needs no locking.
func (s *Server) handleInterviewWS(c *websocket.Conn) {
	sess := s.sessions.Start()
	metricsHub := s.sessionHub(sess.ID)

	defer func() {
		s.sessions.End(sess.ID)
		s.dropHub(sess.ID)
		c.Close()
	}()

	// Tell the browser its session ID first
	c.WriteJSON(fiber.Map{"type": "session_started", "session_id": sess.ID})

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(raw)
		if err != nil {
			s.writeError(c, "bad_message", err.Error())
			continue
		}

		switch msg.Type {
		case protocol.TypeTracking:
			s.handleTracking(c, sess, metricsHub, msg)

		case protocol.TypeConversation:
			s.handleConversation(c, sess, msg)

		case protocol.TypeControl:
			if done := s.handleControl(c, sess, msg); done {
				return
			}

		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			now := time.Now().UnixMilli()
			if pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, now); err == nil {
				s.writeMessage(c, pong)
			}

		default:
			s.writeError(c, "unknown_type", string(msg.Type))
		}
	}
}

func (s *Server) handleTracking(c *websocket.Conn, sess *session.Session, metricsHub *hub.Hub, msg *protocol.Message) {
	tracking, err := msg.GetTrackingData()
	if err != nil {
		s.writeError(c, "bad_tracking", err.Error())
		return
	}

	metrics := sess.ProcessFrame(session.FrameInput{
		Frame:       tracking.Frame(),
		IsSpeaking:  tracking.IsSpeaking,
		SpeechOnset: tracking.SpeechOnset,
	})

	update, err := protocol.NewMetricsUpdateMessage(metrics)
	if err != nil {
		log.Error("encode metrics update", "error", err)
		return
	}
	s.writeMessage(c, update)

	if data, err := update.Bytes(); err == nil {
		metricsHub.Broadcast(data)
	}
}

func (s *Server) handleConversation(c *websocket.Conn, sess *session.Session, msg *protocol.Message) {
	turn, err := msg.GetConversationData()
	if err != nil {
		s.writeError(c, "bad_conversation", err.Error())
		return
	}

	reply := "Thanks, let's keep going."
	if s.OnConversation != nil {
		reply = s.OnConversation(sess.ID, turn.Text)
	}
	sess.LogInteraction(turn.Text, reply)

	if resp, err := protocol.NewAIResponseMessage(reply); err == nil {
		s.writeMessage(c, resp)
	}
}

// handleControl handles session-control actions. Returns true when the
// connection should close.
func (s *Server) handleControl(c *websocket.Conn, sess *session.Session, msg *protocol.Message) bool {
	ctl, err := msg.GetControlData()
	if err != nil {
		s.writeError(c, "bad_control", err.Error())
		return false
	}

	switch ctl.Action {
	case "analytics":
		if m, err := protocol.NewAnalyticsMessage(sess.Analytics()); err == nil {
			s.writeMessage(c, m)
		}
	case "reset":
		sess.Reset()
	case "end":
		if m, err := protocol.NewAnalyticsMessage(sess.Analytics()); err == nil {
			s.writeMessage(c, m)
		}
		return true
	default:
		s.writeError(c, "unknown_action", ctl.Action)
	}
	return false
}

// handleObserveWS attaches an observer to a session's live metrics feed.
func (s *Server) handleObserveWS(c *websocket.Conn) {
	id := c.Params("id")
	if s.sessions.Get(id) == nil {
		c.WriteJSON(fiber.Map{"type": "error", "error": "session not found"})
		c.Close()
		return
	}

	client := hub.NewClient(s.sessionHub(id), c)
	client.Run() // Blocks until the connection closes
}

func (s *Server) writeMessage(c *websocket.Conn, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Debug("websocket write failed", "error", err)
	}
}

func (s *Server) writeError(c *websocket.Conn, code, detail string) {
	if msg, err := protocol.NewErrorMessage(code, detail); err == nil {
		s.writeMessage(c, msg)
	}
}
