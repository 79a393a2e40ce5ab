package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
	"github.com/mirrorlabs/interview-mirror/pkg/protocol"
	"github.com/mirrorlabs/interview-mirror/pkg/session"
)

func newTestServer(port string) *Server {
	return NewServer(port, session.NewManager(session.DefaultConfig()))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer("0")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Sessions != 0 {
		t.Errorf("unexpected health payload: %+v", health)
	}
}

func TestAnalyticsUnknownSession(t *testing.T) {
	s := newTestServer("0")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/sessions/nope/analytics", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("expected 404 for unknown session, got %d", resp.StatusCode)
	}
}

func TestEndUnknownSession(t *testing.T) {
	s := newTestServer("0")

	resp, err := s.App().Test(httptest.NewRequest("DELETE", "/api/sessions/nope", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestInterviewWebSocket(t *testing.T) {
	s := newTestServer("18190")
	go s.Start()
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18190/ws/interview", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	// First frame from the server announces the session.
	var started struct {
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
	}
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := ws.ReadJSON(&started); err != nil {
		t.Fatalf("read session_started: %v", err)
	}
	if started.Type != "session_started" || started.SessionID == "" {
		t.Fatalf("unexpected greeting: %+v", started)
	}

	// Stream one tracking frame and expect a metrics update back.
	pose := make([]landmark.Landmark, landmark.PosePoints)
	for i := range pose {
		pose[i] = landmark.Landmark{X: 0.5, Y: 0.5, Visibility: 1.0}
	}
	msg, err := protocol.NewTrackingMessage(protocol.TrackingData{
		Pose:      pose,
		Timestamp: 0.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := msg.Bytes()
	if err := ws.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write tracking: %v", err)
	}

	_, reply, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	update, err := protocol.ParseMessage(reply)
	if err != nil {
		t.Fatalf("parse metrics: %v", err)
	}
	if update.Type != protocol.TypeMetricsUpdate {
		t.Fatalf("expected metrics_update, got %v", update.Type)
	}

	var metrics session.FrameMetrics
	if err := update.ParseData(&metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.Posture.ShoulderStability != 1.0 {
		t.Errorf("unexpected stability on first frame: %v", metrics.Posture.ShoulderStability)
	}
}

func TestConversationReply(t *testing.T) {
	s := newTestServer("18191")
	s.OnConversation = func(sessionID, text string) string {
		return "What was the hardest part?"
	}
	go s.Start()
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18191/ws/interview", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil { // session_started
		t.Fatal(err)
	}

	msg, _ := protocol.NewConversationMessage("I shipped the billing rewrite")
	raw, _ := msg.Bytes()
	if err := ws.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatal(err)
	}

	_, reply, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := protocol.ParseMessage(reply)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Type != protocol.TypeAIResponse {
		t.Fatalf("expected ai_response, got %v", parsed.Type)
	}

	var resp protocol.AIResponseData
	if err := parsed.ParseData(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Text != "What was the hardest part?" {
		t.Errorf("reply mismatch: %q", resp.Text)
	}
}

func TestBadMessageGetsError(t *testing.T) {
	s := newTestServer("18192")
	go s.Start()
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18192/ws/interview", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil { // session_started
		t.Fatal(err)
	}

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}

	_, reply, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := protocol.ParseMessage(reply)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Type != protocol.TypeError {
		t.Errorf("expected error message, got %v", parsed.Type)
	}
}
