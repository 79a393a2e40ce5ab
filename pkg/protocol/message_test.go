package protocol

import (
	"testing"

	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

func TestTrackingRoundTrip(t *testing.T) {
	msg, err := NewTrackingMessage(TrackingData{
		Pose:        []landmark.Landmark{{X: 0.5, Y: 0.3, Visibility: 0.9}},
		Timestamp:   1.25,
		FrameNumber: 7,
		IsSpeaking:  true,
		SpeechOnset: true,
	})
	if err != nil {
		t.Fatalf("NewTrackingMessage: %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if parsed.Type != TypeTracking {
		t.Fatalf("type lost in transit: %v", parsed.Type)
	}
	if parsed.Timestamp == 0 {
		t.Error("envelope timestamp not set")
	}

	tracking, err := parsed.GetTrackingData()
	if err != nil {
		t.Fatalf("GetTrackingData: %v", err)
	}
	if tracking.Timestamp != 1.25 || !tracking.SpeechOnset {
		t.Errorf("payload mismatch: %+v", tracking)
	}

	frame := tracking.Frame()
	if len(frame.Pose) != 1 || frame.Pose[0].X != 0.5 {
		t.Errorf("frame conversion lost landmarks: %+v", frame)
	}
	if frame.FrameNumber != 7 {
		t.Errorf("frame number lost: %d", frame.FrameNumber)
	}
}

func TestAbsentModalitiesOmitted(t *testing.T) {
	msg, err := NewTrackingMessage(TrackingData{Timestamp: 1.0})
	if err != nil {
		t.Fatal(err)
	}

	tracking, err := msg.GetTrackingData()
	if err != nil {
		t.Fatal(err)
	}
	frame := tracking.Frame()
	if frame.Pose != nil || frame.Face != nil {
		t.Errorf("absent modalities should stay nil: %+v", frame)
	}
}

func TestParseMessageRejectsGarbage(t *testing.T) {
	if _, err := ParseMessage([]byte("not json")); err == nil {
		t.Error("expected error for malformed message")
	}
}

func TestErrorMessage(t *testing.T) {
	msg, err := NewErrorMessage("bad_tracking", "missing timestamp")
	if err != nil {
		t.Fatal(err)
	}

	data, err := msg.GetErrorData()
	if err != nil {
		t.Fatal(err)
	}
	if data.Code != "bad_tracking" || data.Message != "missing timestamp" {
		t.Errorf("error payload mismatch: %+v", data)
	}
}

func TestPongLatency(t *testing.T) {
	msg, err := NewPongMessage("abc", 1000, 1042)
	if err != nil {
		t.Fatal(err)
	}

	pong, err := msg.GetPongData()
	if err != nil {
		t.Fatal(err)
	}
	if pong.LatencyMs != 42 {
		t.Errorf("latency mismatch: %d", pong.LatencyMs)
	}
	if pong.ID != "abc" {
		t.Errorf("id mismatch: %q", pong.ID)
	}
}

func TestConversationMessage(t *testing.T) {
	msg, err := NewConversationMessage("I enjoy systems work")
	if err != nil {
		t.Fatal(err)
	}

	turn, err := msg.GetConversationData()
	if err != nil {
		t.Fatal(err)
	}
	if turn.Text != "I enjoy systems work" {
		t.Errorf("text mismatch: %q", turn.Text)
	}
}
