package session

import (
	"testing"

	"github.com/mirrorlabs/interview-mirror/pkg/integrity"
	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
	"github.com/mirrorlabs/interview-mirror/pkg/vision"
)

// crossedArmsPose is a full pose with each wrist resting near the
// opposite shoulder.
func crossedArmsPose() []landmark.Landmark {
	pose := make([]landmark.Landmark, landmark.PosePoints)
	for i := range pose {
		pose[i] = landmark.Landmark{X: 0.5, Y: 0.5, Visibility: 1.0}
	}
	pose[landmark.PoseNose] = landmark.Landmark{X: 0.5, Y: 0.3, Visibility: 1.0}
	pose[landmark.PoseLeftShoulder] = landmark.Landmark{X: 0.65, Y: 0.5, Visibility: 1.0}
	pose[landmark.PoseRightShoulder] = landmark.Landmark{X: 0.35, Y: 0.5, Visibility: 1.0}
	pose[landmark.PoseLeftWrist] = landmark.Landmark{X: 0.4, Y: 0.55, Visibility: 1.0}
	pose[landmark.PoseRightWrist] = landmark.Landmark{X: 0.6, Y: 0.55, Visibility: 1.0}
	pose[landmark.PoseLeftHip] = landmark.Landmark{X: 0.6, Y: 0.8, Visibility: 1.0}
	pose[landmark.PoseRightHip] = landmark.Landmark{X: 0.4, Y: 0.8, Visibility: 1.0}
	return pose
}

func TestPipelineDetectsCrossedArms(t *testing.T) {
	s := New(DefaultConfig())

	// A steady crossed-arms pose through the smoother: hysteresis should
	// latch after the window fills, and shoulders should read stable.
	var m FrameMetrics
	for i := 0; i < 15; i++ {
		m = s.ProcessFrame(FrameInput{
			Frame: landmark.Frame{
				Pose:      crossedArmsPose(),
				Timestamp: float64(i) / 30,
			},
		})
	}

	if !m.Posture.ArmsCrossed {
		t.Error("pipeline did not detect crossed arms")
	}
	if m.Posture.ShoulderStability < 0.9 {
		t.Errorf("steady pose should be stable, got %v", m.Posture.ShoulderStability)
	}
	if m.Timestamp != 14.0/30 {
		t.Errorf("metrics timestamp mismatch: %v", m.Timestamp)
	}
}

func TestMissingModalitiesDegradeGracefully(t *testing.T) {
	s := New(DefaultConfig())

	m := s.ProcessFrame(FrameInput{
		Frame: landmark.Frame{Timestamp: 0.0},
	})

	if m.Posture.ShoulderStability != 1.0 {
		t.Errorf("empty frame should yield neutral posture: %+v", m.Posture)
	}
	if m.Stress.AverageEAR != 0.5 {
		t.Errorf("empty frame should yield neutral EAR: %v", m.Stress.AverageEAR)
	}
	if m.Integrity.IntegrityScore != 1.0 {
		t.Errorf("empty frame should keep integrity at 1.0: %v", m.Integrity.IntegrityScore)
	}
	if m.Vision.HeadGesture != "neutral" {
		t.Errorf("empty frame should yield neutral head gesture: %v", m.Vision.HeadGesture)
	}
}

func TestAnalyticsFromRecord(t *testing.T) {
	s := New(DefaultConfig())

	for i := 0; i < 30; i++ {
		s.ProcessFrame(FrameInput{
			Frame: landmark.Frame{
				Pose:      crossedArmsPose(),
				Timestamp: float64(i) / 30,
			},
		})
	}
	s.LogInteraction("I led the migration project last year", "Tell me more about that.")

	a := s.Analytics()
	if a.FramesProcessed != 30 {
		t.Errorf("expected 30 frames, got %d", a.FramesProcessed)
	}
	if a.DurationSeconds <= 0 {
		t.Errorf("duration not computed: %v", a.DurationSeconds)
	}
	if a.OverallScore < 0 || a.OverallScore > 100 {
		t.Errorf("overall score out of range: %v", a.OverallScore)
	}
	if a.WordsPerMinute <= 0 {
		t.Errorf("transcript words not counted: %v", a.WordsPerMinute)
	}
	if a.ArmsCrossedPercentage == 0 {
		t.Error("crossed-arms frames missing from aggregates")
	}
}

func TestIntegrityEventsMergeLowEyeContact(t *testing.T) {
	r := NewRecord()
	scores := []float64{0.8, 0.2, 0.1, 0.9, 0.3, 0.3}
	for i, score := range scores {
		r.LogFrame(float64(i), FrameMetrics{
			Vision: vision.Metrics{EyeContactScore: score},
		})
	}

	rep := integrity.Report{
		IntegrityScore:      1.0,
		IntegrityAssessment: integrity.AssessmentClean,
		SuspiciousSegments: []integrity.SuspiciousSegment{
			{Timestamp: 2.5, ClusterID: 0, Frequency: 3, DistanceFromCenter: 0.3},
		},
	}

	a := r.Analytics(rep, 0.4)
	if len(a.IntegrityEvents) != 3 {
		t.Fatalf("expected 3 timeline events, got %d: %+v", len(a.IntegrityEvents), a.IntegrityEvents)
	}

	first := a.IntegrityEvents[0]
	if first.Type != EventLowEyeContact || first.Start != 1 || first.End != 2 || first.ClusterID != -1 {
		t.Errorf("first span wrong: %+v", first)
	}
	gaze := a.IntegrityEvents[1]
	if gaze.Type != EventSuspiciousGaze || gaze.Start != 2.5 || gaze.End != 2.5 || gaze.Frequency != 3 {
		t.Errorf("gaze firing wrong: %+v", gaze)
	}
	tail := a.IntegrityEvents[2]
	if tail.Type != EventLowEyeContact || tail.Start != 4 || tail.End != 5 {
		t.Errorf("trailing span wrong: %+v", tail)
	}
}

func TestEmptySessionAnalytics(t *testing.T) {
	s := New(DefaultConfig())

	a := s.Analytics()
	if a.FramesProcessed != 0 || a.OverallScore != 0 {
		t.Errorf("empty session should score zero: %+v", a)
	}
	if len(a.Weaknesses) == 0 {
		t.Error("empty session should explain itself in weaknesses")
	}
}

func TestSessionIsolation(t *testing.T) {
	m := NewManager(DefaultConfig())
	s1 := m.Start()
	s2 := m.Start()

	if s1.ID == s2.ID {
		t.Fatal("sessions must have unique IDs")
	}

	// Slouch baseline from one session must not leak into the other.
	for i := 0; i < 15; i++ {
		s1.ProcessFrame(FrameInput{Frame: landmark.Frame{
			Pose:      crossedArmsPose(),
			Timestamp: float64(i) / 30,
		}})
	}

	if got := s2.Summaries().Posture.FramesAnalyzed; got != 0 {
		t.Errorf("session state leaked: %d frames in untouched session", got)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(DefaultConfig())

	s := m.Start()
	if m.Count() != 1 {
		t.Fatalf("expected 1 live session, got %d", m.Count())
	}
	if m.Get(s.ID) != s {
		t.Error("Get returned wrong session")
	}
	if m.Get("nope") != nil {
		t.Error("Get of unknown ID should be nil")
	}

	report := m.End(s.ID)
	if report == nil {
		t.Fatal("End should return the final analytics")
	}
	if m.Count() != 0 {
		t.Errorf("session not removed: %d", m.Count())
	}
	if m.End(s.ID) != nil {
		t.Error("double End should return nil")
	}
}

func TestSessionReset(t *testing.T) {
	s := New(DefaultConfig())
	for i := 0; i < 10; i++ {
		s.ProcessFrame(FrameInput{Frame: landmark.Frame{
			Pose:      crossedArmsPose(),
			Timestamp: float64(i) / 30,
		}})
	}

	s.Reset()
	a := s.Analytics()
	if a.FramesProcessed != 0 {
		t.Errorf("reset left %d frames in the record", a.FramesProcessed)
	}
}
