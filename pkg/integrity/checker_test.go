package integrity

import (
	"testing"

	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// faceGazing builds a face whose estimated gaze lands at (x, y).
func faceGazing(x, y float64) []landmark.Landmark {
	face := make([]landmark.Landmark, landmark.FacePoints)
	for i := range face {
		face[i] = landmark.Landmark{X: 0.5, Y: 0.5, Visibility: 1.0}
	}
	for _, idx := range []int{
		landmark.FaceLeftEyeInner, landmark.FaceLeftEyeOuter,
		landmark.FaceRightEyeInner, landmark.FaceRightEyeOuter,
		landmark.FaceLeftEyeLidTop, landmark.FaceLeftEyeLidBottom,
		landmark.FaceRightEyeLidTop, landmark.FaceRightEyeLidBottom,
	} {
		face[idx] = landmark.Landmark{X: x, Y: y, Visibility: 1.0}
	}
	return face
}

func TestGazeDefaultsToCenter(t *testing.T) {
	c := NewChecker(DefaultConfig())

	m := c.Analyze(nil, false, 0.0)
	if m.GazeX != 0.5 || m.GazeY != 0.5 {
		t.Errorf("missing face should default gaze to center, got (%v, %v)", m.GazeX, m.GazeY)
	}
	if m.IntegrityScore != 1.0 {
		t.Errorf("no speech onsets should score 1.0, got %v", m.IntegrityScore)
	}
}

func TestTruncatedFacePanics(t *testing.T) {
	c := NewChecker(DefaultConfig())

	defer func() {
		if recover() == nil {
			t.Error("truncated face set should panic, not mis-index")
		}
	}()
	c.Analyze(make([]landmark.Landmark, 50), false, 0.0)
}

func TestOffCenterClusterFlags(t *testing.T) {
	c := NewChecker(DefaultConfig())
	face := faceGazing(0.8, 0.8)

	// First two onsets build the cluster without flagging.
	m := c.Analyze(face, true, 1.0)
	if m.CheatFlagCount != 0 {
		t.Fatal("flagged on first onset")
	}
	m = c.Analyze(face, true, 2.0)
	if m.CheatFlagCount != 0 {
		t.Fatal("flagged on second onset")
	}

	// Third visit to the same off-center cluster flags.
	m = c.Analyze(face, true, 3.0)
	if m.CheatFlagCount != 1 {
		t.Fatalf("expected flag on third onset, got %d", m.CheatFlagCount)
	}
	if len(m.SuspiciousSegments) != 1 {
		t.Fatalf("expected one suspicious segment, got %d", len(m.SuspiciousSegments))
	}
	seg := m.SuspiciousSegments[0]
	if seg.Frequency != 3 || seg.ClusterID != 0 {
		t.Errorf("segment detail mismatch: %+v", seg)
	}
	if seg.DistanceFromCenter <= DefaultConfig().CenterDistance {
		t.Errorf("flagged cluster should be off-center: %v", seg.DistanceFromCenter)
	}
}

func TestCenterGazeNeverFlags(t *testing.T) {
	c := NewChecker(DefaultConfig())
	face := faceGazing(0.5, 0.5)

	var m Metrics
	for i := 0; i < 10; i++ {
		m = c.Analyze(face, true, float64(i))
	}
	if m.CheatFlagCount != 0 {
		t.Errorf("screen-center gaze flagged %d times", m.CheatFlagCount)
	}
	// All onsets land in one cluster, so concentration alone trims the
	// score, but a centered cluster still assesses clean.
	rep := c.Report()
	if rep.IntegrityAssessment != AssessmentClean {
		t.Errorf("expected clean assessment, got %v (score %v)", rep.IntegrityAssessment, rep.IntegrityScore)
	}
}

func TestWarningThreshold(t *testing.T) {
	c := NewChecker(DefaultConfig())
	face := faceGazing(0.9, 0.9)

	var m Metrics
	for i := 0; i < 7; i++ {
		m = c.Analyze(face, true, float64(i))
	}
	// Flags fire on onsets 3 through 7: five flags reach the warning.
	if m.CheatFlagCount != 5 {
		t.Fatalf("expected 5 flags after 7 onsets, got %d", m.CheatFlagCount)
	}
	if !m.IntegrityWarning {
		t.Error("expected integrity warning at 5 flags")
	}
}

func TestScoreClampedToZero(t *testing.T) {
	c := NewChecker(DefaultConfig())
	face := faceGazing(0.9, 0.9)

	var m Metrics
	for i := 0; i < 50; i++ {
		m = c.Analyze(face, true, float64(i))
	}
	if m.IntegrityScore < 0 || m.IntegrityScore > 1 {
		t.Errorf("score out of [0,1]: %v", m.IntegrityScore)
	}

	rep := c.Report()
	if rep.IntegrityAssessment != AssessmentHighlySuspicious {
		t.Errorf("expected highly_suspicious, got %v", rep.IntegrityAssessment)
	}
}

func TestClusterRunningAverage(t *testing.T) {
	c := NewChecker(DefaultConfig())

	c.Analyze(faceGazing(0.80, 0.80), true, 1.0)
	c.Analyze(faceGazing(0.82, 0.80), true, 2.0)

	rep := c.Report()
	if len(rep.GazeClusters) != 1 {
		t.Fatalf("nearby gazes should merge into one cluster, got %d", len(rep.GazeClusters))
	}
	cl := rep.GazeClusters[0]
	if cl.Visits != 2 {
		t.Errorf("expected 2 visits, got %d", cl.Visits)
	}
	if cl.CenterX <= 0.80 || cl.CenterX >= 0.82 {
		t.Errorf("running average center out of range: %v", cl.CenterX)
	}
}

func TestDistantGazesFormSeparateClusters(t *testing.T) {
	c := NewChecker(DefaultConfig())

	c.Analyze(faceGazing(0.2, 0.2), true, 1.0)
	c.Analyze(faceGazing(0.8, 0.8), true, 2.0)

	rep := c.Report()
	if len(rep.GazeClusters) != 2 {
		t.Errorf("expected 2 clusters, got %d", len(rep.GazeClusters))
	}
}

func TestClusterIDOnNonOnsetFrames(t *testing.T) {
	c := NewChecker(DefaultConfig())

	c.Analyze(faceGazing(0.8, 0.8), true, 1.0)

	// Same gaze without onset: matched to the cluster, nothing recorded.
	m := c.Analyze(faceGazing(0.8, 0.8), false, 2.0)
	if m.GazeClusterID != 0 {
		t.Errorf("expected cluster 0, got %d", m.GazeClusterID)
	}

	// Far-away gaze matches nothing.
	m = c.Analyze(faceGazing(0.2, 0.2), false, 3.0)
	if m.GazeClusterID != -1 {
		t.Errorf("expected no cluster (-1), got %d", m.GazeClusterID)
	}

	rep := c.Report()
	if rep.TotalSpeechOnsets != 1 {
		t.Errorf("non-onset frames must not count as onsets: %d", rep.TotalSpeechOnsets)
	}
}

func TestResetClearsClusters(t *testing.T) {
	c := NewChecker(DefaultConfig())
	for i := 0; i < 5; i++ {
		c.Analyze(faceGazing(0.9, 0.9), true, float64(i))
	}

	c.Reset()
	rep := c.Report()
	if rep.CheatFlagCount != 0 || len(rep.GazeClusters) != 0 || rep.TotalSpeechOnsets != 0 {
		t.Errorf("reset left state behind: %+v", rep)
	}
}
