// Package posture analyzes body posture from pose landmarks: shoulder
// alignment, slouching against an adaptive baseline, arms-crossed state
// with temporal hysteresis, and rocking/stability.
package posture

import (
	"math"

	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// Config holds the tunable thresholds for posture analysis. The defaults
// are empirically tuned for seated interview posture; treat them as
// starting points, not physical constants.
type Config struct {
	ShoulderAngleThreshold float64 // Degrees of tilt before flagging a lean
	SlouchThreshold        float64 // Fraction of baseline treated as full-severity slouch
	RockThreshold          float64 // Shoulder-midpoint std dev mapping to rocking 1.0
	ChestRadius            float64 // Max wrist distance from shoulder center for arms-crossed
	HistorySize            int     // Frames of shoulder position kept for stability
	ArmsCrossedFrames      int     // Window length for arms-crossed hysteresis
	ArmsCrossedRatio       float64 // Fraction of window that must agree
	MinVisibility          float64 // Minimum landmark visibility to trust a point
}

// DefaultConfig returns the recommended posture thresholds.
func DefaultConfig() Config {
	return Config{
		ShoulderAngleThreshold: 15.0,
		SlouchThreshold:        0.15,
		RockThreshold:          0.02,
		ChestRadius:            0.25,
		HistorySize:            30,
		ArmsCrossedFrames:      10,
		ArmsCrossedRatio:       0.7,
		MinVisibility:          0.5,
	}
}

// Metrics is the per-frame posture analysis result.
type Metrics struct {
	ShoulderAngle     float64 `json:"shoulder_angle"` // Degrees from horizontal
	IsLeaning         bool    `json:"is_leaning"`
	IsSlouching       bool    `json:"is_slouching"`
	SlouchScore       float64 `json:"slouch_score"` // 0-1 severity
	ArmsCrossed       bool    `json:"arms_crossed"`
	RockingScore      float64 `json:"rocking_score"`      // 0-1, 0 = stable
	ShoulderStability float64 `json:"shoulder_stability"` // 1 - rocking
	Timestamp         float64 `json:"timestamp"`
}

// Summary is the session-wide posture report.
type Summary struct {
	FramesAnalyzed           int     `json:"frames_analyzed"`
	AverageShoulderStability float64 `json:"average_shoulder_stability"`
	ArmsCrossedPercentage    float64 `json:"arms_crossed_percentage"`
	ArmsCrossedFrames        int     `json:"arms_crossed_frames"`
	ShoulderMovementSamples  int     `json:"shoulder_movement_samples"`
	BaselineEstablished      bool    `json:"baseline_established"`
}

// Analyzer detects posture quality from pose landmarks. It owns bounded
// histories and a one-shot slouch baseline; one instance per session.
type Analyzer struct {
	cfg Config

	shoulderHistory    *ringBuffer
	armsCrossedHistory *boolRing

	// Nose-to-shoulder distance learned from the first observed frame,
	// never recomputed until Reset.
	baselineNoseShoulderDist float64
	baselineSet              bool
}

// NewAnalyzer creates a posture analyzer with the given config.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:                cfg,
		shoulderHistory:    newRingBuffer(cfg.HistorySize),
		armsCrossedHistory: newBoolRing(cfg.ArmsCrossedFrames),
	}
}

// neutral is the degraded result when pose is absent or too short.
func neutral(timestamp float64) Metrics {
	return Metrics{
		ShoulderStability: 1.0,
		Timestamp:         timestamp,
	}
}

// Analyze computes posture metrics for one frame. A missing pose or one
// with fewer than 25 points yields neutral metrics without touching any
// history or the baseline.
func (a *Analyzer) Analyze(pose []landmark.Landmark, timestamp float64) Metrics {
	if pose == nil || len(pose) < 25 {
		return neutral(timestamp)
	}

	nose := pose[landmark.PoseNose]
	leftShoulder := pose[landmark.PoseLeftShoulder]
	rightShoulder := pose[landmark.PoseRightShoulder]
	leftWrist := pose[landmark.PoseLeftWrist]
	rightWrist := pose[landmark.PoseRightWrist]
	leftHip := pose[landmark.PoseLeftHip]
	rightHip := pose[landmark.PoseRightHip]

	angle := shoulderAngle(leftShoulder, rightShoulder)
	isLeaning := math.Abs(angle) > a.cfg.ShoulderAngleThreshold

	isSlouching, slouchScore := a.detectSlouch(nose, leftShoulder, rightShoulder)
	armsCrossed := a.detectArmsCrossed(leftWrist, rightWrist, leftShoulder, rightShoulder, leftHip, rightHip)
	rocking, stability := a.detectRocking(leftShoulder, rightShoulder)

	return Metrics{
		ShoulderAngle:     angle,
		IsLeaning:         isLeaning,
		IsSlouching:       isSlouching,
		SlouchScore:       slouchScore,
		ArmsCrossed:       armsCrossed,
		RockingScore:      rocking,
		ShoulderStability: stability,
		Timestamp:         timestamp,
	}
}

// shoulderAngle returns the tilt of the shoulder line from horizontal in
// degrees, normalized into [-90, 90]. Angles near ±180 fold back toward
// zero since shoulders are roughly horizontal regardless of which side
// the detector calls left.
func shoulderAngle(left, right landmark.Landmark) float64 {
	dx := right.X - left.X
	dy := right.Y - left.Y
	deg := math.Atan2(dy, dx) * 180 / math.Pi

	if deg > 90 {
		deg = 180 - deg
	} else if deg < -90 {
		deg = -180 - deg
	}
	return deg
}

// detectSlouch compares the normalized nose-to-shoulder distance against
// the session baseline. The first valid observation becomes the baseline;
// slouching shows up as the nose moving toward the shoulder line, so a
// positive deviation from baseline scales into a 0-1 severity.
func (a *Analyzer) detectSlouch(nose, leftShoulder, rightShoulder landmark.Landmark) (bool, float64) {
	shoulderWidth := math.Abs(rightShoulder.X - leftShoulder.X)
	if shoulderWidth < 0.01 {
		return false, 0
	}

	shoulderAvgY := (leftShoulder.Y + rightShoulder.Y) / 2
	normalizedDist := (shoulderAvgY - nose.Y) / shoulderWidth

	if !a.baselineSet {
		a.baselineNoseShoulderDist = normalizedDist
		a.baselineSet = true
		log.Debug("slouch baseline established", "dist", normalizedDist)
		return false, 0
	}

	deviation := a.baselineNoseShoulderDist - normalizedDist
	if deviation <= 0 {
		// Sitting as upright as baseline or better.
		return false, 0
	}

	score := math.Min(1.0, deviation/a.cfg.SlouchThreshold)
	return score > 0.5, score
}

// detectArmsCrossed runs the geometric cross-over test and pushes the
// instantaneous result into the hysteresis window. The reported state is
// true only once the window is full and enough of it agrees.
func (a *Analyzer) detectArmsCrossed(leftWrist, rightWrist, leftShoulder, rightShoulder, leftHip, rightHip landmark.Landmark) bool {
	minVis := a.cfg.MinVisibility
	if leftWrist.Visibility < minVis || rightWrist.Visibility < minVis ||
		leftShoulder.Visibility < minVis || rightShoulder.Visibility < minVis {
		a.armsCrossedHistory.push(false)
		return false
	}

	shoulderCenter := landmark.Landmark{
		X: (leftShoulder.X + rightShoulder.X) / 2,
		Y: (leftShoulder.Y + rightShoulder.Y) / 2,
	}
	hipY := (leftHip.Y + rightHip.Y) / 2

	// Each wrist must sit closer to the opposite shoulder than its own.
	crossedOver := landmark.Dist(leftWrist, rightShoulder) < landmark.Dist(leftWrist, leftShoulder) &&
		landmark.Dist(rightWrist, leftShoulder) < landmark.Dist(rightWrist, rightShoulder)

	// Wrists near the chest, not extended outward, and above the hip line.
	wristsInward := landmark.Dist(leftWrist, shoulderCenter) < a.cfg.ChestRadius &&
		landmark.Dist(rightWrist, shoulderCenter) < a.cfg.ChestRadius
	wristsUp := leftWrist.Y < hipY && rightWrist.Y < hipY

	a.armsCrossedHistory.push(crossedOver && wristsInward && wristsUp)

	if a.armsCrossedHistory.len() < a.cfg.ArmsCrossedFrames {
		return false
	}
	needed := float64(a.cfg.ArmsCrossedFrames) * a.cfg.ArmsCrossedRatio
	return float64(a.armsCrossedHistory.trueCount()) >= needed
}

// detectRocking tracks the shoulder midpoint x position and maps its
// standard deviation to a rocking score. Fewer than 10 samples reports
// perfectly stable.
func (a *Analyzer) detectRocking(leftShoulder, rightShoulder landmark.Landmark) (rocking, stability float64) {
	midX := (leftShoulder.X + rightShoulder.X) / 2
	a.shoulderHistory.push(midX)

	if a.shoulderHistory.len() < 10 {
		return 0, 1
	}

	std := a.shoulderHistory.stdDev()
	rocking = math.Min(1.0, std/a.cfg.RockThreshold)
	stability = math.Max(0.0, 1.0-rocking)
	return rocking, stability
}

// Summary returns the session-wide posture report.
func (a *Analyzer) Summary() Summary {
	avgStability := 1.0
	if a.shoulderHistory.len() > 0 {
		rocking := math.Min(1.0, a.shoulderHistory.stdDev()/a.cfg.RockThreshold)
		avgStability = math.Max(0.0, 1.0-rocking)
	}

	crossed := a.armsCrossedHistory.trueCount()
	total := a.armsCrossedHistory.len()
	pct := 0.0
	if total > 0 {
		pct = float64(crossed) / float64(total) * 100
	}

	return Summary{
		FramesAnalyzed:           total,
		AverageShoulderStability: avgStability,
		ArmsCrossedPercentage:    pct,
		ArmsCrossedFrames:        crossed,
		ShoulderMovementSamples:  a.shoulderHistory.len(),
		BaselineEstablished:      a.baselineSet,
	}
}

// Reset clears histories and the slouch baseline.
func (a *Analyzer) Reset() {
	a.shoulderHistory = newRingBuffer(a.cfg.HistorySize)
	a.armsCrossedHistory = newBoolRing(a.cfg.ArmsCrossedFrames)
	a.baselineSet = false
	a.baselineNoseShoulderDist = 0
}
