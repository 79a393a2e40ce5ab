// Package gesture analyzes hand activity from hand landmarks:
// face-touching, expressive elevated-hand movement, and an overall
// activity classification.
package gesture

import (
	"math"

	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// ActivityLevel classifies overall hand activity.
type ActivityLevel string

const (
	ActivityPassive  ActivityLevel = "passive"
	ActivityModerate ActivityLevel = "moderate"
	ActivityDynamic  ActivityLevel = "dynamic"
)

// Config holds the tunable thresholds for gesture analysis.
type Config struct {
	FaceTouchThreshold float64 // Index-tip to nose distance counting as a touch
	HeightThreshold    float64 // Elevation above shoulder line counting as raised
	VelocityThreshold  float64 // Summed displacement counting as an active gesture
	HistorySize        int     // Per-hand position samples kept for velocity
	MinVisibility      float64 // Minimum landmark visibility to trust a point
}

// DefaultConfig returns the recommended gesture thresholds.
func DefaultConfig() Config {
	return Config{
		FaceTouchThreshold: 0.1,
		HeightThreshold:    0.1,
		VelocityThreshold:  0.02,
		HistorySize:        30,
		MinVisibility:      0.5,
	}
}

// Metrics is the per-frame gesture analysis result.
type Metrics struct {
	LeftHandVisible  bool `json:"left_hand_visible"`
	RightHandVisible bool `json:"right_hand_visible"`

	FaceTouchDetected bool `json:"face_touch_detected"`
	FaceTouchCount    int  `json:"face_touch_count"`

	ActiveGestureCount int           `json:"active_gesture_count"` // This frame
	GestureFrequency   float64       `json:"gesture_frequency"`    // Per minute
	HandActivityLevel  ActivityLevel `json:"hand_activity_level"`

	LeftHandAboveShoulders  bool `json:"left_hand_above_shoulders"`
	RightHandAboveShoulders bool `json:"right_hand_above_shoulders"`

	Timestamp float64 `json:"timestamp"`
}

// Summary is the session-wide gesture report.
type Summary struct {
	TotalFaceTouches         int           `json:"total_face_touches"`
	TotalGestures            int           `json:"total_gestures"`
	AverageGesturesPerMinute float64       `json:"average_gestures_per_minute"`
	SessionDurationMinutes   float64       `json:"session_duration_minutes"`
	Classification           ActivityLevel `json:"classification"`
	FaceTouchFrequency       float64       `json:"face_touch_frequency"`
	MostActivePeriod         string        `json:"most_active_period"` // beginning/middle/end
}

type handSample struct {
	x, y, t float64
}

type handTracker struct {
	history []handSample
	cap     int
}

func (h *handTracker) push(s handSample) {
	h.history = append(h.history, s)
	if len(h.history) > h.cap {
		h.history = h.history[1:]
	}
}

// recentMovement sums frame-to-frame displacement over the last window
// samples. Returns 0 until enough samples exist.
func (h *handTracker) recentMovement(window int) float64 {
	if len(h.history) < window {
		return 0
	}
	recent := h.history[len(h.history)-window:]
	var total float64
	for i := 1; i < len(recent); i++ {
		dx := recent[i].x - recent[i-1].x
		dy := recent[i].y - recent[i-1].y
		total += math.Hypot(dx, dy)
	}
	return total
}

// Analyzer tracks hand gestures across a session. One instance per
// session; all timing comes from caller timestamps.
type Analyzer struct {
	cfg Config

	totalFaceTouches int
	totalGestures    int

	left  handTracker
	right handTracker

	gestureTimestamps   []float64
	faceTouchTimestamps []float64

	sessionStart    float64
	sessionStartSet bool
	lastTimestamp   float64
}

// NewAnalyzer creates a gesture analyzer with the given config.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:   cfg,
		left:  handTracker{cap: cfg.HistorySize},
		right: handTracker{cap: cfg.HistorySize},
	}
}

// Analyze computes gesture metrics for one frame. A missing hand or nose
// degrades the individual detections; a present but truncated hand set
// panics.
func (a *Analyzer) Analyze(leftHand, rightHand []landmark.Landmark, nose *landmark.Landmark, shoulderY, timestamp float64) Metrics {
	if !a.sessionStartSet {
		a.sessionStart = timestamp
		a.sessionStartSet = true
	}
	a.lastTimestamp = timestamp

	if len(leftHand) > 0 {
		landmark.MustHave(leftHand, landmark.HandPoints, landmark.LeftHand)
	}
	if len(rightHand) > 0 {
		landmark.MustHave(rightHand, landmark.HandPoints, landmark.RightHand)
	}

	leftVisible := handVisible(leftHand, a.cfg.MinVisibility)
	rightVisible := handVisible(rightHand, a.cfg.MinVisibility)

	faceTouch := a.detectFaceTouch(leftHand, rightHand, nose, timestamp)

	active, leftUp := a.trackHand(&a.left, leftHand, shoulderY, timestamp)
	activeR, rightUp := a.trackHand(&a.right, rightHand, shoulderY, timestamp)
	active += activeR
	a.totalGestures += active

	freq := a.frequency(timestamp)

	return Metrics{
		LeftHandVisible:         leftVisible,
		RightHandVisible:        rightVisible,
		FaceTouchDetected:       faceTouch,
		FaceTouchCount:          a.totalFaceTouches,
		ActiveGestureCount:      active,
		GestureFrequency:        freq,
		HandActivityLevel:       classify(freq),
		LeftHandAboveShoulders:  leftUp,
		RightHandAboveShoulders: rightUp,
		Timestamp:               timestamp,
	}
}

func handVisible(hand []landmark.Landmark, minVis float64) bool {
	return len(hand) > 0 && hand[0].Visibility > minVis
}

// detectFaceTouch checks whether either index fingertip is within the
// touch radius of the nose. Each detection increments the cumulative
// counter once, even if both hands qualify.
func (a *Analyzer) detectFaceTouch(leftHand, rightHand []landmark.Landmark, nose *landmark.Landmark, timestamp float64) bool {
	if nose == nil {
		return false
	}

	touched := a.fingertipNear(leftHand, *nose) || a.fingertipNear(rightHand, *nose)
	if touched {
		a.totalFaceTouches++
		a.faceTouchTimestamps = append(a.faceTouchTimestamps, timestamp)
		if len(a.faceTouchTimestamps) > 50 {
			a.faceTouchTimestamps = a.faceTouchTimestamps[1:]
		}
	}
	return touched
}

func (a *Analyzer) fingertipNear(hand []landmark.Landmark, nose landmark.Landmark) bool {
	if len(hand) <= landmark.HandIndexTip {
		return false
	}
	tip := hand[landmark.HandIndexTip]
	if tip.Visibility <= a.cfg.MinVisibility {
		return false
	}
	return landmark.Dist(tip, nose) < a.cfg.FaceTouchThreshold
}

// trackHand records the wrist position while the hand is raised above
// the shoulder line and counts one active gesture when the displacement
// over the last three samples exceeds the velocity threshold.
func (a *Analyzer) trackHand(tracker *handTracker, hand []landmark.Landmark, shoulderY, timestamp float64) (active int, aboveShoulders bool) {
	if len(hand) <= landmark.HandWrist {
		return 0, false
	}
	wrist := hand[landmark.HandWrist]
	if wrist.Visibility <= a.cfg.MinVisibility {
		return 0, false
	}

	if wrist.Y >= shoulderY-a.cfg.HeightThreshold {
		return 0, false
	}
	aboveShoulders = true

	tracker.push(handSample{x: wrist.X, y: wrist.Y, t: timestamp})

	if tracker.recentMovement(3) > a.cfg.VelocityThreshold {
		active = 1
		a.gestureTimestamps = append(a.gestureTimestamps, timestamp)
		if len(a.gestureTimestamps) > 100 {
			a.gestureTimestamps = a.gestureTimestamps[1:]
		}
	}
	return active, aboveShoulders
}

// frequency returns cumulative gestures per elapsed session minute.
// Reports zero for the first six seconds, before a rate means anything.
func (a *Analyzer) frequency(timestamp float64) float64 {
	if !a.sessionStartSet {
		return 0
	}
	minutes := (timestamp - a.sessionStart) / 60
	if minutes < 0.1 {
		return 0
	}
	return float64(a.totalGestures) / minutes
}

func classify(frequency float64) ActivityLevel {
	switch {
	case frequency < 5:
		return ActivityPassive
	case frequency < 15:
		return ActivityModerate
	default:
		return ActivityDynamic
	}
}

// Summary returns the session-wide gesture report.
func (a *Analyzer) Summary() Summary {
	minutes := 0.0
	if a.sessionStartSet {
		minutes = (a.lastTimestamp - a.sessionStart) / 60
	}

	avg := 0.0
	touchFreq := 0.0
	if minutes > 0 {
		avg = float64(a.totalGestures) / minutes
		touchFreq = float64(a.totalFaceTouches) / minutes
	}

	return Summary{
		TotalFaceTouches:         a.totalFaceTouches,
		TotalGestures:            a.totalGestures,
		AverageGesturesPerMinute: avg,
		SessionDurationMinutes:   minutes,
		Classification:           classify(avg),
		FaceTouchFrequency:       touchFreq,
		MostActivePeriod:         a.mostActivePeriod(),
	}
}

// mostActivePeriod buckets gesture timestamps into session thirds.
func (a *Analyzer) mostActivePeriod() string {
	if !a.sessionStartSet || len(a.gestureTimestamps) == 0 {
		return "beginning"
	}
	span := a.lastTimestamp - a.sessionStart
	if span <= 0 {
		return "beginning"
	}

	var counts [3]int
	for _, t := range a.gestureTimestamps {
		frac := (t - a.sessionStart) / span
		idx := int(frac * 3)
		if idx > 2 {
			idx = 2
		}
		counts[idx]++
	}

	best, bestIdx := counts[0], 0
	for i, c := range counts {
		if c > best {
			best, bestIdx = c, i
		}
	}
	return [3]string{"beginning", "middle", "end"}[bestIdx]
}

// Reset clears all state for a new session.
func (a *Analyzer) Reset() {
	*a = Analyzer{
		cfg:   a.cfg,
		left:  handTracker{cap: a.cfg.HistorySize},
		right: handTracker{cap: a.cfg.HistorySize},
	}
}
