// Package stress detects stress indicators from face landmarks: eye
// aspect ratio blink detection, blink-rate cognitive load, and sustained
// lip compression while not speaking.
package stress

import (
	"math"
	"sort"

	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// Level classifies the composite stress assessment.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Config holds the tunable thresholds for stress analysis.
type Config struct {
	EARThreshold          float64 // Absolute EAR below which the eye counts as closed
	BlinkRateThreshold    float64 // Blinks per minute flagging high cognitive load
	LipCompressionRatio   float64 // Fraction of baseline opening treated as compressed
	LipPurseDuration      float64 // Seconds of sustained compression before flagging
	CalibrationFrames     int     // Frames used to learn EAR and lip baselines
	FaceSizeWindow        int     // Frames of face size kept for distance bands
	BaselineBlinkFraction float64 // Personal threshold as a fraction of baseline EAR
}

// DefaultConfig returns the recommended stress thresholds.
func DefaultConfig() Config {
	return Config{
		EARThreshold:          0.2,
		BlinkRateThreshold:    30.0,
		LipCompressionRatio:   0.7,
		LipPurseDuration:      2.0,
		CalibrationFrames:     60, // ~2 seconds at 30 fps
		FaceSizeWindow:        30,
		BaselineBlinkFraction: 0.6,
	}
}

// Metrics is the per-frame stress analysis result.
type Metrics struct {
	LeftEAR    float64 `json:"left_ear"`
	RightEAR   float64 `json:"right_ear"`
	AverageEAR float64 `json:"average_ear"`

	BlinkDetected bool    `json:"blink_detected"`
	BlinkCount    int     `json:"blink_count"`
	BlinkRate     float64 `json:"blink_rate"` // Per minute

	HighCognitiveLoad bool `json:"high_cognitive_load"`

	LipDistance      float64 `json:"lip_distance"`
	LipPursing       bool    `json:"lip_pursing"`
	LipPurseDuration float64 `json:"lip_purse_duration"`

	StressLevel Level   `json:"stress_level"`
	Timestamp   float64 `json:"timestamp"`
}

// Summary is the session-wide stress report.
type Summary struct {
	SessionDurationMinutes    float64 `json:"session_duration_minutes"`
	TotalBlinks               int     `json:"total_blinks"`
	AverageBlinkRate          float64 `json:"average_blink_rate"`
	HighCognitiveLoadDetected bool    `json:"high_cognitive_load_detected"`
	MaxLipPurseDuration       float64 `json:"max_lip_purse_duration"`
	FramesProcessed           int     `json:"frames_processed"`
	StressAssessment          Level   `json:"stress_assessment"`
}

type eyeState int

const (
	eyeOpen eyeState = iota
	eyeClosed
)

// Analyzer detects blink and lip-compression stress signals. One
// instance per session; all timing comes from caller timestamps.
type Analyzer struct {
	cfg Config

	// Blink state. The open/closed state machine prevents counting a
	// single blink more than once while EAR stays low.
	blinkCount int
	eyeState   eyeState

	// Adaptive EAR baseline, learned over the calibration window.
	baselineEAR         float64
	baselineEARSet      bool
	earCalibrationCount int
	earCalibrationSum   float64

	// Face size window for distance compensation.
	faceSizes []float64

	// Lip compression state with its own adaptive baseline.
	baselineLipDistance float64
	baselineLipSet      bool
	lipCalibrationCount int
	lipCalibrationSum   float64
	lipPurseStart       float64
	lipPursing          bool
	lipPurseDuration    float64
	maxPurseDuration    float64

	sessionStart    float64
	sessionStartSet bool
	frameCount      int
	lastTimestamp   float64
}

// NewAnalyzer creates a stress analyzer with the given config.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze computes stress metrics for one frame. A missing face degrades
// to neutral EAR/lip values with blink and purse state left untouched; a
// present but truncated face set panics, because it means the landmark
// producer is broken rather than the face out of frame. Lip pursing is
// suppressed entirely while speaking.
func (a *Analyzer) Analyze(face []landmark.Landmark, isSpeaking bool, timestamp float64) Metrics {
	if !a.sessionStartSet {
		a.sessionStart = timestamp
		a.sessionStartSet = true
	}
	a.frameCount++
	a.lastTimestamp = timestamp

	leftEAR, rightEAR, avgEAR := 0.5, 0.5, 0.5
	blinkDetected := false
	lipDistance := 0.05
	lipPursing := false
	purseDuration := 0.0

	if len(face) > 0 {
		landmark.MustHave(face, landmark.FacePoints, landmark.Face)
		leftEAR = earFromPoints(landmark.LeftEyeEAR(face))
		rightEAR = earFromPoints(landmark.RightEyeEAR(face))
		avgEAR = (leftEAR + rightEAR) / 2

		faceSize := a.trackFaceSize(face)
		blinkDetected = a.detectBlink(avgEAR, faceSize)

		lipDistance = lipOpening(face)
		lipPursing, purseDuration = a.detectLipPursing(lipDistance, isSpeaking, timestamp)
	}

	blinkRate := a.blinkRate(timestamp)
	highLoad := blinkRate > a.cfg.BlinkRateThreshold
	level := a.classify(blinkRate, lipPursing)

	return Metrics{
		LeftEAR:           leftEAR,
		RightEAR:          rightEAR,
		AverageEAR:        avgEAR,
		BlinkDetected:     blinkDetected,
		BlinkCount:        a.blinkCount,
		BlinkRate:         blinkRate,
		HighCognitiveLoad: highLoad,
		LipDistance:       lipDistance,
		LipPursing:        lipPursing,
		LipPurseDuration:  purseDuration,
		StressLevel:       level,
		Timestamp:         timestamp,
	}
}

// earFromPoints applies the standard EAR formula to six contour points:
// EAR = (||p2-p6|| + ||p3-p5||) / (2 * ||p1-p4||).
func earFromPoints(p [6]landmark.Landmark) float64 {
	vertical1 := landmark.Dist(p[1], p[5])
	vertical2 := landmark.Dist(p[2], p[4])
	horizontal := landmark.Dist(p[0], p[3])

	if horizontal == 0 {
		return 0.5
	}
	return (vertical1 + vertical2) / (2 * horizontal)
}

// trackFaceSize measures apparent face size (temple-to-temple width
// averaged with forehead-to-chin height) and records it in the distance
// window.
func (a *Analyzer) trackFaceSize(face []landmark.Landmark) float64 {
	width := math.Abs(face[landmark.FaceLeftTemple].X - face[landmark.FaceRightTemple].X)
	height := math.Abs(face[landmark.FaceForehead].Y - face[landmark.FaceChin].Y)
	size := (width + height) / 2

	a.faceSizes = append(a.faceSizes, size)
	if len(a.faceSizes) > a.cfg.FaceSizeWindow {
		a.faceSizes = a.faceSizes[1:]
	}
	return size
}

// adaptiveThreshold scales the absolute EAR threshold by apparent
// distance: a small (far) face gets a more sensitive threshold, a large
// (near) face a less sensitive one. Five discrete bands.
func (a *Analyzer) adaptiveThreshold() float64 {
	if len(a.faceSizes) < 5 {
		return a.cfg.EARThreshold
	}

	var sum float64
	for _, s := range a.faceSizes {
		sum += s
	}
	avg := sum / float64(len(a.faceSizes))

	switch {
	case avg < 0.15: // very far
		return a.cfg.EARThreshold * 1.4
	case avg < 0.25: // far
		return a.cfg.EARThreshold * 1.2
	case avg > 0.4: // very close
		return a.cfg.EARThreshold * 0.8
	case avg > 0.3: // close
		return a.cfg.EARThreshold * 0.9
	default:
		return a.cfg.EARThreshold
	}
}

// detectBlink runs the open/closed state machine against the effective
// threshold. Blinks are suppressed until the EAR baseline calibration
// window completes.
func (a *Analyzer) detectBlink(avgEAR, faceSize float64) bool {
	if !a.baselineEARSet && a.earCalibrationCount < a.cfg.CalibrationFrames {
		a.earCalibrationCount++
		a.earCalibrationSum += avgEAR
		if a.earCalibrationCount >= a.cfg.CalibrationFrames {
			a.baselineEAR = a.earCalibrationSum / float64(a.earCalibrationCount)
			a.baselineEARSet = true
			log.Debug("EAR baseline established", "baseline", a.baselineEAR)
		}
		return false
	}

	threshold := a.adaptiveThreshold()
	if a.baselineEARSet {
		threshold = math.Min(threshold, a.baselineEAR*a.cfg.BaselineBlinkFraction)
	}

	if avgEAR < threshold {
		if a.eyeState == eyeOpen {
			a.eyeState = eyeClosed
			a.blinkCount++
			return true
		}
		return false
	}
	a.eyeState = eyeOpen
	return false
}

// lipOpening measures the vertical lip opening as a trimmed mean over
// several upper/lower pairs, weighting the center measurement, so a
// single noisy landmark cannot fake a compression.
func lipOpening(face []landmark.Landmark) float64 {
	var distances []float64

	for i := 0; i < len(landmark.UpperInnerLip); i++ {
		upper := face[landmark.UpperInnerLip[i]]
		lower := face[landmark.LowerInnerLip[i]]
		distances = append(distances, math.Abs(upper.Y-lower.Y))
	}

	center := math.Abs(face[landmark.FaceUpperLipCenter].Y - face[landmark.FaceLowerLipCenter].Y)
	distances = append(distances, center*2)

	left := math.Abs(face[landmark.FaceMouthLeft].Y - face[landmark.FaceLeftLowerLip].Y)
	right := math.Abs(face[landmark.FaceMouthRight].Y - face[landmark.FaceRightLowerLip].Y)
	distances = append(distances, left, right)

	if len(distances) <= 2 {
		var sum float64
		for _, d := range distances {
			sum += d
		}
		if len(distances) == 0 {
			return 0.05
		}
		return sum / float64(len(distances))
	}

	// Drop the extreme ~20% at each tail.
	sort.Float64s(distances)
	trim := len(distances) / 5
	if trim < 1 {
		trim = 1
	}
	trimmed := distances[trim : len(distances)-trim]

	var sum float64
	for _, d := range trimmed {
		sum += d
	}
	return sum / float64(len(trimmed))
}

// detectLipPursing tracks sustained compression below the baseline
// ratio. Speaking clears any in-progress purse: talking moves the lips.
func (a *Analyzer) detectLipPursing(lipDistance float64, isSpeaking bool, timestamp float64) (bool, float64) {
	if isSpeaking {
		a.lipPursing = false
		a.lipPurseDuration = 0
		a.lipPurseStart = 0
		return false, 0
	}

	if !a.baselineLipSet && a.lipCalibrationCount < a.cfg.CalibrationFrames {
		a.lipCalibrationCount++
		a.lipCalibrationSum += lipDistance
		if a.lipCalibrationCount >= a.cfg.CalibrationFrames {
			a.baselineLipDistance = a.lipCalibrationSum / float64(a.lipCalibrationCount)
			a.baselineLipSet = true
			log.Debug("lip baseline established", "baseline", a.baselineLipDistance)
		}
		return false, 0
	}

	threshold := 0.015 // Conservative default before a baseline exists
	if a.baselineLipSet {
		threshold = a.baselineLipDistance * a.cfg.LipCompressionRatio
	}

	if lipDistance < threshold {
		if a.lipPurseStart == 0 {
			a.lipPurseStart = timestamp
			a.lipPurseDuration = 0
		} else {
			a.lipPurseDuration = timestamp - a.lipPurseStart
		}
	} else {
		a.lipPurseStart = 0
		a.lipPurseDuration = 0
	}

	if a.lipPurseDuration > a.maxPurseDuration {
		a.maxPurseDuration = a.lipPurseDuration
	}

	a.lipPursing = a.lipPurseDuration >= a.cfg.LipPurseDuration
	return a.lipPursing, a.lipPurseDuration
}

// blinkRate returns cumulative blinks per elapsed session minute.
func (a *Analyzer) blinkRate(timestamp float64) float64 {
	if !a.sessionStartSet {
		return 0
	}
	elapsed := timestamp - a.sessionStart
	if elapsed < 1.0 {
		return 0
	}
	return float64(a.blinkCount) / elapsed * 60
}

// classify maps weighted indicators to a level: blink rate over the
// threshold counts 2, over 70% of it counts 1, sustained pursing counts
// 2. Total >= 3 is high, >= 1 moderate.
func (a *Analyzer) classify(blinkRate float64, lipPursing bool) Level {
	indicators := 0
	if blinkRate > a.cfg.BlinkRateThreshold {
		indicators += 2
	} else if blinkRate > a.cfg.BlinkRateThreshold*0.7 {
		indicators++
	}
	if lipPursing {
		indicators += 2
	}

	switch {
	case indicators >= 3:
		return LevelHigh
	case indicators >= 1:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Summary returns the session-wide stress report.
func (a *Analyzer) Summary() Summary {
	elapsed := 0.0
	if a.sessionStartSet {
		elapsed = a.lastTimestamp - a.sessionStart
	}
	rate := a.blinkRate(a.lastTimestamp)

	return Summary{
		SessionDurationMinutes:    elapsed / 60,
		TotalBlinks:               a.blinkCount,
		AverageBlinkRate:          rate,
		HighCognitiveLoadDetected: rate > a.cfg.BlinkRateThreshold,
		MaxLipPurseDuration:       a.maxPurseDuration,
		FramesProcessed:           a.frameCount,
		StressAssessment:          a.classify(rate, a.maxPurseDuration >= a.cfg.LipPurseDuration),
	}
}

// Reset clears all state for a new session.
func (a *Analyzer) Reset() {
	*a = Analyzer{cfg: a.cfg}
}
