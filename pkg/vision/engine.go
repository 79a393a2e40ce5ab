// Package vision computes the lightweight per-frame metrics shown live
// in the coaching UI: eye contact, fidgeting, head gestures, smiling,
// and a simple brow-furrow stress proxy. These are cheap heuristics over
// face landmarks; the deeper analysis lives in the posture, stress,
// gesture and integrity packages.
package vision

import (
	"math"

	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// HeadGesture classifies recent head movement.
type HeadGesture string

const (
	GestureNeutral HeadGesture = "neutral"
	GestureNodding HeadGesture = "nodding"
	GestureShaking HeadGesture = "shaking"
)

// Config holds the tunable thresholds for the frame metrics.
type Config struct {
	MovementThreshold float64 // Range of nose motion counting as a gesture
	DominanceRatio    float64 // How much one axis must dominate the other
	SmileRatio        float64 // Mouth-width to eye-width ratio counting as a smile
	BrowStressDist    float64 // Brow distance below which brows count as furrowed
	LowEyeContact     float64 // Eye-contact score below which stress is inferred
	NoseHistorySize   int     // Frames of nose position for fidget jitter
	GestureHistory    int     // Frames of nose position for head gestures
}

// DefaultConfig returns the recommended frame-metric thresholds.
func DefaultConfig() Config {
	return Config{
		MovementThreshold: 0.03,
		DominanceRatio:    1.5,
		SmileRatio:        0.55,
		BrowStressDist:    0.05,
		LowEyeContact:     0.4,
		NoseHistorySize:   20,
		GestureHistory:    30,
	}
}

// Metrics is the combined per-frame result.
type Metrics struct {
	EyeContactScore float64     `json:"eye_contact_score"` // 0-1
	FidgetScore     float64     `json:"fidget_score"`      // Nose jitter, scaled
	HeadGesture     HeadGesture `json:"head_gesture"`
	IsSmiling       bool        `json:"is_smiling"`
	StressDetected  bool        `json:"stress_detected"` // Furrowed brows
	IsStressed      bool        `json:"is_stressed"`     // Composite flag
}

type point struct{ x, y float64 }

// Engine computes frame metrics over short nose-position histories. One
// instance per session.
type Engine struct {
	cfg Config

	noseHistory    []point
	gestureHistory []point
}

// NewEngine creates a frame-metrics engine with the given config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// defaultMetrics is the degraded result for absent or short face sets.
func defaultMetrics() Metrics {
	return Metrics{
		EyeContactScore: 0.5,
		HeadGesture:     GestureNeutral,
	}
}

// AnalyzeFrame computes the combined metrics for one frame of face
// landmarks. A missing face degrades to neutral defaults; a present but
// truncated face set panics. The iris landmark needs refined face
// landmarks (478 points); without it eye contact reports 0.5.
func (e *Engine) AnalyzeFrame(face []landmark.Landmark) Metrics {
	if len(face) == 0 {
		return defaultMetrics()
	}
	landmark.MustHave(face, landmark.FacePoints, landmark.Face)

	eyeContact := e.eyeContact(face)

	nose := face[landmark.FaceNoseTip]
	e.pushNose(nose.X, nose.Y)

	fidget := e.fidgetScore()
	headGesture := e.headGesture()

	browDist := landmark.Dist(face[landmark.FaceLeftBrowInner], face[landmark.FaceRightBrowInner])
	stressDetected := browDist < e.cfg.BrowStressDist

	smiling := e.smiling(face)

	return Metrics{
		EyeContactScore: eyeContact,
		FidgetScore:     fidget,
		HeadGesture:     headGesture,
		IsSmiling:       smiling,
		StressDetected:  stressDetected,
		IsStressed:      stressDetected || eyeContact < e.cfg.LowEyeContact,
	}
}

// eyeContact scores how centered the left iris sits between the eye
// corners. 1.0 means dead center.
func (e *Engine) eyeContact(face []landmark.Landmark) float64 {
	if len(face) <= landmark.FaceLeftIris {
		return 0.5
	}

	innerX := face[landmark.FaceLeftEyeOuter].X
	outerX := face[landmark.FaceLeftEyeInner].X
	eyeWidth := math.Abs(innerX - outerX)
	if eyeWidth < 0.001 {
		eyeWidth = 0.1
	}

	irisX := face[landmark.FaceLeftIris].X
	offset := math.Abs(irisX - (innerX+outerX)/2)

	score := 1.0 - offset/eyeWidth
	if score < 0 {
		score = 0
	}
	return math.Round(score*100) / 100
}

func (e *Engine) pushNose(x, y float64) {
	e.noseHistory = append(e.noseHistory, point{x, y})
	if len(e.noseHistory) > e.cfg.NoseHistorySize {
		e.noseHistory = e.noseHistory[1:]
	}
	e.gestureHistory = append(e.gestureHistory, point{x, y})
	if len(e.gestureHistory) > e.cfg.GestureHistory {
		e.gestureHistory = e.gestureHistory[1:]
	}
}

// fidgetScore scales the standard deviation of recent horizontal nose
// motion. Needs a handful of frames before reporting anything.
func (e *Engine) fidgetScore() float64 {
	if len(e.noseHistory) <= 5 {
		return 0
	}

	var mean float64
	for _, p := range e.noseHistory {
		mean += p.x
	}
	mean /= float64(len(e.noseHistory))

	var variance float64
	for _, p := range e.noseHistory {
		d := p.x - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(e.noseHistory)))

	return math.Round(std*100*100) / 100
}

// headGesture classifies nodding vs shaking from the range of nose
// motion on each axis: a gesture needs clear movement on one axis that
// dominates the other.
func (e *Engine) headGesture() HeadGesture {
	if len(e.gestureHistory) < 10 {
		return GestureNeutral
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range e.gestureHistory {
		minX = math.Min(minX, p.x)
		maxX = math.Max(maxX, p.x)
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}
	xRange := maxX - minX
	yRange := maxY - minY

	if yRange > e.cfg.MovementThreshold && yRange > xRange*e.cfg.DominanceRatio {
		return GestureNodding
	}
	if xRange > e.cfg.MovementThreshold && xRange > yRange*e.cfg.DominanceRatio {
		return GestureShaking
	}
	return GestureNeutral
}

// smiling compares mouth width against inter-eye width; a wide mouth
// relative to the face reads as a smile.
func (e *Engine) smiling(face []landmark.Landmark) bool {
	mouthWidth := landmark.Dist(face[landmark.FaceMouthLeft], face[landmark.FaceMouthRight])
	faceWidth := landmark.Dist(face[landmark.FaceLeftEyeOuter], face[landmark.FaceRightEyeOuter])
	if faceWidth <= 0 {
		return false
	}
	return mouthWidth/faceWidth > e.cfg.SmileRatio
}

// Reset clears the motion histories for a new session.
func (e *Engine) Reset() {
	e.noseHistory = nil
	e.gestureHistory = nil
}
