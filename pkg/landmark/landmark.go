// Package landmark defines the normalized keypoint types produced by the
// external holistic landmark detector and consumed by every analyzer.
//
// A full frame carries up to four modalities: pose (33 points), face
// (468 points, 478 with refined iris landmarks), and one set of 21 points
// per hand. Any modality may be absent on a given frame; absence is a
// valid state, not an error.
package landmark

import (
	"fmt"
	"math"
)

// Landmark is a single tracked point in normalized frame coordinates.
// X and Y are 0-1 relative to frame extent, Z is relative depth
// (unitless), and Visibility is the detector's confidence 0-1.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Modality names a landmark set. Used as part of the smoothing filter key.
type Modality string

const (
	Pose      Modality = "pose"
	Face      Modality = "face"
	LeftHand  Modality = "left_hand"
	RightHand Modality = "right_hand"
)

// Expected point counts per modality.
const (
	PosePoints = 33
	FacePoints = 468
	HandPoints = 21
)

// Frame is one timestamped detection result. Nil slices mean the
// modality was not detected this frame.
type Frame struct {
	Pose      []Landmark `json:"pose,omitempty"`
	Face      []Landmark `json:"face,omitempty"`
	LeftHand  []Landmark `json:"left_hand,omitempty"`
	RightHand []Landmark `json:"right_hand,omitempty"`

	Timestamp   float64 `json:"timestamp"` // Seconds, monotone per session
	FrameNumber int     `json:"frame_number"`
}

// Dist returns the 2D euclidean distance between two landmarks.
// Depth is ignored: the analyzers reason in normalized frame space.
func Dist(a, b Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// MustHave panics unless the set holds at least n points. Analyzers call
// this before indexing a set they have already decided to process: a
// too-short set at that point is a topology violation by the caller, not
// a missing-input case, and must fail loudly rather than mis-index.
func MustHave(set []Landmark, n int, modality Modality) {
	if len(set) < n {
		panic(fmt.Sprintf("landmark: %s set has %d points, need %d", modality, len(set), n))
	}
}
