package smoothing

import (
	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// Config holds One-Euro tuning shared by every per-coordinate filter.
type Config struct {
	MinCutoff float64 // Minimum cutoff frequency in Hz
	Beta      float64 // Speed coefficient
	DCutoff   float64 // Derivative cutoff frequency in Hz
}

// DefaultConfig returns moderate smoothing with no velocity adaptation,
// which matches typical 15-30 fps webcam landmark streams.
func DefaultConfig() Config {
	return Config{
		MinCutoff: 1.0,
		Beta:      0.0,
		DCutoff:   1.0,
	}
}

type filterKey struct {
	modality landmark.Modality
	index    int
	coord    byte // 'x', 'y' or 'z'
}

// Smoother applies a One-Euro filter independently to every
// (modality, point index, coordinate) scalar stream. Filters are created
// lazily on first observation of a key and live until Reset. Visibility
// is passed through unfiltered.
//
// A Smoother is owned by exactly one session and is not goroutine-safe.
type Smoother struct {
	cfg     Config
	filters map[filterKey]*OneEuroFilter
}

// NewSmoother creates a smoother with the given tuning.
func NewSmoother(cfg Config) *Smoother {
	return &Smoother{
		cfg:     cfg,
		filters: make(map[filterKey]*OneEuroFilter),
	}
}

func (s *Smoother) filter(key filterKey) *OneEuroFilter {
	f, ok := s.filters[key]
	if !ok {
		f = NewOneEuroFilter(s.cfg.MinCutoff, s.cfg.Beta, s.cfg.DCutoff)
		s.filters[key] = f
	}
	return f
}

// smoothSet filters one modality's landmarks in place of a copy.
// Returns nil for nil input so absent modalities stay absent.
func (s *Smoother) smoothSet(set []landmark.Landmark, modality landmark.Modality, t float64) []landmark.Landmark {
	if set == nil {
		return nil
	}

	out := make([]landmark.Landmark, len(set))
	for i, lm := range set {
		out[i] = landmark.Landmark{
			X:          s.filter(filterKey{modality, i, 'x'}).Filter(lm.X, t),
			Y:          s.filter(filterKey{modality, i, 'y'}).Filter(lm.Y, t),
			Z:          s.filter(filterKey{modality, i, 'z'}).Filter(lm.Z, t),
			Visibility: lm.Visibility,
		}
	}
	return out
}

// Smooth filters all modalities of a frame and returns a new frame with
// the same timestamp and frame number.
func (s *Smoother) Smooth(frame landmark.Frame) landmark.Frame {
	return landmark.Frame{
		Pose:        s.smoothSet(frame.Pose, landmark.Pose, frame.Timestamp),
		Face:        s.smoothSet(frame.Face, landmark.Face, frame.Timestamp),
		LeftHand:    s.smoothSet(frame.LeftHand, landmark.LeftHand, frame.Timestamp),
		RightHand:   s.smoothSet(frame.RightHand, landmark.RightHand, frame.Timestamp),
		Timestamp:   frame.Timestamp,
		FrameNumber: frame.FrameNumber,
	}
}

// FilterCount returns the number of filter instances created so far.
func (s *Smoother) FilterCount() int {
	return len(s.filters)
}

// Reset clears all per-key filter state. Used when a session restarts or
// tracking is lost for a sustained period.
func (s *Smoother) Reset() {
	s.filters = make(map[filterKey]*OneEuroFilter)
	log.Debug("smoother reset")
}
