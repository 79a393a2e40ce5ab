package session

import (
	"math"
	"sort"
	"strings"

	"github.com/mirrorlabs/interview-mirror/pkg/integrity"
)

// Event types on the report card timeline.
const (
	EventSuspiciousGaze = "suspicious_gaze"
	EventLowEyeContact  = "low_eye_contact"
)

// IntegrityEvent is one entry on the flattened report card timeline:
// either a suspicious-gaze firing (a point event, Start == End) or a
// span of consecutive frames with eye contact below the threshold.
// ClusterID is -1 for eye-contact spans.
type IntegrityEvent struct {
	Type  string  `json:"type"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	ClusterID          int     `json:"cluster_id"`
	Frequency          int     `json:"frequency,omitempty"`
	DistanceFromCenter float64 `json:"distance_from_center,omitempty"`
}

// Analytics is the session report card: headline scores plus the
// aggregates that back them.
type Analytics struct {
	DurationSeconds float64 `json:"duration_seconds"`
	FramesProcessed int     `json:"frames_processed"`

	EyeContactScore          float64 `json:"eye_contact_score"` // 0-100
	AverageFidgetScore       float64 `json:"average_fidget_score"`
	SmilePercentage          float64 `json:"smile_percentage"`
	StressFramePercentage    float64 `json:"stress_frame_percentage"`
	ArmsCrossedPercentage    float64 `json:"arms_crossed_percentage"`
	AverageShoulderStability float64 `json:"average_shoulder_stability"`
	FaceTouchCount           int     `json:"face_touch_count"`
	TotalBlinks              int     `json:"total_blinks"`
	WordsPerMinute           float64 `json:"words_per_minute"`

	OverallScore float64  `json:"overall_score"` // 0-100
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`

	Integrity       integrity.Report `json:"integrity"`
	IntegrityEvents []IntegrityEvent `json:"integrity_events"`
}

// Analytics computes the report card from the logged frames, the
// transcript, and the session-wide integrity report. The timeline merges
// the checker's suspicious segments with spans of low eye contact
// derived from the logged frames against lowEyeContact.
func (r *Record) Analytics(integrityReport integrity.Report, lowEyeContact float64) Analytics {
	frames := r.Frames()
	transcript := r.Transcript()

	a := Analytics{
		FramesProcessed: len(frames),
		Integrity:       integrityReport,
	}

	for _, seg := range integrityReport.SuspiciousSegments {
		a.IntegrityEvents = append(a.IntegrityEvents, IntegrityEvent{
			Type:               EventSuspiciousGaze,
			Start:              seg.Timestamp,
			End:                seg.Timestamp,
			ClusterID:          seg.ClusterID,
			Frequency:          seg.Frequency,
			DistanceFromCenter: seg.DistanceFromCenter,
		})
	}
	a.IntegrityEvents = append(a.IntegrityEvents, lowEyeContactSpans(frames, lowEyeContact)...)
	sort.Slice(a.IntegrityEvents, func(i, j int) bool {
		return a.IntegrityEvents[i].Start < a.IntegrityEvents[j].Start
	})

	if len(frames) == 0 {
		a.OverallScore = 0
		a.Weaknesses = []string{"No frames were analyzed"}
		return a
	}

	a.DurationSeconds = frames[len(frames)-1].Elapsed

	var eyeSum, fidgetSum, stabilitySum float64
	var smileFrames, stressFrames, armsCrossedFrames int
	for _, f := range frames {
		eyeSum += f.Metrics.Vision.EyeContactScore
		fidgetSum += f.Metrics.Vision.FidgetScore
		stabilitySum += f.Metrics.Posture.ShoulderStability
		if f.Metrics.Vision.IsSmiling {
			smileFrames++
		}
		if f.Metrics.Vision.IsStressed {
			stressFrames++
		}
		if f.Metrics.Posture.ArmsCrossed {
			armsCrossedFrames++
		}
	}
	n := float64(len(frames))

	a.EyeContactScore = math.Round(eyeSum / n * 100)
	a.AverageFidgetScore = fidgetSum / n
	a.SmilePercentage = float64(smileFrames) / n * 100
	a.StressFramePercentage = float64(stressFrames) / n * 100
	a.ArmsCrossedPercentage = float64(armsCrossedFrames) / n * 100
	a.AverageShoulderStability = stabilitySum / n

	last := frames[len(frames)-1].Metrics
	a.FaceTouchCount = last.Gesture.FaceTouchCount
	a.TotalBlinks = last.Stress.BlinkCount

	a.WordsPerMinute = wordsPerMinute(transcript, a.DurationSeconds)

	a.OverallScore = overallScore(a, integrityReport)
	a.Strengths, a.Weaknesses = assess(a)
	return a
}

// lowEyeContactSpans collapses consecutive frames whose eye-contact
// score sits below the threshold into timeline spans.
func lowEyeContactSpans(frames []FrameSnapshot, threshold float64) []IntegrityEvent {
	var events []IntegrityEvent
	start := -1

	flush := func(end int) {
		events = append(events, IntegrityEvent{
			Type:      EventLowEyeContact,
			Start:     frames[start].Elapsed,
			End:       frames[end].Elapsed,
			ClusterID: -1,
		})
		start = -1
	}

	for i, f := range frames {
		if f.Metrics.Vision.EyeContactScore < threshold {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i - 1)
		}
	}
	if start >= 0 {
		flush(len(frames) - 1)
	}
	return events
}

// wordsPerMinute counts words in the candidate's transcript turns over
// the session duration.
func wordsPerMinute(transcript []Turn, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	words := 0
	for _, t := range transcript {
		if t.Role != "user" {
			continue
		}
		words += len(strings.Fields(t.Text))
	}
	return float64(words) / (durationSeconds / 60)
}

// overallScore blends the headline aggregates into a 0-100 score: eye
// contact carries the most weight, with stability, calmness, and the
// integrity score filling out the rest.
func overallScore(a Analytics, rep integrity.Report) float64 {
	score := a.EyeContactScore * 0.4
	score += a.AverageShoulderStability * 100 * 0.2
	score += (100 - a.StressFramePercentage) * 0.2
	score += rep.IntegrityScore * 100 * 0.2
	return math.Round(math.Max(0, math.Min(100, score)))
}

func assess(a Analytics) (strengths, weaknesses []string) {
	if a.EyeContactScore >= 70 {
		strengths = append(strengths, "Strong eye contact with the camera")
	} else if a.EyeContactScore < 40 {
		weaknesses = append(weaknesses, "Eye contact drifted away from the camera")
	}

	if a.AverageShoulderStability >= 0.9 {
		strengths = append(strengths, "Steady, composed posture")
	}
	if a.ArmsCrossedPercentage > 30 {
		weaknesses = append(weaknesses, "Arms crossed for much of the session")
	}
	if a.StressFramePercentage > 50 {
		weaknesses = append(weaknesses, "Frequent visible stress signals")
	} else if a.StressFramePercentage < 15 {
		strengths = append(strengths, "Relaxed expression throughout")
	}
	if a.FaceTouchCount > 10 {
		weaknesses = append(weaknesses, "Frequent face touching")
	}
	if a.Integrity.IntegrityAssessment != "clean" {
		weaknesses = append(weaknesses, "Gaze patterns at speech onset warrant review")
	}
	return strengths, weaknesses
}
