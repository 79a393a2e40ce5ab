// Package integrity analyzes gaze patterns for signs that the candidate
// repeatedly reads from a fixed off-screen location when starting to
// speak. Gaze positions sampled at speech onset are clustered online;
// clusters that are visited often and sit away from screen center raise
// explainable cheat flags and lower an integrity score.
package integrity

import (
	"fmt"
	"math"

	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
)

// Assessment classifies the session-wide integrity outcome.
type Assessment string

const (
	AssessmentClean            Assessment = "clean"
	AssessmentSuspicious       Assessment = "suspicious"
	AssessmentHighlySuspicious Assessment = "highly_suspicious"
)

// Config holds the tunable thresholds for integrity checking.
type Config struct {
	ClusterThreshold    float64 // Distance within which a gaze joins a cluster
	CheatFlagThreshold  int     // Flags before raising the integrity warning
	MinClusterFrequency int     // Visits before a cluster can flag
	CenterDistance      float64 // Minimum distance from screen center to flag
	FlagPenalty         float64 // Score penalty per flag
	MaxFlagPenalty      float64 // Cap on the cumulative flag penalty
}

// DefaultConfig returns the recommended integrity thresholds.
func DefaultConfig() Config {
	return Config{
		ClusterThreshold:    0.05,
		CheatFlagThreshold:  5,
		MinClusterFrequency: 3,
		CenterDistance:      0.2,
		FlagPenalty:         0.15,
		MaxFlagPenalty:      0.9,
	}
}

// Cluster is an online-discovered gaze location with a running-average
// center.
type Cluster struct {
	ID         int     `json:"id"`
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	Visits     int     `json:"visits"`
	FirstVisit float64 `json:"first_visit"`
	LastVisit  float64 `json:"last_visit"`
}

// SuspiciousSegment records one firing of the repeated-pattern rule.
type SuspiciousSegment struct {
	Timestamp          float64 `json:"timestamp"`
	ClusterID          int     `json:"cluster_id"`
	CenterX            float64 `json:"center_x"`
	CenterY            float64 `json:"center_y"`
	Frequency          int     `json:"frequency"`
	DistanceFromCenter float64 `json:"distance_from_center"`
}

// Metrics is the per-frame integrity analysis result.
type Metrics struct {
	GazeX float64 `json:"gaze_x"`
	GazeY float64 `json:"gaze_y"`

	// GazeClusterID is the nearest cluster within the cluster threshold,
	// or -1 when the gaze matches no known cluster.
	GazeClusterID int `json:"gaze_cluster_id"`

	CheatFlagCount   int  `json:"cheat_flag_count"`
	IntegrityWarning bool `json:"integrity_warning"`

	IntegrityScore float64 `json:"integrity_score"` // 1 clean .. 0 suspicious

	SuspiciousSegments []SuspiciousSegment `json:"suspicious_segments"`
	Timestamp          float64             `json:"timestamp"`
}

// Report is the session-wide integrity report.
type Report struct {
	SessionDurationMinutes float64             `json:"session_duration_minutes"`
	TotalSpeechOnsets      int                 `json:"total_speech_onsets"`
	CheatFlagCount         int                 `json:"cheat_flag_count"`
	IntegrityScore         float64             `json:"integrity_score"`
	IntegrityAssessment    Assessment          `json:"integrity_assessment"`
	SuspiciousSegments     []SuspiciousSegment `json:"suspicious_segments"`
	GazeClusters           []Cluster           `json:"gaze_clusters"`
	Recommendations        []string            `json:"recommendations"`
}

// Checker tracks gaze clusters at speech onset. One instance per
// session; all timing comes from caller timestamps.
type Checker struct {
	cfg Config

	clusters           []Cluster
	clusterFrequencies map[int]int

	cheatFlagCount     int
	suspiciousSegments []SuspiciousSegment
	totalSpeechOnsets  int

	sessionStart    float64
	sessionStartSet bool
	lastTimestamp   float64
}

// NewChecker creates an integrity checker with the given config.
func NewChecker(cfg Config) *Checker {
	return &Checker{
		cfg:                cfg,
		clusterFrequencies: make(map[int]int),
	}
}

// Analyze processes one frame. Clustering and flagging only happen on
// speech-onset frames; every frame still reports the current gaze and
// score. An absent face defaults the gaze to screen center; a present
// but truncated face set panics.
func (c *Checker) Analyze(face []landmark.Landmark, speechOnset bool, timestamp float64) Metrics {
	if !c.sessionStartSet {
		c.sessionStart = timestamp
		c.sessionStartSet = true
	}
	c.lastTimestamp = timestamp

	if len(face) > 0 {
		landmark.MustHave(face, landmark.FacePoints, landmark.Face)
	}

	gazeX, gazeY := gazePosition(face)

	if speechOnset {
		c.recordSpeechOnset(gazeX, gazeY, timestamp)
	}

	return Metrics{
		GazeX:              gazeX,
		GazeY:              gazeY,
		GazeClusterID:      c.nearestCluster(gazeX, gazeY),
		CheatFlagCount:     c.cheatFlagCount,
		IntegrityWarning:   c.cheatFlagCount >= c.cfg.CheatFlagThreshold,
		IntegrityScore:     c.score(),
		SuspiciousSegments: append([]SuspiciousSegment(nil), c.suspiciousSegments...),
		Timestamp:          timestamp,
	}
}

// gazePosition averages both eyes' centroids: horizontal from the
// inner/outer corner midpoints, vertical from the lid midpoints.
func gazePosition(face []landmark.Landmark) (float64, float64) {
	if len(face) == 0 {
		return 0.5, 0.5
	}

	leftX := (face[landmark.FaceLeftEyeInner].X + face[landmark.FaceLeftEyeOuter].X) / 2
	leftY := (face[landmark.FaceLeftEyeLidTop].Y + face[landmark.FaceLeftEyeLidBottom].Y) / 2
	rightX := (face[landmark.FaceRightEyeInner].X + face[landmark.FaceRightEyeOuter].X) / 2
	rightY := (face[landmark.FaceRightEyeLidTop].Y + face[landmark.FaceRightEyeLidBottom].Y) / 2

	return (leftX + rightX) / 2, (leftY + rightY) / 2
}

// recordSpeechOnset assigns the gaze to a cluster (updating its running
// average) and fires the suspicious-pattern rule when a cluster is both
// frequent and off-center.
func (c *Checker) recordSpeechOnset(gazeX, gazeY, timestamp float64) {
	c.totalSpeechOnsets++

	id := c.assignCluster(gazeX, gazeY, timestamp)
	c.clusterFrequencies[id]++

	freq := c.clusterFrequencies[id]
	if freq < c.cfg.MinClusterFrequency {
		return
	}

	cluster := &c.clusters[id]
	distFromCenter := math.Hypot(cluster.CenterX-0.5, cluster.CenterY-0.5)
	if distFromCenter <= c.cfg.CenterDistance {
		return
	}

	c.cheatFlagCount++
	c.suspiciousSegments = append(c.suspiciousSegments, SuspiciousSegment{
		Timestamp:          timestamp,
		ClusterID:          id,
		CenterX:            cluster.CenterX,
		CenterY:            cluster.CenterY,
		Frequency:          freq,
		DistanceFromCenter: distFromCenter,
	})

	log.Info("suspicious gaze pattern",
		"cluster", id,
		"frequency", freq,
		"flags", c.cheatFlagCount,
	)
}

// assignCluster finds a cluster within the threshold and folds the gaze
// into its running average, or creates a new singleton cluster.
func (c *Checker) assignCluster(gazeX, gazeY, timestamp float64) int {
	for i := range c.clusters {
		cl := &c.clusters[i]
		if math.Hypot(gazeX-cl.CenterX, gazeY-cl.CenterY) < c.cfg.ClusterThreshold {
			n := float64(cl.Visits)
			cl.CenterX = (cl.CenterX*n + gazeX) / (n + 1)
			cl.CenterY = (cl.CenterY*n + gazeY) / (n + 1)
			cl.Visits++
			cl.LastVisit = timestamp
			return i
		}
	}

	id := len(c.clusters)
	c.clusters = append(c.clusters, Cluster{
		ID:         id,
		CenterX:    gazeX,
		CenterY:    gazeY,
		Visits:     1,
		FirstVisit: timestamp,
		LastVisit:  timestamp,
	})
	return id
}

// nearestCluster returns the closest cluster within the threshold, or -1.
func (c *Checker) nearestCluster(gazeX, gazeY float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range c.clusters {
		d := math.Hypot(gazeX-c.clusters[i].CenterX, gazeY-c.clusters[i].CenterY)
		if d < bestDist && d < c.cfg.ClusterThreshold {
			bestDist = d
			best = i
		}
	}
	return best
}

// score computes the integrity score: 1.0 minus a capped per-flag
// penalty, minus a concentration penalty when one cluster absorbs more
// than half of all speech onsets. Always clamped to [0,1].
func (c *Checker) score() float64 {
	if c.totalSpeechOnsets == 0 {
		return 1.0
	}

	score := 1.0
	score -= math.Min(c.cfg.MaxFlagPenalty, float64(c.cheatFlagCount)*c.cfg.FlagPenalty)

	maxFreq := 0
	for _, f := range c.clusterFrequencies {
		if f > maxFreq {
			maxFreq = f
		}
	}
	if maxFreq > 0 {
		ratio := float64(maxFreq) / float64(c.totalSpeechOnsets)
		if ratio > 0.5 {
			score -= (ratio - 0.5) * 0.4
		}
	}

	return math.Max(0, math.Min(1, score))
}

// Report returns the session-wide integrity report with human-readable
// recommendations.
func (c *Checker) Report() Report {
	elapsed := 0.0
	if c.sessionStartSet {
		elapsed = c.lastTimestamp - c.sessionStart
	}
	score := c.score()

	var assessment Assessment
	switch {
	case score >= 0.8:
		assessment = AssessmentClean
	case score >= 0.5:
		assessment = AssessmentSuspicious
	default:
		assessment = AssessmentHighlySuspicious
	}

	var recommendations []string
	if c.cheatFlagCount > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Detected %d instances of repeated gaze patterns at speech onset", c.cheatFlagCount))
	}
	maxFreq := 0
	for _, f := range c.clusterFrequencies {
		if f > maxFreq {
			maxFreq = f
		}
	}
	if maxFreq > 0 && float64(maxFreq) > float64(c.totalSpeechOnsets)*0.5 {
		recommendations = append(recommendations, fmt.Sprintf(
			"High concentration of gaze to single location (%d/%d speech onsets)", maxFreq, c.totalSpeechOnsets))
	}
	if score < 0.5 {
		recommendations = append(recommendations,
			"Consider manual review of interview recording for potential integrity issues")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "No significant integrity concerns detected")
	}

	return Report{
		SessionDurationMinutes: elapsed / 60,
		TotalSpeechOnsets:      c.totalSpeechOnsets,
		CheatFlagCount:         c.cheatFlagCount,
		IntegrityScore:         score,
		IntegrityAssessment:    assessment,
		SuspiciousSegments:     append([]SuspiciousSegment(nil), c.suspiciousSegments...),
		GazeClusters:           append([]Cluster(nil), c.clusters...),
		Recommendations:        recommendations,
	}
}

// Reset clears all state for a new session.
func (c *Checker) Reset() {
	*c = Checker{
		cfg:                c.cfg,
		clusterFrequencies: make(map[int]int),
	}
}
