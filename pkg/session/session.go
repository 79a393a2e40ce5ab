// Package session ties the behavioral pipeline together. A Session owns
// one smoother, the four analyzers, the frame-metrics engine, and the
// append-only record of everything they produce. Sessions are fully
// isolated from each other: no analyzer state is shared, so one
// candidate's baselines can never leak into another's.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/gesture"
	"github.com/mirrorlabs/interview-mirror/pkg/integrity"
	"github.com/mirrorlabs/interview-mirror/pkg/landmark"
	"github.com/mirrorlabs/interview-mirror/pkg/posture"
	"github.com/mirrorlabs/interview-mirror/pkg/smoothing"
	"github.com/mirrorlabs/interview-mirror/pkg/stress"
	"github.com/mirrorlabs/interview-mirror/pkg/vision"
)

// Config aggregates the per-analyzer tuning for one session.
type Config struct {
	Smoothing smoothing.Config
	Posture   posture.Config
	Stress    stress.Config
	Gesture   gesture.Config
	Integrity integrity.Config
	Vision    vision.Config
}

// DefaultConfig returns the recommended tuning for every stage.
func DefaultConfig() Config {
	return Config{
		Smoothing: smoothing.DefaultConfig(),
		Posture:   posture.DefaultConfig(),
		Stress:    stress.DefaultConfig(),
		Gesture:   gesture.DefaultConfig(),
		Integrity: integrity.DefaultConfig(),
		Vision:    vision.DefaultConfig(),
	}
}

// FrameInput is one frame of landmarks plus the auxiliary speech flags
// supplied by the surrounding service.
type FrameInput struct {
	Frame       landmark.Frame
	IsSpeaking  bool
	SpeechOnset bool
}

// FrameMetrics is the combined per-frame output of every stage.
type FrameMetrics struct {
	Vision    vision.Metrics    `json:"vision"`
	Posture   posture.Metrics   `json:"posture"`
	Stress    stress.Metrics    `json:"stress"`
	Gesture   gesture.Metrics   `json:"gesture"`
	Integrity integrity.Metrics `json:"integrity"`
	Timestamp float64           `json:"timestamp"`
}

// Summaries bundles every analyzer's session-wide report.
type Summaries struct {
	Posture   posture.Summary  `json:"posture"`
	Stress    stress.Summary   `json:"stress"`
	Gesture   gesture.Summary  `json:"gesture"`
	Integrity integrity.Report `json:"integrity"`
}

// Session is one interview interaction. Frame processing is synchronous
// and single-threaded per session; frames must arrive in non-decreasing
// timestamp order.
type Session struct {
	ID        string
	CreatedAt time.Time

	cfg            Config
	smoother       *smoothing.Smoother
	postureAnlz    *posture.Analyzer
	stressAnlz     *stress.Analyzer
	gestureAnlz    *gesture.Analyzer
	integrityChk   *integrity.Checker
	visionEngine   *vision.Engine
	record         *Record
	firstTimestamp float64
	started        bool
}

// New creates a session with a fresh pipeline.
func New(cfg Config) *Session {
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		cfg:          cfg,
		smoother:     smoothing.NewSmoother(cfg.Smoothing),
		postureAnlz:  posture.NewAnalyzer(cfg.Posture),
		stressAnlz:   stress.NewAnalyzer(cfg.Stress),
		gestureAnlz:  gesture.NewAnalyzer(cfg.Gesture),
		integrityChk: integrity.NewChecker(cfg.Integrity),
		visionEngine: vision.NewEngine(cfg.Vision),
		record:       NewRecord(),
	}
}

// ProcessFrame runs one frame through smoothing and every analyzer, logs
// the result into the session record, and returns the combined metrics.
func (s *Session) ProcessFrame(in FrameInput) FrameMetrics {
	if !s.started {
		s.firstTimestamp = in.Frame.Timestamp
		s.started = true
	}

	smoothed := s.smoother.Smooth(in.Frame)

	postureMetrics := s.postureAnlz.Analyze(smoothed.Pose, smoothed.Timestamp)
	stressMetrics := s.stressAnlz.Analyze(smoothed.Face, in.IsSpeaking, smoothed.Timestamp)

	var nose *landmark.Landmark
	shoulderY := 0.5
	if len(smoothed.Pose) >= landmark.PosePoints {
		n := smoothed.Pose[landmark.PoseNose]
		nose = &n
		shoulderY = (smoothed.Pose[landmark.PoseLeftShoulder].Y + smoothed.Pose[landmark.PoseRightShoulder].Y) / 2
	}
	gestureMetrics := s.gestureAnlz.Analyze(smoothed.LeftHand, smoothed.RightHand, nose, shoulderY, smoothed.Timestamp)

	integrityMetrics := s.integrityChk.Analyze(smoothed.Face, in.SpeechOnset, smoothed.Timestamp)
	visionMetrics := s.visionEngine.AnalyzeFrame(smoothed.Face)

	metrics := FrameMetrics{
		Vision:    visionMetrics,
		Posture:   postureMetrics,
		Stress:    stressMetrics,
		Gesture:   gestureMetrics,
		Integrity: integrityMetrics,
		Timestamp: smoothed.Timestamp,
	}

	s.record.LogFrame(smoothed.Timestamp-s.firstTimestamp, metrics)
	return metrics
}

// LogInteraction appends a user/interviewer exchange to the transcript.
func (s *Session) LogInteraction(userText, replyText string) {
	s.record.LogTurn("user", userText)
	s.record.LogTurn("interviewer", replyText)
}

// Analytics computes the on-demand session analytics snapshot.
func (s *Session) Analytics() Analytics {
	return s.record.Analytics(s.integrityChk.Report(), s.cfg.Vision.LowEyeContact)
}

// Summaries returns every analyzer's session-wide report.
func (s *Session) Summaries() Summaries {
	return Summaries{
		Posture:   s.postureAnlz.Summary(),
		Stress:    s.stressAnlz.Summary(),
		Gesture:   s.gestureAnlz.Summary(),
		Integrity: s.integrityChk.Report(),
	}
}

// Reset clears every stage for reuse of the same session identity.
func (s *Session) Reset() {
	s.smoother.Reset()
	s.postureAnlz.Reset()
	s.stressAnlz.Reset()
	s.gestureAnlz.Reset()
	s.integrityChk.Reset()
	s.visionEngine.Reset()
	s.record = NewRecord()
	s.started = false
	log.Debug("session reset", "id", s.ID)
}

// Manager tracks live sessions. Each session's pipeline is single
// threaded, but sessions start and end from different connections, so
// the registry itself is guarded.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
}

// NewManager creates a session registry using cfg for new sessions.
func NewManager(cfg Config) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Start creates and registers a new session.
func (m *Manager) Start() *Session {
	s := New(m.cfg)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	log.Info("session started", "id", s.ID)
	return s
}

// Get returns a live session, or nil if unknown.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// End removes a session from the registry and releases its state.
// Returns the session's final analytics, or nil if unknown.
func (m *Manager) End(id string) *Analytics {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	report := s.Analytics()
	log.Info("session ended", "id", id, "duration_sec", report.DurationSeconds)
	return &report
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
