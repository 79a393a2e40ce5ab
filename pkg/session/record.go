package session

import (
	"sync"
	"time"
)

// FrameSnapshot is one logged pipeline result, keyed by seconds elapsed
// since the session's first frame.
type FrameSnapshot struct {
	Elapsed float64      `json:"elapsed"`
	Metrics FrameMetrics `json:"metrics"`
}

// Turn is one transcript entry.
type Turn struct {
	Role string    `json:"role"` // "user" or "interviewer"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Record is the append-only log of a session: every frame's metrics and
// the conversation transcript. Frame processing is single-threaded, but
// analytics snapshots can be requested from other connections, so the
// record is guarded.
type Record struct {
	mu         sync.Mutex
	frames     []FrameSnapshot
	transcript []Turn
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{}
}

// LogFrame appends one frame's metrics at the given session offset.
func (r *Record) LogFrame(elapsed float64, m FrameMetrics) {
	r.mu.Lock()
	r.frames = append(r.frames, FrameSnapshot{Elapsed: elapsed, Metrics: m})
	r.mu.Unlock()
}

// LogTurn appends one transcript entry.
func (r *Record) LogTurn(role, text string) {
	if text == "" {
		return
	}
	r.mu.Lock()
	r.transcript = append(r.transcript, Turn{Role: role, Text: text, At: time.Now()})
	r.mu.Unlock()
}

// Frames returns a copy of the logged frame snapshots.
func (r *Record) Frames() []FrameSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FrameSnapshot(nil), r.frames...)
}

// Transcript returns a copy of the conversation transcript.
func (r *Record) Transcript() []Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Turn(nil), r.transcript...)
}
