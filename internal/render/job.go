package render

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"bisub/internal/cue"
)

// State is the lifecycle position of a render job.
type State string

const (
	StateIdle       State = "idle"
	StateConverting State = "converting"
	StateRendering  State = "rendering"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Request describes one burn-in.
type Request struct {
	Video string
	Cues  []cue.Cue
	// CuePath is informational and recorded in history.
	CuePath string
	// Output defaults to <video stem><suffix>.mp4 beside the video.
	Output string
}

// Callbacks receive job notifications. Nil members are skipped. Progress
// values never decrease and stay at or below 99 until the final 100.
type Callbacks struct {
	OnProgress func(percent int)
	OnDone     func(outputPath string)
	OnError    func(err error)
}

func (c Callbacks) progress(percent int) {
	if c.OnProgress != nil {
		c.OnProgress(percent)
	}
}

func (c Callbacks) done(path string) {
	if c.OnDone != nil {
		c.OnDone(path)
	}
}

func (c Callbacks) fail(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// Job is a snapshot of one render.
type Job struct {
	ID           string
	Video        string
	Output       string
	TrackPath    string
	TotalSeconds float64
	State        State
	Progress     int
	Retryable    bool
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// jobState guards a Job shared between the supervising goroutine and Handle
// readers.
type jobState struct {
	mu  sync.Mutex
	job Job
}

func newJobState() *jobState {
	return &jobState{job: Job{ID: uuid.NewString(), State: StateIdle}}
}

func (s *jobState) snapshot() Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

func (s *jobState) update(fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.job)
}

func (s *jobState) id() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job.ID
}
