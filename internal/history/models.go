package history

import "time"

// Kind distinguishes full renders from preview frames.
type Kind string

const (
	KindRender  Kind = "render"
	KindPreview Kind = "preview"
)

// Status is the lifecycle state of a recorded job.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one recorded render or preview.
type Job struct {
	ID              string
	Kind            Kind
	InputPath       string
	CuePath         string
	OutputPath      string
	Status          Status
	ProgressPercent int
	Width           int
	Height          int
	DurationSeconds float64
	CueCount        int
	ErrorMessage    string
	// ExitCode is -1 when no process exit status applies.
	ExitCode    int
	Retryable   bool
	OutputBytes int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinishedAt  time.Time
}

// Outcome is the terminal state recorded by Finish.
type Outcome struct {
	Status          Status
	ProgressPercent int
	ErrorMessage    string
	ExitCode        int
	Retryable       bool
	OutputBytes     int64
}

// Elapsed returns the wall time of a finished job, or time since creation
// for a running one.
func (j Job) Elapsed(now time.Time) time.Duration {
	if !j.FinishedAt.IsZero() {
		return j.FinishedAt.Sub(j.CreatedAt)
	}
	return now.Sub(j.CreatedAt)
}
