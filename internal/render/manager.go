package render

import (
	"context"
	"log/slog"

	"bisub/internal/config"
	"bisub/internal/ffmpeg"
	"bisub/internal/history"
	"bisub/internal/logging"
	"bisub/internal/media/ffprobe"
	"bisub/internal/track"
)

// Recorder persists job lifecycle events. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, job history.Job) error
	UpdateProgress(ctx context.Context, id string, percent int) error
	Finish(ctx context.Context, id string, outcome history.Outcome) error
}

// Manager supervises burn-in jobs. It holds no per-job state and may run
// several jobs concurrently on distinct outputs.
type Manager struct {
	ffmpegBin  string
	ffprobeBin string
	executor   ffmpeg.Executor
	probe      ffprobe.Prober
	recorder   Recorder
	logger     *slog.Logger
	lockDir    string
	trackOpts  track.Options
	encoder    ffmpeg.Encoder
	bar        *ffmpeg.Bar
	suffix     string
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithExecutor replaces the process executor (used in tests).
func WithExecutor(executor ffmpeg.Executor) Option {
	return func(m *Manager) {
		if executor != nil {
			m.executor = executor
		}
	}
}

// WithProber replaces the geometry prober (used in tests).
func WithProber(probe ffprobe.Prober) Option {
	return func(m *Manager) {
		if probe != nil {
			m.probe = probe
		}
	}
}

// WithRecorder records every job in a history store.
func WithRecorder(recorder Recorder) Option {
	return func(m *Manager) {
		m.recorder = recorder
	}
}

// WithLockDir overrides where per-output locks are kept. Empty disables
// locking.
func WithLockDir(dir string) Option {
	return func(m *Manager) {
		m.lockDir = dir
	}
}

// NewManager builds a manager from configuration.
func NewManager(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Manager, error) {
	trackOpts, err := track.OptionsFromConfig(cfg.Style)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		ffmpegBin:  cfg.FFmpegBinary(),
		ffprobeBin: cfg.FFprobeBinary(),
		executor:   ffmpeg.NewExecutor(),
		probe:      ffprobe.ProbeGeometry,
		logger:     logging.NewComponentLogger(logger, "render"),
		lockDir:    cfg.LockDir(),
		trackOpts:  trackOpts,
		encoder: ffmpeg.Encoder{
			VideoCodec: cfg.Render.VideoCodec,
			CRF:        cfg.Render.CRF,
			Preset:     cfg.Render.Preset,
			AudioCodec: cfg.Render.AudioCodec,
		},
		bar:    ffmpeg.NewBar(cfg.Render.BackgroundBar, cfg.Render.BarHeightRatio, cfg.Render.BarOpacity),
		suffix: cfg.Render.OutputSuffix,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Handle tracks a job started with Start.
type Handle struct {
	state *jobState
	done  chan struct{}
	err   error
}

// Start runs Embed on its own goroutine.
func (m *Manager) Start(ctx context.Context, req Request, cb Callbacks) *Handle {
	h := &Handle{state: newJobState(), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = m.embed(ctx, req, cb, h.state)
	}()
	return h
}

// Wait blocks until the job finishes and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done is closed when the job finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return h.state.snapshot().State
}

// Job returns a snapshot of the job.
func (h *Handle) Job() Job {
	return h.state.snapshot()
}
