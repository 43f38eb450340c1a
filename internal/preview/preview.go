package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bisub/internal/config"
	"bisub/internal/cue"
	"bisub/internal/ffmpeg"
	"bisub/internal/fileutil"
	"bisub/internal/history"
	"bisub/internal/logging"
	"bisub/internal/media/ffprobe"
	"bisub/internal/services"
	"bisub/internal/style"
	"bisub/internal/textlayout"
	"bisub/internal/track"
)

const (
	stagePreview     = "preview"
	defaultTimeout   = 20 * time.Second
	defaultCueHold   = 5 * time.Second
	defaultSeekDelta = 500 * time.Millisecond
	imageSuffix      = "_preview"
	imageExt         = ".png"
)

// Recorder persists preview outcomes. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, job history.Job) error
	Finish(ctx context.Context, id string, outcome history.Outcome) error
}

// Request describes one preview frame.
type Request struct {
	Video string
	Cues  []cue.Cue
	// CuePath is informational and recorded in history.
	CuePath string
	// Output defaults to <video stem>_preview.png beside the video.
	Output string
}

// Result describes a rendered preview frame.
type Result struct {
	Image    string
	Cue      cue.Cue
	Seek     time.Duration
	Geometry ffprobe.Geometry
}

// Generator renders single styled frames.
type Generator struct {
	ffmpegBin  string
	ffprobeBin string
	executor   ffmpeg.Executor
	probe      ffprobe.Prober
	recorder   Recorder
	logger     *slog.Logger
	trackOpts  track.Options
	bar        *ffmpeg.Bar
	timeout    time.Duration
	cueHold    time.Duration
	seekDelta  time.Duration
}

// Option configures optional Generator behavior.
type Option func(*Generator)

// WithExecutor replaces the process executor (used in tests).
func WithExecutor(executor ffmpeg.Executor) Option {
	return func(g *Generator) {
		if executor != nil {
			g.executor = executor
		}
	}
}

// WithProber replaces the geometry prober (used in tests).
func WithProber(probe ffprobe.Prober) Option {
	return func(g *Generator) {
		if probe != nil {
			g.probe = probe
		}
	}
}

// WithRecorder records every preview in a history store.
func WithRecorder(recorder Recorder) Option {
	return func(g *Generator) {
		g.recorder = recorder
	}
}

// WithTimeout bounds the ffmpeg run.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// NewGenerator builds a generator from configuration.
func NewGenerator(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Generator, error) {
	trackOpts, err := track.OptionsFromConfig(cfg.Style)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		ffmpegBin:  cfg.FFmpegBinary(),
		ffprobeBin: cfg.FFprobeBinary(),
		executor:   ffmpeg.NewExecutor(),
		probe:      ffprobe.ProbeGeometry,
		logger:     logging.NewComponentLogger(logger, "preview"),
		trackOpts:  trackOpts,
		bar:        ffmpeg.NewBar(cfg.Render.BackgroundBar, cfg.Render.BarHeightRatio, cfg.Render.BarOpacity),
		timeout:    durationOr(time.Duration(cfg.Preview.TimeoutSeconds)*time.Second, defaultTimeout),
		cueHold:    durationOr(time.Duration(cfg.Preview.CueHoldMillis)*time.Millisecond, defaultCueHold),
		seekDelta:  durationOr(time.Duration(cfg.Preview.SeekOffsetMs)*time.Millisecond, defaultSeekDelta),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate renders a preview frame and reports success. Failures, including
// panics, are logged and never returned.
func (g *Generator) Generate(ctx context.Context, req Request) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(g.logger, "preview panicked", "preview_failed",
				logging.String("panic", fmt.Sprint(r)),
				logging.String("video", req.Video),
			)
			ok = false
		}
	}()
	_, err := g.Render(ctx, req)
	return err == nil
}

// Render renders a preview frame. The temporary track is always removed and
// a partial image is removed on failure.
func (g *Generator) Render(ctx context.Context, req Request) (Result, error) {
	id := uuid.NewString()
	ctx = services.WithJobID(ctx, id)
	ctx = services.WithStage(ctx, stagePreview)
	logger := logging.WithContext(ctx, g.logger)

	result, err := g.render(ctx, logger, id, req)
	if err != nil {
		if result.Image != "" {
			if rmErr := fileutil.RemoveIfExists(result.Image); rmErr != nil {
				logger.Debug("failed to remove partial preview", logging.Error(rmErr))
			}
		}
		g.recordFinish(ctx, logger, id, history.Outcome{
			Status:       history.StatusFailed,
			ErrorMessage: err.Error(),
			ExitCode:     services.ExitCode(err),
		})
		logging.ErrorWithContext(logger, "preview failed", "preview_failed",
			logging.Error(err),
			logging.String("video", req.Video),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return Result{}, err
	}

	size, _ := fileutil.Size(result.Image)
	g.recordFinish(ctx, logger, id, history.Outcome{
		Status:          history.StatusDone,
		ProgressPercent: 100,
		OutputBytes:     size,
	})
	logger.Info("preview ready",
		logging.String(logging.FieldEventType, "preview_complete"),
		logging.String("image", result.Image),
		logging.String("seek", ffmpeg.FormatSeconds(result.Seek)),
	)
	return result, nil
}

func (g *Generator) render(ctx context.Context, logger *slog.Logger, id string, req Request) (Result, error) {
	video, err := fileutil.Absolute(req.Video)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stagePreview, "resolve", "video path", err)
	}
	image := req.Output
	if strings.TrimSpace(image) == "" {
		image = fileutil.SiblingPath(video, imageSuffix, imageExt)
	}
	if image, err = fileutil.Absolute(image); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stagePreview, "resolve", "image path", err)
	}

	selected, ok := SelectCue(req.Cues)
	if !ok {
		return Result{}, services.Wrap(services.ErrTrackBuild, stagePreview, "select", "", track.ErrNoCues)
	}

	geometry := g.probe(ctx, g.ffprobeBin, video, logger)
	result := Result{
		Cue:      selected,
		Seek:     SeekTarget(selected.Start, g.seekDelta, geometry.DurationSeconds),
		Geometry: geometry,
	}
	g.recordBegin(ctx, logger, id, video, image, req, geometry)

	trackPath := track.TempPath(filepath.Dir(video))
	defer func() {
		if err := track.Remove(trackPath); err != nil {
			logging.WarnWithContext(logger, "failed to remove temporary track", "cleanup_failed",
				logging.String("track", trackPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "a stray subtitle file was left beside the video"),
			)
		}
	}()

	held := Hold(selected, g.cueHold)
	if _, err := track.BuildFile(trackPath, []cue.Cue{held}, geometry, g.trackOpts); err != nil {
		return result, err
	}

	spec := ffmpeg.FrameSpec{
		Input:  video,
		Output: image,
		Seek:   result.Seek,
		Filters: ffmpeg.FilterChain{
			Bar:       g.bar,
			TrackName: filepath.Base(trackPath),
		},
	}
	command := ffmpeg.Command{Binary: g.ffmpegBin, Args: spec.Build(), Dir: filepath.Dir(video)}
	logger.Debug("launching ffmpeg", logging.String("command", command.String()))

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	var lastLine string
	runErr := g.executor.Run(runCtx, command, func(line string) { lastLine = line })

	if errors.Is(runErr, ffmpeg.ErrStart) {
		return result, services.Wrap(services.ErrProcessLaunch, stagePreview, "ffmpeg", g.ffmpegBin, runErr)
	}
	// The image path is only claimed once ffmpeg may have written to it.
	result.Image = image
	switch {
	case runErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return result, services.Wrap(services.ErrTimeout, stagePreview, "ffmpeg",
			fmt.Sprintf("no frame after %s", g.timeout), runCtx.Err())
	case runErr != nil:
		if lastLine != "" {
			runErr = fmt.Errorf("%w: %s", runErr, lastLine)
		}
		return result, services.ProcessExit(stagePreview, "ffmpeg", ffmpeg.ExitCode(runErr), runErr)
	case !fileutil.NonEmpty(image):
		return result, services.EmptyOutput(stagePreview, "ffmpeg", image)
	}
	return result, nil
}

// SelectCue returns the cue with the greatest visual weight. The first cue
// wins ties.
func SelectCue(cues []cue.Cue) (cue.Cue, bool) {
	best := -1
	bestWeight := -1
	for i, c := range cues {
		weight := textlayout.VisualWeight(style.StripMarkup(c.Text))
		if weight > bestWeight {
			best, bestWeight = i, weight
		}
	}
	if best < 0 {
		return cue.Cue{}, false
	}
	return cues[best], true
}

// Hold returns a copy of c timed from zero for hold. Seeking before the input
// resets the output timeline, so the cue must start at zero to be visible.
func Hold(c cue.Cue, hold time.Duration) cue.Cue {
	held := c
	held.Index = 1
	held.Start = 0
	held.End = hold
	return held
}

// SeekTarget is start+delta, or half the duration when that lands at or past
// a known end.
func SeekTarget(start, delta time.Duration, durationSeconds float64) time.Duration {
	seek := start + delta
	if durationSeconds > 0 && seek.Seconds() >= durationSeconds {
		return time.Duration(durationSeconds / 2 * float64(time.Second))
	}
	return seek
}

func (g *Generator) recordBegin(ctx context.Context, logger *slog.Logger, id, video, image string, req Request, geometry ffprobe.Geometry) {
	if g.recorder == nil {
		return
	}
	err := g.recorder.Begin(ctx, history.Job{
		ID:              id,
		Kind:            history.KindPreview,
		InputPath:       video,
		CuePath:         req.CuePath,
		OutputPath:      image,
		Width:           geometry.Width,
		Height:          geometry.Height,
		DurationSeconds: geometry.DurationSeconds,
		CueCount:        len(req.Cues),
	})
	if err != nil {
		logger.Debug("failed to record preview start", logging.Error(err))
	}
}

func (g *Generator) recordFinish(ctx context.Context, logger *slog.Logger, id string, outcome history.Outcome) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Finish(context.WithoutCancel(ctx), id, outcome); err != nil && !errors.Is(err, history.ErrNotFound) {
		logger.Debug("failed to record preview outcome", logging.Error(err))
	}
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
