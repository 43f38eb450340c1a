package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"bisub/internal/cue"
	"bisub/internal/ffmpeg"
	"bisub/internal/fileutil"
	"bisub/internal/history"
	"bisub/internal/logging"
	"bisub/internal/media/ffprobe"
	"bisub/internal/services"
	"bisub/internal/track"
)

const (
	outputExt   = ".mp4"
	tailLines   = 8
	stageRender = "render"
)

// Embed burns req.Cues into req.Video and blocks until the compositing
// process exits. Exactly one of OnDone or OnError is called, after the
// temporary track has been removed. The returned error matches the one passed
// to OnError.
func (m *Manager) Embed(ctx context.Context, req Request, cb Callbacks) error {
	return m.embed(ctx, req, cb, newJobState())
}

func (m *Manager) embed(ctx context.Context, req Request, cb Callbacks, state *jobState) error {
	ctx = services.WithJobID(ctx, state.id())
	ctx = services.WithStage(ctx, stageRender)
	logger := logging.WithContext(ctx, m.logger)

	video, output, err := m.resolvePaths(req)
	if err != nil {
		return m.fail(ctx, logger, state, cb, err, false)
	}
	state.update(func(j *Job) {
		j.Video = video
		j.Output = output
		j.StartedAt = time.Now()
	})

	unlock, err := m.lockOutput(output)
	if err != nil {
		return m.fail(ctx, logger, state, cb, err, false)
	}
	defer unlock()

	state.update(func(j *Job) { j.State = StateConverting })
	geometry := m.probe(ctx, m.ffprobeBin, video, logger)

	trackPath := track.TempPath(filepath.Dir(video))
	state.update(func(j *Job) {
		j.TrackPath = trackPath
		j.TotalSeconds = geometry.DurationSeconds
	})
	defer removeTrack(trackPath, logger)

	m.recordBegin(ctx, logger, state.snapshot(), req, geometry)

	if err := buildTrack(trackPath, req.Cues, geometry, m.trackOpts); err != nil {
		removeTrack(trackPath, logger)
		return m.fail(ctx, logger, state, cb, err, true)
	}

	logger.Info("render started",
		logging.String(logging.FieldEventType, "render_start"),
		logging.String("video", video),
		logging.String("output", output),
		logging.String("resolution", geometry.String()),
		logging.Int("cue_count", len(req.Cues)),
	)
	state.update(func(j *Job) { j.State = StateRendering })

	runErr := m.run(ctx, logger, state, cb, video, output, trackPath, geometry)
	if runErr != nil {
		// A launch failure never touched the output, so whatever is there
		// belongs to someone else.
		if errors.Is(runErr, services.ErrProcessLaunch) {
			removeTrack(trackPath, logger)
			return m.fail(ctx, logger, state, cb, runErr, true)
		}
		if err := fileutil.RemoveIfExists(output); err != nil {
			logging.WarnWithContext(logger, "failed to remove partial output", "cleanup_failed",
				logging.String("output", output),
				logging.Error(err),
				logging.String(logging.FieldImpact, "a partial video was left on disk"),
			)
		}
		removeTrack(trackPath, logger)
		return m.fail(ctx, logger, state, cb, runErr, true)
	}

	removeTrack(trackPath, logger)
	size, _ := fileutil.Size(output)
	state.update(func(j *Job) {
		j.State = StateDone
		j.Progress = 100
		j.FinishedAt = time.Now()
	})
	cb.progress(100)
	m.recordFinish(ctx, logger, state.id(), history.Outcome{
		Status:          history.StatusDone,
		ProgressPercent: 100,
		OutputBytes:     size,
	})
	logger.Info("render complete",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", output),
		logging.Int64("output_bytes", size),
	)
	cb.done(output)
	return nil
}

// run launches ffmpeg in the track directory and classifies the outcome.
func (m *Manager) run(ctx context.Context, logger *slog.Logger, state *jobState, cb Callbacks, video, output, trackPath string, geometry ffprobe.Geometry) error {
	spec := ffmpeg.BurnSpec{
		Input:  video,
		Output: output,
		Filters: ffmpeg.FilterChain{
			Bar:       m.bar,
			TrackName: filepath.Base(trackPath),
		},
		Encoder: m.encoder,
	}
	command := ffmpeg.Command{Binary: m.ffmpegBin, Args: spec.Build(), Dir: filepath.Dir(trackPath)}
	logger.Debug("launching ffmpeg", logging.String("command", command.String()))

	tracker := ffmpeg.NewTracker(geometry.DurationSeconds)
	sampler := logging.NewProgressSampler(10)
	tail := make([]string, 0, tailLines)
	jobID := state.id()

	err := m.executor.Run(ctx, command, func(line string) {
		percent, ok := tracker.Feed(line)
		if !ok {
			if !strings.HasPrefix(strings.TrimSpace(line), "frame=") {
				if len(tail) == tailLines {
					tail = tail[1:]
				}
				tail = append(tail, line)
			}
			return
		}
		state.update(func(j *Job) {
			j.Progress = percent
			j.TotalSeconds = tracker.Total()
		})
		cb.progress(percent)
		if sampler.ShouldLog(percent) {
			logger.Info("render progress",
				logging.String(logging.FieldEventType, "render_progress"),
				logging.Int(logging.FieldProgressPercent, percent),
			)
			if m.recorder != nil {
				if recErr := m.recorder.UpdateProgress(ctx, jobID, percent); recErr != nil {
					logger.Debug("history progress update failed", logging.Error(recErr))
				}
			}
		}
	})

	switch {
	case errors.Is(err, ffmpeg.ErrStart):
		return services.Wrap(services.ErrProcessLaunch, stageRender, "ffmpeg", m.ffmpegBin, err)
	case err != nil && ctx.Err() != nil:
		return services.Wrap(services.ErrProcessExit, stageRender, "ffmpeg", "cancelled", errors.Join(ctx.Err(), err))
	case err != nil:
		if len(tail) > 0 {
			err = fmt.Errorf("%w\n%s", err, strings.Join(tail, "\n"))
		}
		return services.ProcessExit(stageRender, "ffmpeg", ffmpeg.ExitCode(err), err)
	case !fileutil.NonEmpty(output):
		return services.EmptyOutput(stageRender, "ffmpeg", output)
	}
	return nil
}

func (m *Manager) resolvePaths(req Request) (string, string, error) {
	video, err := fileutil.Absolute(req.Video)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, stageRender, "resolve", "video path", err)
	}
	output := req.Output
	if strings.TrimSpace(output) == "" {
		output = fileutil.SiblingPath(video, m.suffix, outputExt)
	}
	output, err = fileutil.Absolute(output)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, stageRender, "resolve", "output path", err)
	}
	if output == video {
		return "", "", services.Wrap(services.ErrValidation, stageRender, "resolve",
			"output path must differ from the input video", nil)
	}
	return video, output, nil
}

// buildTrack writes the styled track and converts a panic during styling
// into a track-build failure.
func buildTrack(path string, cues []cue.Cue, geometry ffprobe.Geometry, opts track.Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = services.Wrap(services.ErrTrackBuild, stageRender, "build", "panic while styling cues", fmt.Errorf("%v", r))
		}
	}()
	_, err = track.BuildFile(path, cues, geometry, opts)
	return err
}

func removeTrack(path string, logger *slog.Logger) {
	if err := track.Remove(path); err != nil {
		logging.WarnWithContext(logger, "failed to remove temporary track", "cleanup_failed",
			logging.String("track", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "a stray subtitle file was left beside the video"),
		)
	}
}

func (m *Manager) fail(ctx context.Context, logger *slog.Logger, state *jobState, cb Callbacks, err error, recorded bool) error {
	retryable := services.IsRetryable(err)
	snapshot := state.snapshot()
	state.update(func(j *Job) {
		j.State = StateFailed
		j.Err = err
		j.Retryable = retryable
		j.FinishedAt = time.Now()
	})
	if recorded {
		m.recordFinish(ctx, logger, snapshot.ID, history.Outcome{
			Status:          history.StatusFailed,
			ProgressPercent: snapshot.Progress,
			ErrorMessage:    err.Error(),
			ExitCode:        services.ExitCode(err),
			Retryable:       retryable,
		})
	}
	logging.ErrorWithContext(logger, "render failed", "render_failed",
		logging.Error(err),
		logging.Int("exit_code", services.ExitCode(err)),
		logging.Bool("retryable", retryable),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
	)
	cb.fail(err)
	return err
}

func (m *Manager) recordBegin(ctx context.Context, logger *slog.Logger, job Job, req Request, geometry ffprobe.Geometry) {
	if m.recorder == nil {
		return
	}
	err := m.recorder.Begin(ctx, history.Job{
		ID:              job.ID,
		Kind:            history.KindRender,
		InputPath:       job.Video,
		CuePath:         req.CuePath,
		OutputPath:      job.Output,
		Width:           geometry.Width,
		Height:          geometry.Height,
		DurationSeconds: geometry.DurationSeconds,
		CueCount:        len(req.Cues),
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record render start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this render will be missing from history"),
		)
	}
}

func (m *Manager) recordFinish(ctx context.Context, logger *slog.Logger, id string, outcome history.Outcome) {
	if m.recorder == nil {
		return
	}
	// Record even when the job context was cancelled.
	if err := m.recorder.Finish(context.WithoutCancel(ctx), id, outcome); err != nil {
		logging.WarnWithContext(logger, "failed to record render outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows this render as running"),
		)
	}
}
