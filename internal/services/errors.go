package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProbe marks ffprobe failures. Probe callers absorb it and fall back
	// to default geometry.
	ErrProbe = errors.New("probe failed")
	// ErrTrackBuild marks failures while generating or writing a styled track.
	ErrTrackBuild = errors.New("track build failed")
	// ErrProcessLaunch marks an external process that could not be started.
	ErrProcessLaunch = errors.New("process launch failed")
	// ErrProcessExit marks an external process that exited non-zero.
	ErrProcessExit = errors.New("process exited with error")
	// ErrEmptyOutput marks a successful exit that produced no usable output.
	ErrEmptyOutput = errors.New("empty output")
	ErrTimeout     = errors.New("timeout")
	// ErrBusy marks an output path already claimed by another job.
	ErrBusy       = errors.New("output busy")
	ErrValidation = errors.New("validation error")
)

// Failure is the structured error returned by render and preview operations.
// errors.Is matches both the marker and the wrapped cause.
type Failure struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	// ExitCode is the external process exit status, or -1 when not applicable.
	ExitCode  int
	Retryable bool
	Err       error
}

func (f *Failure) Error() string {
	detail := buildDetail(f.Stage, f.Operation, f.Message)
	marker := "failure"
	if f.Marker != nil {
		marker = f.Marker.Error()
	}
	var sb strings.Builder
	sb.WriteString(marker)
	sb.WriteString(": ")
	sb.WriteString(detail)
	if f.ExitCode >= 0 {
		fmt.Fprintf(&sb, " (exit code %d)", f.ExitCode)
	}
	if f.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(f.Err.Error())
	}
	return sb.String()
}

func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if f.Marker != nil {
		errs = append(errs, f.Marker)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrValidation
	}
	return &Failure{
		Marker:    marker,
		Stage:     stage,
		Operation: operation,
		Message:   message,
		ExitCode:  -1,
		Err:       err,
	}
}

// ProcessExit reports a non-zero external process exit.
func ProcessExit(stage, operation string, exitCode int, err error) error {
	return &Failure{
		Marker:    ErrProcessExit,
		Stage:     stage,
		Operation: operation,
		Message:   "compositing tool reported failure",
		ExitCode:  exitCode,
		Err:       err,
	}
}

// EmptyOutput reports a zero-exit run whose output is missing or empty. The
// failure is flagged retryable so callers may re-run the job once.
func EmptyOutput(stage, operation, path string) error {
	return &Failure{
		Marker:    ErrEmptyOutput,
		Stage:     stage,
		Operation: operation,
		Message:   fmt.Sprintf("output %q missing or zero bytes", path),
		ExitCode:  0,
		Retryable: true,
	}
}

// ExitCode returns the process exit code carried by err, or -1.
func ExitCode(err error) int {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.ExitCode
	}
	return -1
}

// IsRetryable reports whether err is flagged as worth a retry by the caller.
func IsRetryable(err error) bool {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Retryable
	}
	return false
}

// Hint returns a short operator-facing suggestion for a failure marker.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrProcessLaunch):
		return "check that ffmpeg is installed and the configured path is executable"
	case errors.Is(err, ErrProcessExit):
		return "inspect the ffmpeg output above for the failing filter or codec"
	case errors.Is(err, ErrEmptyOutput):
		return "retry the job; the encoder exited cleanly but wrote nothing"
	case errors.Is(err, ErrTrackBuild):
		return "check the subtitle file and that the video directory is writable"
	case errors.Is(err, ErrTimeout):
		return "the preview frame took too long; try a shorter video or a larger timeout"
	case errors.Is(err, ErrBusy):
		return "another job is writing the same output; wait or choose another path"
	case errors.Is(err, ErrValidation):
		return "check the command arguments"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
