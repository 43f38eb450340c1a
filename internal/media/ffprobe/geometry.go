package ffprobe

import (
	"context"
	"fmt"
	"log/slog"

	"bisub/internal/logging"
	"bisub/internal/services"
)

// Geometry is the frame size and duration of a video. DurationSeconds is 0
// when unknown.
type Geometry struct {
	Width           int
	Height          int
	DurationSeconds float64
}

// DefaultGeometry is used whenever probing fails.
var DefaultGeometry = Geometry{Width: 1920, Height: 1080}

// Portrait reports whether the frame is taller than it is wide.
func (g Geometry) Portrait() bool {
	return g.Height > g.Width
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

var inspect = Inspect

// Prober resolves geometry without failing. ProbeGeometry is the production
// implementation.
type Prober func(ctx context.Context, binary, path string, logger *slog.Logger) Geometry

// Probe runs ffprobe once and returns the video geometry. Failures are wrapped
// with services.ErrProbe.
func Probe(ctx context.Context, binary, path string) (Geometry, error) {
	result, err := inspect(ctx, binary, path)
	if err != nil {
		return Geometry{}, services.Wrap(services.ErrProbe, "probe", "ffprobe", path, err)
	}
	geometry, err := result.Geometry()
	if err != nil {
		return Geometry{}, services.Wrap(services.ErrProbe, "probe", "parse", path, err)
	}
	return geometry, nil
}

// ProbeGeometry never fails: probe errors are logged and DefaultGeometry is
// returned.
func ProbeGeometry(ctx context.Context, binary, path string, logger *slog.Logger) Geometry {
	geometry, err := Probe(ctx, binary, path)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "video probe failed; using default geometry", "probe_fallback",
			logging.String("video", path),
			logging.String("resolution", DefaultGeometry.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ffprobe is installed and the file is a readable video"),
			logging.String(logging.FieldImpact, "subtitles are sized for 1920x1080 and progress relies on ffmpeg output"),
		)
		return DefaultGeometry
	}
	return geometry
}
