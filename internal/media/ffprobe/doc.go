// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output for the first video stream and container
//   - Geometry: frame width, height and duration used to size subtitles
//
// Entry points:
//   - Inspect: executes ffprobe and returns the parsed Result
//   - Probe: Inspect plus Geometry extraction, failures marked ErrProbe
//   - ProbeGeometry: Probe that logs failures and falls back to 1920x1080
package ffprobe
