// Package ffmpeg builds and runs ffmpeg invocations for subtitle burn-in and
// frame extraction.
//
// BurnSpec and FrameSpec produce typed argument lists; FilterChain renders
// the -vf graph (optional background bar plus the ass filter). Tracker
// parses "Duration:" and "time=" markers into monotonic progress. The
// Executor streams merged process output line by line and is swapped for a
// stub in tests.
package ffmpeg
