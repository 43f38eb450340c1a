// Package services defines shared utilities consumed by the probe, track,
// render and preview components.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Failure type and Wrap helper that
//     carry exit codes and retry intent to callers.
//
// Use these helpers when wiring new pipeline logic so failures stay
// classifiable with errors.Is across the whole tool.
package services
