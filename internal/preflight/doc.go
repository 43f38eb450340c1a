// Package preflight provides readiness checks for the tools and filesystem
// paths bisub depends on.
//
// The CLI "bisub check" command runs RunAll and CheckSystemDeps to display
// health, and the embed and preview commands call CheckOutputDir before
// launching ffmpeg so an unwritable destination fails before encoding.
package preflight
