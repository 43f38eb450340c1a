// Package main hosts the bisub CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, builds the
// structured logger, and hands typed requests to the internal packages:
// probe reads geometry, track writes a styled subtitle file, embed burns it
// into a new video with live progress, preview extracts one styled frame,
// history lists recorded jobs, and check reports tool and directory health.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
