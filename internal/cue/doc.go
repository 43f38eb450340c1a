// Package cue holds the timed-text cue model and loads SRT files into it.
package cue
