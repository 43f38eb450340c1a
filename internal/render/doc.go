// Package render supervises the ffmpeg process that burns a styled subtitle
// track into a video.
//
// A Manager walks each job through Idle, Converting (probe and track
// build), Rendering (ffmpeg running) and then Done or Failed. Progress is
// parsed from ffmpeg's merged output and reported through Callbacks, capped
// at 99 until the output file has been verified. The temporary track lives
// beside the input video for the life of the job and is removed on every
// exit path. Jobs writing the same output path are serialized by an advisory
// file lock under the state directory; the second one fails with
// services.ErrBusy.
package render
