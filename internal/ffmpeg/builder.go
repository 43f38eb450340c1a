package ffmpeg

import (
	"strconv"
	"time"
)

// Encoder holds the output codec settings for a burn-in.
type Encoder struct {
	VideoCodec string
	CRF        int
	Preset     string
	AudioCodec string
}

// DefaultEncoder is libx264 CRF 18 veryfast with audio passthrough.
var DefaultEncoder = Encoder{VideoCodec: "libx264", CRF: 18, Preset: "veryfast", AudioCodec: "copy"}

// BurnSpec describes a full-length subtitle burn-in.
type BurnSpec struct {
	Input   string
	Output  string
	Filters FilterChain
	Encoder Encoder
}

// Build returns the ffmpeg argument list for a burn-in. Input and Output
// should be absolute since the process runs in the track directory.
func (s BurnSpec) Build() []string {
	enc := s.Encoder
	if enc.VideoCodec == "" {
		enc = DefaultEncoder
	}
	args := make([]string, 0, 16)
	args = append(args, "-hide_banner", "-nostdin", "-y")
	args = append(args, "-i", s.Input)
	args = append(args, "-vf", s.Filters.String())
	args = append(args, "-c:v", enc.VideoCodec)
	if enc.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(enc.CRF))
	}
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	audio := enc.AudioCodec
	if audio == "" {
		audio = "copy"
	}
	args = append(args, "-c:a", audio)
	args = append(args, s.Output)
	return args
}

// FrameSpec describes a single-frame extraction.
type FrameSpec struct {
	Input   string
	Output  string
	Seek    time.Duration
	Filters FilterChain
}

// Build returns the ffmpeg argument list that renders one frame at Seek.
func (s FrameSpec) Build() []string {
	seek := s.Seek
	if seek < 0 {
		seek = 0
	}
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", FormatSeconds(seek),
		"-i", s.Input,
		"-vf", s.Filters.String(),
		"-frames:v", "1",
		s.Output,
	}
}

// FormatSeconds renders d as decimal seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
