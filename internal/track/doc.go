// Package track assembles styled ASS v4+ subtitle tracks.
//
// A track carries one base style sized from the frame height and one
// Dialogue event per cue, each event holding the per-line override
// directives produced by the style package. WrapStyle is fixed at 1 so the
// renderer fills Latin lines greedily while CJK lines arrive pre-wrapped.
//
// TempPath names the throwaway tracks render and preview write next to the
// source video; callers remove them with Remove on every exit path.
package track
