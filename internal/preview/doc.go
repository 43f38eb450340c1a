// Package preview renders one styled still frame so subtitle appearance can
// be checked without a full encode.
//
// The heaviest cue by visual weight is cloned to start at zero, written as a
// single-event track beside the video, and burned into the frame at the
// cue's original start plus a small offset. Generate keeps a boolean
// contract for UI callers; Render returns the structured error.
package preview
