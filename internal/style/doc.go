// Package style turns cue text into per-line inline override directives.
//
// Each line is classified as CJK or other, sized from the frame height,
// wrapped by textlayout, and prefixed with a {\fn..\fs..\b..\c..} block so
// one track can carry two fonts, colours and weights.
package style
