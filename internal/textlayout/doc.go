// Package textlayout classifies subtitle text by script and wraps CJK lines
// using a weighted-unit budget that scales with font size and orientation.
package textlayout
