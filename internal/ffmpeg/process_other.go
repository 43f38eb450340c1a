//go:build !unix

package ffmpeg

import "os/exec"

func configureProcessGroup(*exec.Cmd) {}
