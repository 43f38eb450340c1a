package deps

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ToolRequirements returns the ffmpeg/ffprobe pair. When ffprobe is not
// configured explicitly, the ffprobe that sits next to the resolved ffmpeg is
// preferred over the one on PATH so both tools come from the same build.
func ToolRequirements(ffmpegCommand, ffprobeCommand string) []Requirement {
	ffmpegCommand = strings.TrimSpace(ffmpegCommand)
	if ffmpegCommand == "" {
		ffmpegCommand = "ffmpeg"
	}
	ffprobeCommand = strings.TrimSpace(ffprobeCommand)
	if ffprobeCommand == "" || ffprobeCommand == "ffprobe" {
		ffprobeCommand = resolveFFprobe(ffmpegCommand)
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegCommand,
			Description: "Burns styled subtitles and extracts preview frames",
			VersionFlag: "-version",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeCommand,
			Description: "Reads video geometry; defaults to 1920x1080 when missing",
			Optional:    true,
			VersionFlag: "-version",
		},
	}
}

// CheckTools reports the availability of the configured ffmpeg and ffprobe.
func CheckTools(ctx context.Context, ffmpegCommand, ffprobeCommand string) []Status {
	return CheckBinaries(ctx, ToolRequirements(ffmpegCommand, ffprobeCommand))
}

func resolveFFprobe(ffmpegCommand string) string {
	if resolved, err := exec.LookPath(ffmpegCommand); err == nil {
		candidate := filepath.Join(filepath.Dir(resolved), executableName("ffprobe"))
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate
		}
	}
	return "ffprobe"
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
