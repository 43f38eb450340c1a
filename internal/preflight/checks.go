package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"bisub/internal/config"
	"bisub/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDir verifies that the directory holding outputPath is writable.
// The temporary track is written beside the input video, so the video
// directory must be writable too.
func CheckOutputDir(videoPath, outputPath string) []Result {
	results := []Result{CheckDirectoryAccess("Video directory", filepath.Dir(videoPath))}
	if outputPath != "" && filepath.Dir(outputPath) != filepath.Dir(videoPath) {
		results = append(results, CheckDirectoryAccess("Output directory", filepath.Dir(outputPath)))
	}
	return results
}

// CheckSystemDeps evaluates the external tools for the given config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckTools(ctx, cfg.FFmpegBinary(), cfg.Tools.FFprobe)
}
