package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bisub/internal/config"
	"bisub/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	videoPath  string
	cuePath    string
}

// setupCLITestEnv writes a config pointing at stub ffmpeg/ffprobe scripts
// plus a sample video and subtitle file.
func setupCLITestEnv(t *testing.T, ffmpegBody string) *cliTestEnv {
	t.Helper()

	ffmpegBin, ffprobeBin := testsupport.StubTools(t, ffmpegBody, testsupport.FFprobeScript(1920, 1080, "30.0"))
	cfg := testsupport.NewConfig(t, testsupport.WithTools(ffmpegBin, ffprobeBin))
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	mediaDir := filepath.Join(base, "media")
	videoPath := filepath.Join(mediaDir, "episode.mkv")
	testsupport.WriteFile(t, videoPath, 128)
	cuePath := testsupport.WriteText(t, filepath.Join(mediaDir, "episode.srt"), testsupport.SampleSRT)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		videoPath:  videoPath,
		cuePath:    cuePath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[tools]\nffmpeg = %q\nffprobe = %q\n\n[logging]\nformat = %q\nlevel = %q\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		cfg.Logging.Format,
		"warn",
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
