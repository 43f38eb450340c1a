package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"bisub/internal/config"
	"bisub/internal/cue"
	"bisub/internal/history"
	"bisub/internal/logging"
	"bisub/internal/services"
)

// abandonedAfter is how old a running history entry must be before it is
// considered orphaned by a crashed process.
const abandonedAfter = 24 * time.Hour

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce   sync.Once
	logger       *slog.Logger
	loggerCloser io.Closer

	store *history.Store
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor returns the process logger, writing console output to the
// command's stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		level := ""
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		logger, closer, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr(), level)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
		c.loggerCloser = closer
	})
	return c.logger
}

// historyStore opens the job history. A store that cannot be opened is
// logged and treated as absent so rendering still proceeds.
func (c *commandContext) historyStore(ctx context.Context, logger *slog.Logger) *history.Store {
	if c.store != nil {
		return c.store
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this job will not appear in bisub history"),
		)
		return nil
	}
	if n, err := store.MarkAbandoned(ctx, time.Now().Add(-abandonedAfter)); err == nil && n > 0 {
		logger.Info("marked abandoned jobs as failed", logging.Int64("count", n))
	}
	c.store = store
	return store
}

func (c *commandContext) closeHistory() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func (c *commandContext) close() {
	c.closeHistory()
	if c.loggerCloser != nil {
		_ = c.loggerCloser.Close()
	}
}

func loadCues(path string) ([]cue.Cue, error) {
	cues, err := cue.Load(path)
	if err != nil {
		return nil, err
	}
	return cue.Normalize(cues), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCodeFor maps failures to process exit codes: 2 for usage and
// validation errors, 3 for busy outputs, 1 otherwise.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return 2
	case errors.Is(err, services.ErrBusy):
		return 3
	default:
		return 1
	}
}

// samePath compares two paths after resolving them against the working
// directory.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
