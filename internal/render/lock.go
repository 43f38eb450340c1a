package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"bisub/internal/fileutil"
	"bisub/internal/services"
)

// lockOutput claims an advisory lock keyed by the absolute output path. The
// returned func releases it.
func (m *Manager) lockOutput(output string) (func(), error) {
	if m.lockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(m.lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrValidation, "render", "lock", "create lock directory", err)
	}
	lock := flock.New(filepath.Join(m.lockDir, fileutil.PathKey(output)+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrBusy, "render", "lock", output, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrBusy, "render", "lock",
			fmt.Sprintf("another job is writing %s", output), nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
