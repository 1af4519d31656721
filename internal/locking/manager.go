package locking

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// Manager provides coarse file-based locks for background jobs. A lock is a
// file in the lock directory; holding it across process restarts is possible,
// which is why stale locks can be cleared manually.
type Manager struct {
	dir string
	log zerolog.Logger
}

// NewManager creates a lock manager rooted at dir
func NewManager(dir string, log zerolog.Logger) *Manager {
	return &Manager{
		dir: dir,
		log: log.With().Str("component", "locking").Logger(),
	}
}

// Acquire takes the named lock. It fails if the lock is already held.
func (m *Manager) Acquire(name string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(m.lockPath(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("lock %q is already held", name)
		}
		return fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		m.log.Warn().Err(err).Str("lock", name).Msg("Failed to write lock owner")
	}

	return nil
}

// Release drops the named lock. Releasing a lock that is not held is a no-op.
func (m *Manager) Release(name string) {
	if err := os.Remove(m.lockPath(name)); err != nil && !os.IsNotExist(err) {
		m.log.Error().Err(err).Str("lock", name).Msg("Failed to release lock")
	}
}

func (m *Manager) lockPath(name string) string {
	return filepath.Join(m.dir, name+".lock")
}
