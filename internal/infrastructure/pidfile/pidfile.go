package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another server holds the lock
type ErrAlreadyRunning struct {
	Path string
	PID  int // 0 when the holder's PID could not be read
}

func (e *ErrAlreadyRunning) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("server is already running (PID %d, lock %s)", e.PID, e.Path)
	}
	return fmt.Sprintf("server is already running (lock %s)", e.Path)
}

// PIDFile keeps a single server instance per data directory. The file holds
// the owner's PID and an advisory lock that dies with the process, so a
// crashed server never leaves a stale lock behind.
type PIDFile struct {
	path string
	lock *flock.Flock
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path, lock: flock.New(path)}
}

// Path returns the location of the PID file
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire takes the lock and records the current PID
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}

	locked, err := p.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock PID file: %w", err)
	}
	if !locked {
		return &ErrAlreadyRunning{Path: p.path, PID: readPID(p.path)}
	}

	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		_ = p.lock.Unlock()
		return fmt.Errorf("failed to open PID file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		_ = p.lock.Unlock()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release drops the lock and removes the file
func (p *PIDFile) Release() error {
	if !p.lock.Locked() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	if err := p.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock PID file: %w", err)
	}
	return nil
}

func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
