// Package supervisor starts and stops the wcferry worker executable.
//
// The worker binary takes two verbs:
//
//	wcf.exe start <port> [debug]   inject into WeChat and listen on port, port+1
//	wcf.exe stop                   tear the injection down
//
// A lock file keeps two controllers on one host from driving the same worker.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPort    = 10086
	DefaultTimeout = 60 * time.Second
)

var commandContext = exec.CommandContext

var ErrLocked = errors.New("supervisor: worker is driven by another controller")

// DefaultPath is lib/wcf.exe under the working directory.
func DefaultPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join("lib", "wcf.exe")
	}
	return filepath.Join(wd, "lib", "wcf.exe")
}

// Option configures an Exec supervisor.
type Option func(*Exec)

func WithPort(port int) Option {
	return func(e *Exec) {
		if port > 0 {
			e.port = port
		}
	}
}

// WithLockFile guards the worker with a lock at path. An empty path disables
// locking.
func WithLockFile(path string) Option {
	return func(e *Exec) {
		e.lockPath = path
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Exec) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPath sets the binary Stop uses when Start was never called.
func WithPath(path string) Option {
	return func(e *Exec) {
		if path != "" {
			e.path = path
		}
	}
}

// Exec drives the worker binary with os/exec.
type Exec struct {
	mu       sync.Mutex
	path     string
	port     int
	timeout  time.Duration
	lockPath string
	lock     *flock.Flock
}

func NewExec(opts ...Option) *Exec {
	e := &Exec{
		path:    DefaultPath(),
		port:    DefaultPort,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lockPath != "" {
		e.lock = flock.New(e.lockPath)
	}
	return e
}

// Start runs "<path> start <port> [debug]" and waits for it to exit. An empty
// path falls back to the configured one.
func (e *Exec) Start(path string, debug bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if path != "" {
		e.path = path
	}
	if e.lock != nil {
		ok, err := e.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLocked, e.lockPath)
		}
	}

	args := []string{"start", strconv.Itoa(e.port)}
	if debug {
		args = append(args, "debug")
	}
	if err := e.run(args...); err != nil {
		e.unlock()
		return fmt.Errorf("start worker: %w", err)
	}
	logrus.WithFields(logrus.Fields{"path": e.path, "port": e.port, "debug": debug}).Info("worker started")
	return nil
}

// Stop runs "<path> stop" and releases the lock.
func (e *Exec) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.unlock()

	if err := e.run("stop"); err != nil {
		return fmt.Errorf("stop worker: %w", err)
	}
	logrus.WithField("path", e.path).Info("worker stopped")
	return nil
}

func (e *Exec) run(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	out, err := commandContext(ctx, e.path, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", e.path, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", e.path, strings.Join(args, " "), err)
	}
	return nil
}

func (e *Exec) unlock() {
	if e.lock == nil || !e.lock.Locked() {
		return
	}
	if err := e.lock.Unlock(); err != nil {
		logrus.WithField("lock", e.lockPath).WithError(err).Warn("release worker lock")
	}
}
