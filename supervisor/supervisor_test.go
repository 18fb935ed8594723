package supervisor

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wcferry/internal/testsupport"
)

// fakeWorker writes a script that appends its arguments to a log file and
// exits with the given code.
func fakeWorker(t *testing.T, exitCode int) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script worker needs a POSIX shell")
	}
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	script := filepath.Join(dir, "wcf.sh")
	body := "#!/bin/sh\necho \"$@\" >> " + logPath + "\n"
	if exitCode != 0 {
		body += "echo boom >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	}
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script, logPath
}

func calls(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestStartStop(t *testing.T) {
	testsupport.QuietLogs(t)
	script, logPath := fakeWorker(t, 0)

	sup := NewExec(WithPort(20086), WithLockFile(filepath.Join(t.TempDir(), "wcf.lock")))
	require.NoError(t, sup.Start(script, true))
	require.NoError(t, sup.Stop())

	assert.Equal(t, []string{"start 20086 debug", "stop"}, calls(t, logPath))
}

func TestStartWithoutDebug(t *testing.T) {
	testsupport.QuietLogs(t)
	script, logPath := fakeWorker(t, 0)

	sup := NewExec(WithPath(script))
	require.NoError(t, sup.Start("", false))
	assert.Equal(t, []string{"start 10086"}, calls(t, logPath))
}

func TestLockHeldByAnotherController(t *testing.T) {
	testsupport.QuietLogs(t)
	script, _ := fakeWorker(t, 0)
	lock := filepath.Join(t.TempDir(), "wcf.lock")

	first := NewExec(WithLockFile(lock))
	require.NoError(t, first.Start(script, false))

	second := NewExec(WithLockFile(lock))
	assert.ErrorIs(t, second.Start(script, false), ErrLocked)

	require.NoError(t, first.Stop())
	require.NoError(t, second.Start(script, false))
	require.NoError(t, second.Stop())
}

func TestStartFailureReleasesLock(t *testing.T) {
	testsupport.QuietLogs(t)
	script, _ := fakeWorker(t, 3)
	lock := filepath.Join(t.TempDir(), "wcf.lock")

	sup := NewExec(WithLockFile(lock))
	err := sup.Start(script, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	other := NewExec(WithLockFile(lock))
	good, _ := fakeWorker(t, 0)
	require.NoError(t, other.Start(good, false))
	require.NoError(t, other.Stop())
}

func TestMissingBinary(t *testing.T) {
	testsupport.QuietLogs(t)

	sup := NewExec()
	err := sup.Start(filepath.Join(t.TempDir(), "missing.exe"), false)
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "lib", "wcf.exe"), DefaultPath())
}
