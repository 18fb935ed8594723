package testsupport

import (
	"io"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
)

// FreeAddr reserves a loopback port and returns it as a tcp:// address.
// The port is released before returning, so a racing process could take it.
func FreeAddr(t testing.TB) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("release port: %v", err)
	}
	return "tcp://" + addr
}

// QuietLogs silences the standard logrus logger for the duration of a test.
func QuietLogs(t testing.TB) {
	t.Helper()

	out := logrus.StandardLogger().Out
	level := logrus.GetLevel()
	logrus.SetOutput(io.Discard)
	t.Cleanup(func() {
		logrus.SetOutput(out)
		logrus.SetLevel(level)
	})
}
