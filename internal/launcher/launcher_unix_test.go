//go:build unix

package launcher

import (
	"context"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermForwardedToDelegate(t *testing.T) {
	f := newFixture(t, withPython())
	f.env["HELPER_TRAP_TERM"] = "1"

	done := make(chan error, 1)
	go func() {
		done <- f.launcher.Run(context.Background(), []string{"--continuous"})
	}()

	require.Eventually(t, func() bool {
		btes, err := os.ReadFile(f.record)
		return err == nil && strings.Contains(string(btes), "delegate ")
	}, 10*time.Second, 20*time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case err := <-done:
		assert.Equal(t, 143, ExitCode(err))
	case <-time.After(5 * time.Second):
		t.Fatal("delegate did not receive SIGTERM")
	}
}
