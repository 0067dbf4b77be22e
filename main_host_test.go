package main

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "sparkxr-test"}
	addFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SPARKXR_PLACEMENT", "replace")
	t.Setenv("SPARKXR_HZ", "30")
	t.Setenv("SPARKXR_MODEL_URI", "tree.yaml")

	cfg, err := loadConfig(newTestCmd(t, "--placement", "additive", "--max-delta", "40ms", "--headless"))
	require.NoError(t, err)
	assert.Equal(t, "additive", cfg.Placement, "flag wins")
	assert.Equal(t, 40*time.Millisecond, cfg.MaxDelta)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 30, cfg.Hz, "env kept when flag unset")
	assert.Equal(t, "tree.yaml", cfg.ModelURI)
}

func TestFramebufferFlags(t *testing.T) {
	t.Setenv("SPARKXR_WIDTH", "640")
	t.Setenv("SPARKXR_HEIGHT", "480")
	t.Setenv("SPARKXR_SELECT_EVERY", "90")

	cfg, err := loadConfig(newTestCmd(t, "--width", "160", "--select-every", "5"))
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width, "flag wins")
	assert.Equal(t, 480, cfg.Height, "env kept when flag unset")
	assert.Equal(t, uint64(5), cfg.SelectEvery)
}

func TestMetricsServerLogsListenError(t *testing.T) {
	var buf syncBuffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	srv := serveMetrics("bad-addr", prometheus.NewRegistry(), log)
	t.Cleanup(func() { _ = srv.Close() })

	require.Eventually(t, func() bool { return buf.String() != "" }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "metrics server")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInvalidConfigRejected(t *testing.T) {
	_, err := loadConfig(newTestCmd(t, "--log-level", "chatty"))
	assert.Error(t, err)
	_, err = loadConfig(newTestCmd(t, "--hz", "0"))
	assert.Error(t, err)
	_, err = loadConfig(newTestCmd(t, "--height", "0"))
	assert.Error(t, err)
}
