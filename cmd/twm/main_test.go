package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/twm/internal/config"
	"github.com/1broseidon/twm/internal/daemon"
	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/ipc"
	"github.com/1broseidon/twm/internal/metrics"
	"github.com/1broseidon/twm/internal/platform"
	"github.com/1broseidon/twm/internal/tiling"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLevelHandler_FollowsLevelVar(t *testing.T) {
	var buf bytes.Buffer
	lg := newLogging(&buf, false)

	lg.Logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	lg.Level.Set(slog.LevelDebug)
	lg.Logger.With("component", "test").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=test")
}

func TestNewLogging_VerbosePinsDebug(t *testing.T) {
	lg := newLogging(&bytes.Buffer{}, true)
	assert.True(t, lg.Pinned)
	assert.Equal(t, slog.LevelDebug, lg.Level.Level())
}

func TestWriteJSON_CompactWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, json.RawMessage(`{ "count" : 3 }`)))
	assert.Equal(t, "{\"count\":3}\n", buf.String())
}

func TestConfigPrint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[layout]\nkind = \"middle\"\n"), 0o644))

	out, err := execute(t, "config", "print", "--path", path, "--format", "json")
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "middle", cfg["layout"].(map[string]any)["kind"])
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "validate", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "defaults are valid")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("layout:\n  kind: spiral\n"), 0o644))
	_, err = execute(t, "config", "validate", "--config-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout.kind")
}

func TestInfoGet_UnknownQuery(t *testing.T) {
	_, err := execute(t, "info", "get", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown query")
}

func TestInfoList(t *testing.T) {
	out, err := execute(t, "info", "list")
	require.NoError(t, err)
	assert.Equal(t, len(ipc.QueryCommands), strings.Count(out, "\n"))
	assert.Contains(t, out, "focusedWorkspace")
}

func TestDaemon_Headless(t *testing.T) {
	sockDir, err := os.MkdirTemp("", "twm-cmd")
	require.NoError(t, err)
	defer os.RemoveAll(sockDir)
	socket := filepath.Join(sockDir, "twm.sock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runDaemon(ctx, newLogging(&bytes.Buffer{}, false), socket, daemonOptions{
			configDir: t.TempDir(),
			headless:  true,
			width:     1920,
			height:    1080,
		})
	}()

	client := ipc.NewClient(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	n, err := client.WorkspacesCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ws, err := client.FocusedWorkspace()
	require.NoError(t, err)
	assert.Equal(t, int32(1920), ws.Display.BBox.Width)
	assert.Empty(t, ws.Tiles)

	_, err = execute(t, "--socket", socket, "relayout")
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestApplyReloaded_CountsLoadFailures(t *testing.T) {
	backend := platform.NewMemoryBackend(tiling.Display{ID: 1, BBox: geometry.NewBBox(0, 0, 1920, 1080)})
	m := metrics.New()
	twm := daemon.New(daemon.Options{Backend: backend, Metrics: m})
	require.NoError(t, twm.Init())

	apply := applyReloaded(twm, m, slog.New(slog.DiscardHandler))
	apply(nil, errors.New("yaml: line 1: did not find expected key"))

	cfg := config.DefaultConfig()
	cfg.Layout.Kind = "middle"
	apply(&config.LoadResult{Config: cfg}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("ok")))
	assert.Equal(t, "middle", twm.Config().Layout.Kind)
}
