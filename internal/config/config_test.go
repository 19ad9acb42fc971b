package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/tiling"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Layout.Kind != tiling.KindSided || cfg.Layout.Side != geometry.Left {
		t.Fatalf("unexpected default layout %+v", cfg.Layout)
	}
	if got := time.Duration(cfg.ReconcileInterval); got != 10*time.Second {
		t.Fatalf("expected 10s reconcile interval, got %s", got)
	}
	if len(cfg.Bindings()) != len(Actions) {
		t.Fatalf("expected a default binding for every action, got %v", cfg.Bindings())
	}
}

func TestLoadDir_NoFileUsesDefaults(t *testing.T) {
	res, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Path != "" {
		t.Fatalf("expected no path, got %q", res.Path)
	}
	if !res.Config.Taskbar.Show {
		t.Fatalf("expected taskbar shown by default")
	}
}

func TestLoadDir_MultipleFilesError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "log_level: debug\n")
	writeConfig(t, dir, "config.toml", "log_level = \"debug\"\n")

	_, err := LoadDir(dir)
	if !errors.Is(err, ErrMultipleConfigFiles) {
		t.Fatalf("expected ErrMultipleConfigFiles, got %v", err)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml", "config.json", "config.jsonc"} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), name, "")
			res, err := LoadFromPath(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if res.Config.Layout.Kind != tiling.KindSided {
				t.Fatalf("expected default layout, got %q", res.Config.Layout.Kind)
			}
		})
	}
}

func TestLoadFromPath_AllFormats(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"config.yaml", strings.Join([]string{
			"layout:",
			"  kind: middle",
			"  side: Down",
			"  sided_tile: focused",
			"taskbar:",
			"  show: false",
			"keys:",
			"  - name: relayout",
			"    value: Mod4-r",
			"reconcile_interval: 3s",
			"",
		}, "\n")},
		{"config.toml", strings.Join([]string{
			"reconcile_interval = \"3s\"",
			"[layout]",
			"kind = \"middle\"",
			"side = \"down\"",
			"sided_tile = \"focused\"",
			"[taskbar]",
			"show = false",
			"[[keys]]",
			"name = \"relayout\"",
			"value = \"Mod4-r\"",
			"",
		}, "\n")},
		{"config.json", `{"layout":{"kind":"middle","side":"Down","sided_tile":"focused"},"taskbar":{"show":false},"keys":[{"name":"relayout","value":"Mod4-r"}],"reconcile_interval":"3s"}`},
		{"config.jsonc", `{
			// comments and trailing commas are accepted
			"layout": {"kind": "middle", "side": "Down", "sided_tile": "focused",},
			"taskbar": {"show": false},
			"keys": [{"name": "relayout", "value": "Mod4-r"}],
			"reconcile_interval": "3s",
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := LoadFromPath(writeConfig(t, t.TempDir(), tt.name, tt.data))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			cfg := res.Config
			if cfg.Layout.Kind != tiling.KindMiddle || cfg.Layout.Side != geometry.Down || cfg.Layout.SidedTile != tiling.SidedByFocus {
				t.Fatalf("unexpected layout %+v", cfg.Layout)
			}
			if cfg.Taskbar.Show {
				t.Fatalf("expected taskbar hidden")
			}
			if len(cfg.Keys) != 1 || cfg.Bindings()[ActionRelayout] != "Mod4-r" {
				t.Fatalf("expected keys to replace defaults, got %+v", cfg.Keys)
			}
			if time.Duration(cfg.ReconcileInterval) != 3*time.Second {
				t.Fatalf("expected 3s, got %s", time.Duration(cfg.ReconcileInterval))
			}
		})
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	tests := map[string]string{
		"config.yaml": "nope: 1\n",
		"config.toml": "nope = 1\n",
		"config.json": `{"nope": 1}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, t.TempDir(), name, data))
			if err == nil || !strings.Contains(err.Error(), "nope") {
				t.Fatalf("expected unknown key error mentioning nope, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "log_level: debug\nlayout:\n  kind: spiral\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "layout.kind" {
		t.Fatalf("expected path layout.kind, got %q", verr.Path)
	}
	if verr.Source.File != path || verr.Source.Line != 3 {
		t.Fatalf("expected source %s:3, got %+v", path, verr.Source)
	}
	if !strings.HasPrefix(err.Error(), path+":3:") {
		t.Fatalf("expected positioned message, got %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"side", func(c *Config) { c.Layout.Side = geometry.Direction(9) }, "layout.side"},
		{"sided tile", func(c *Config) { c.Layout.SidedTile = "oldest" }, "layout.sided_tile"},
		{"unknown action", func(c *Config) { c.Keys = []KeyEntry{{Name: "explode", Value: "a"}} }, "keys[0].name"},
		{"empty key", func(c *Config) { c.Keys[1].Value = " " }, "keys[1].value"},
		{"duplicate action", func(c *Config) { c.Keys = append(c.Keys, c.Keys[0]) }, "keys[4].name"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"metrics addr", func(c *Config) { c.MetricsAddr = "localhost" }, "metrics_addr"},
		{"reconcile interval", func(c *Config) { c.ReconcileInterval = -1 }, "reconcile_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected validation error at %s, got %v", tt.path, err)
			}
		})
	}
}

func TestConfig_NewLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.Side = geometry.Right
	cfg.StrictGeometry = true

	l, err := cfg.NewLayout()
	if err != nil {
		t.Fatalf("new layout: %v", err)
	}
	sided, ok := l.(*tiling.SidedLayout)
	if !ok {
		t.Fatalf("expected sided layout, got %T", l)
	}
	if sided.Side != geometry.Right || !sided.Strict {
		t.Fatalf("options not applied: %+v", sided)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Layout.Side = geometry.Up

			var buf bytes.Buffer
			if err := Encode(&buf, cfg, format); err != nil {
				t.Fatalf("encode: %v", err)
			}
			res, err := LoadFromPath(writeConfig(t, t.TempDir(), "config."+string(format), buf.String()))
			if err != nil {
				t.Fatalf("load encoded config: %v\n%s", err, buf.String())
			}
			if res.Config.Layout.Side != geometry.Up || len(res.Config.Keys) != len(cfg.Keys) {
				t.Fatalf("round trip lost data: %+v", res.Config)
			}
		})
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *LoadResult, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, dir, logger, func(res *LoadResult, err error) {
			if err != nil {
				t.Errorf("unexpected reload error: %v", err)
				return
			}
			changes <- res
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "config.yaml", "log_level: debug\n")

	select {
	case res := <-changes:
		if res.Config.LogLevel != "debug" {
			t.Fatalf("expected reloaded log level debug, got %q", res.Config.LogLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}

func TestWatch_ReportsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, dir, logger, func(res *LoadResult, err error) {
			if res != nil {
				t.Errorf("expected no result alongside a load error, got %+v", res)
			}
			errs <- err
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "config.yaml", "layout:\n  kind: spiral\n")

	select {
	case err := <-errs:
		if err == nil {
			t.Fatalf("expected a load error for an invalid layout")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the failed reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}
