package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/tiling"
)

// Action names a hotkey-bound daemon operation.
type Action string

const (
	ActionRelayout   Action = "relayout"    // Re-apply the active layout.
	ActionCycleSide  Action = "cycle_side"  // Move the sided region to the next side.
	ActionFocusNext  Action = "focus_next"  // Focus the next tile in order.
	ActionSwapLayout Action = "swap_layout" // Switch to the next registered layout.
)

// Actions lists every bindable action.
var Actions = []Action{ActionRelayout, ActionCycleSide, ActionFocusNext, ActionSwapLayout}

// KeyEntry binds a key sequence to an action.
type KeyEntry struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Value string `yaml:"value" toml:"value" json:"value"`
}

// TaskbarConfig controls the desktop docks and panels.
type TaskbarConfig struct {
	// Show keeps docks visible while twm runs. When false they are hidden at
	// startup and restored at shutdown.
	Show bool `yaml:"show" toml:"show" json:"show"`
}

// LayoutConfig selects the layout new workspaces start with.
type LayoutConfig struct {
	Kind      string                 `yaml:"kind" toml:"kind" json:"kind"`
	Side      geometry.Direction     `yaml:"side" toml:"side" json:"side"`
	SidedTile tiling.SidedTilePolicy `yaml:"sided_tile" toml:"sided_tile" json:"sided_tile"`
}

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds the application configuration.
type Config struct {
	Layout            LayoutConfig  `yaml:"layout" toml:"layout" json:"layout"`
	Taskbar           TaskbarConfig `yaml:"taskbar" toml:"taskbar" json:"taskbar"`
	Keys              []KeyEntry    `yaml:"keys" toml:"keys" json:"keys"`
	LogLevel          string        `yaml:"log_level" toml:"log_level" json:"log_level"`
	StrictGeometry    bool          `yaml:"strict_geometry" toml:"strict_geometry" json:"strict_geometry"`
	MetricsAddr       string        `yaml:"metrics_addr" toml:"metrics_addr" json:"metrics_addr"`
	ReconcileInterval Duration      `yaml:"reconcile_interval" toml:"reconcile_interval" json:"reconcile_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Layout: LayoutConfig{
			Kind:      tiling.KindSided,
			Side:      geometry.Left,
			SidedTile: tiling.SidedByNewest,
		},
		Taskbar: TaskbarConfig{Show: true},
		Keys: []KeyEntry{
			{Name: string(ActionRelayout), Value: "Mod4-Mod1-t"},
			{Name: string(ActionCycleSide), Value: "Mod4-Mod1-s"},
			{Name: string(ActionFocusNext), Value: "Mod4-Mod1-j"},
			{Name: string(ActionSwapLayout), Value: "Mod4-Mod1-l"},
		},
		LogLevel:          "info",
		ReconcileInterval: Duration(10 * time.Second),
	}
}

// LayoutOptions converts the layout section into registry options.
func (c *Config) LayoutOptions() tiling.Options {
	return tiling.Options{
		Side:      c.Layout.Side,
		SidedTile: c.Layout.SidedTile,
		Strict:    c.StrictGeometry,
	}
}

// NewLayout builds the configured layout.
func (c *Config) NewLayout() (tiling.Layout, error) {
	return tiling.NewLayout(c.Layout.Kind, c.LayoutOptions())
}

// Bindings returns key sequences by action.
func (c *Config) Bindings() map[Action]string {
	out := make(map[Action]string, len(c.Keys))
	for _, k := range c.Keys {
		out[Action(k.Name)] = k.Value
	}
	return out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if !isKnownLayout(c.Layout.Kind) {
		return &ValidationError{Path: "layout.kind", Err: fmt.Errorf("layout.kind must be one of: %s", strings.Join(tiling.LayoutKinds(), ", "))}
	}
	if c.Layout.Side < geometry.Left || c.Layout.Side > geometry.Down {
		return &ValidationError{Path: "layout.side", Err: fmt.Errorf("layout.side must be one of: Left, Right, Up, Down")}
	}
	if !c.Layout.SidedTile.Valid() {
		return &ValidationError{Path: "layout.sided_tile", Err: fmt.Errorf("layout.sided_tile must be one of: newest, focused")}
	}

	seen := make(map[string]struct{}, len(c.Keys))
	for i, k := range c.Keys {
		path := fmt.Sprintf("keys[%d]", i)
		if !isKnownAction(k.Name) {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("unknown action %q", k.Name)}
		}
		if strings.TrimSpace(k.Value) == "" {
			return &ValidationError{Path: path + ".value", Err: fmt.Errorf("key sequence for %s must not be empty", k.Name)}
		}
		if _, dup := seen[k.Name]; dup {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("action %q is bound twice", k.Name)}
		}
		seen[k.Name] = struct{}{}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return &ValidationError{Path: "metrics_addr", Err: fmt.Errorf("metrics_addr must be host:port: %w", err)}
		}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	return nil
}

func isKnownLayout(kind string) bool {
	for _, k := range tiling.LayoutKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

func isKnownAction(name string) bool {
	for _, a := range Actions {
		if string(a) == name {
			return true
		}
	}
	return false
}
