package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/twm/internal/config"
	"github.com/1broseidon/twm/internal/daemon"
	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/hotkeys"
	"github.com/1broseidon/twm/internal/ipc"
	"github.com/1broseidon/twm/internal/metrics"
	"github.com/1broseidon/twm/internal/platform"
	"github.com/1broseidon/twm/internal/tiling"
)

type daemonOptions struct {
	configDir string
	display   string
	headless  bool
	width     int32
	height    int32
}

func newDaemonCmd() *cobra.Command {
	var opts daemonOptions

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the window manager in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := socketPath(cmd)
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), loggingFromContext(cmd.Context()), socket, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configDir, "config-dir", "", "config directory (default ~/.config/twm)")
	cmd.Flags().StringVar(&opts.display, "display", "", "X display to manage (default $DISPLAY)")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "manage an in-memory display instead of X11")
	cmd.Flags().Int32Var(&opts.width, "width", 1920, "headless display width")
	cmd.Flags().Int32Var(&opts.height, "height", 1080, "headless display height")
	return cmd
}

// eventLooper is implemented by backends that dispatch window system events.
type eventLooper interface {
	EventLoop()
	StopEventLoop()
}

func runDaemon(ctx context.Context, lg *logging, socket string, opts daemonOptions) error {
	logger := lg.Logger

	dir := opts.configDir
	if dir == "" {
		d, err := config.DefaultConfigDir()
		if err != nil {
			return err
		}
		dir = d
	}
	loaded, err := config.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := loaded.Config
	if loaded.Path != "" {
		logger.Info("configuration loaded", "path", loaded.Path, "format", loaded.Format)
	} else {
		logger.Info("no config file, using defaults", "dir", dir)
	}

	backend, closeBackend, err := openBackend(opts)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer closeBackend()

	tiling.SetLogger(logger.With("component", "tiling"))

	var level *slog.LevelVar
	if !lg.Pinned {
		level = lg.Level
	}

	var keys *hotkeys.Handler
	m := metrics.New()
	twm := daemon.New(daemon.Options{
		Config:  cfg,
		Backend: backend,
		Logger:  logger,
		Level:   level,
		Metrics: m,
		LoadConfig: func() (*config.Config, error) {
			res, err := config.LoadDir(dir)
			if err != nil {
				return nil, err
			}
			return res.Config, nil
		},
		OnConfig: func(c *config.Config) {
			if keys == nil {
				return
			}
			keys.Reset()
			if err := keys.Register(c.Bindings()); err != nil {
				logger.Warn("failed to register hotkeys", "error", err)
			}
		},
	})

	defer twm.Shutdown()
	if err := twm.Init(); err != nil {
		return err
	}

	keys, err = hotkeys.NewHandler(backend, twm, logger)
	switch {
	case errors.Is(err, hotkeys.ErrUnsupported):
		logger.Debug("hotkeys disabled for this backend")
	case err != nil:
		return err
	default:
		if err := keys.Register(cfg.Bindings()); err != nil {
			logger.Warn("failed to register hotkeys", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	srv := ipc.NewServer(socket, twm, logger.With("component", "ipc"), m)
	g.Go(func() error { return srv.Serve(gctx) })

	if cfg.MetricsAddr != "" {
		g.Go(func() error { return m.Serve(gctx, cfg.MetricsAddr, logger) })
	}

	if interval := time.Duration(cfg.ReconcileInterval); interval > 0 {
		rec := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: interval,
			Logger:   logger.With("component", "reconciler"),
		}, twm)
		g.Go(func() error {
			rec.Run(gctx)
			return nil
		})
	}

	if _, err := os.Stat(dir); err == nil {
		g.Go(func() error {
			return config.Watch(gctx, dir, logger, applyReloaded(twm, m, logger))
		})
	}

	if loop, ok := backend.(eventLooper); ok {
		go loop.EventLoop()
		g.Go(func() error {
			<-gctx.Done()
			loop.StopEventLoop()
			return nil
		})
	}

	logger.Info("twm daemon started", "socket", socket, "headless", opts.headless)
	err = g.Wait()
	logger.Info("twm daemon stopping")
	return err
}

// applyReloaded applies configs picked up by the watcher and counts every
// attempt, including files that failed to load.
func applyReloaded(twm *daemon.Twm, m *metrics.Metrics, logger *slog.Logger) func(*config.LoadResult, error) {
	return func(res *config.LoadResult, err error) {
		if err == nil {
			err = twm.ApplyConfig(res.Config)
		}
		m.RecordReload(err)
		if err != nil {
			logger.Warn("failed to apply reloaded config", "error", err)
		}
	}
}

func openBackend(opts daemonOptions) (platform.Backend, func(), error) {
	if opts.headless {
		display := tiling.Display{ID: 1, BBox: geometry.NewBBox(0, 0, opts.width, opts.height)}
		return platform.NewMemoryBackend(display), func() {}, nil
	}
	return openX11Backend(opts.display)
}
