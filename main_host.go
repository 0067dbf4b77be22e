package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"sparkxr/app"
	"sparkxr/hal"
	"sparkxr/internal/buildinfo"
	"sparkxr/internal/config"
	"sparkxr/xr/asset"
	"sparkxr/xr/binder"
	"sparkxr/xr/metrics"
	"sparkxr/xr/platform/sim"
)

var rootCmd = &cobra.Command{
	Use:     "sparkxr",
	Short:   "Place animated models on surfaces in a simulated AR session",
	Long:    `SparkXR aims a reticle at the floor of a simulated room; press Enter, Space or click to place a model there. Escape ends the session.`,
	Version: buildinfo.Long(),
	Args:    cobra.NoArgs,
	RunE:    run,
}

func init() {
	addFlags(rootCmd)
}

func addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("headless", false, "Run without a window.")
	f.Int("hz", 60, "Tick rate in headless mode.")
	f.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	f.Uint64("select-every", 0, "Headless only: inject a select every N ticks (0 = never).")
	f.Int("width", 320, "Framebuffer width.")
	f.Int("height", 240, "Framebuffer height.")
	f.Duration("max-delta", 100*time.Millisecond, "Cap on a single animation step.")
	f.String("placement", "additive", "Placement policy: additive or replace.")
	f.String("asset-dir", "assets", "Directory searched for models before the built-in ones.")
	f.String("marker", "reticle.yaml", "Marker model URI.")
	f.String("model", "flower.yaml", "Placed model URI.")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address.")
	f.String("log-level", "info", "Log level: debug, info, warn or error.")
	f.Int("warmup-frames", 30, "Frames before the simulator reports tracking.")
	f.Float32("floor-y", -1.4, "Floor height below the viewer, in meters.")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment, then applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("headless", func() { cfg.Headless, _ = f.GetBool("headless") })
	set("hz", func() { cfg.Hz, _ = f.GetInt("hz") })
	set("ticks", func() { cfg.Ticks, _ = f.GetUint64("ticks") })
	set("select-every", func() { cfg.SelectEvery, _ = f.GetUint64("select-every") })
	set("width", func() { cfg.Width, _ = f.GetInt("width") })
	set("height", func() { cfg.Height, _ = f.GetInt("height") })
	set("max-delta", func() { cfg.MaxDelta, _ = f.GetDuration("max-delta") })
	set("placement", func() { cfg.Placement, _ = f.GetString("placement") })
	set("asset-dir", func() { cfg.AssetDir, _ = f.GetString("asset-dir") })
	set("marker", func() { cfg.MarkerURI, _ = f.GetString("marker") })
	set("model", func() { cfg.ModelURI, _ = f.GetString("model") })
	set("metrics-addr", func() { cfg.MetricsAddr, _ = f.GetString("metrics-addr") })
	set("log-level", func() { cfg.LogLevel, _ = f.GetString("log-level") })
	set("warmup-frames", func() { cfg.WarmupFrames, _ = f.GetInt("warmup-frames") })
	set("floor-y", func() { cfg.FloorY, _ = f.GetFloat32("floor-y") })
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	policy, err := binder.ParsePolicy(cfg.Placement)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	layers := []fs.FS{asset.Builtin()}
	if st, err := os.Stat(cfg.AssetDir); err == nil && st.IsDir() {
		layers = append([]fs.FS{os.DirFS(cfg.AssetDir)}, layers...)
	}

	newApp := func(h hal.HAL) func(now time.Duration) error {
		log := slog.New(slog.NewTextHandler(hal.LogWriter(h.Logger()), &slog.HandlerOptions{Level: level}))
		log.Info("sparkxr starting", "version", buildinfo.Short(), "headless", cfg.Headless, "placement", policy)

		rt := sim.New(h, sim.Config{WarmupFrames: cfg.WarmupFrames, FloorY: cfg.FloorY}, log)
		act, err := app.New(app.Options{
			Placement: policy,
			MarkerURI: cfg.MarkerURI,
			ModelURI:  cfg.ModelURI,
			Loader:    asset.NewCache(asset.NewFS(layers...)),
			MaxDelta:  cfg.MaxDelta,
			Log:       log,
			Metrics:   m,
		}).Activate(ctx, rt)
		if err != nil {
			log.Error("activation failed", "error", err)
			return func(time.Duration) error { return err }
		}

		return func(now time.Duration) error {
			select {
			case <-ctx.Done():
				_ = act.End()
				return hal.ErrStopped
			case <-act.Done():
				return hal.ErrStopped
			default:
			}
			rt.Pump(now)
			return nil
		}
	}

	if !cfg.Headless {
		return hal.RunWindow(newApp, hal.WindowConfig{Width: cfg.Width, Height: cfg.Height})
	}

	err = hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Hz:          cfg.Hz,
		Ticks:       cfg.Ticks,
		SelectEvery: cfg.SelectEvery,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	return srv
}
