package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitesmith/sitesmith/build"
	"github.com/sitesmith/sitesmith/config"
	"github.com/sitesmith/sitesmith/metrics"
	"github.com/sitesmith/sitesmith/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitesmith.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output      string `short:"o" help:"Output directory (overrides configuration)"`
		Incremental bool   `short:"i" help:"Reuse unchanged pages from the previous build"`
		Report      string `help:"Write the build report as JSON to this file"`
	} `cmd:"" help:"Build the site once"`

	Watch struct {
		Output string `short:"o" help:"Output directory (overrides configuration)"`
	} `cmd:"" help:"Rebuild continuously as source files change"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runBuild(cfg); err != nil {
			slog.Error("build failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg); err != nil {
			slog.Error("watch failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("configuration written", "path", CLI.Config)
	}
}

func buildOptions(cfg *config.Config, output string, incremental bool) build.Options {
	opts := build.Defaults()
	opts.OutputDir = cfg.Output.Directory
	opts.AssetsDir = cfg.Output.AssetsDir
	opts.StaticDir = cfg.Output.StaticDir
	opts.BaseURL = cfg.Site.BaseURL
	opts.CleanOutput = *cfg.Output.Clean
	opts.Incremental = cfg.Incremental.Enabled || incremental
	opts.CachePath = cfg.Incremental.CachePath
	opts.StructuralStamp = structuralStamp(CLI.Config)
	if output != "" {
		opts.OutputDir = output
	}
	return opts
}

func runBuild(cfg *config.Config) error {
	reg, rts, err := assembleSite(cfg)
	if err != nil {
		return err
	}

	opts := buildOptions(cfg, CLI.Build.Output, CLI.Build.Incremental)
	report, err := build.Run(context.Background(), rts, reg, opts)
	if err != nil {
		return err
	}

	if CLI.Build.Report != "" {
		data, err := report.ToJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(CLI.Build.Report, data, 0o644); err != nil {
			return err
		}
		slog.Info("build report written", "path", CLI.Build.Report)
	}
	return nil
}

func runWatch(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := buildOptions(cfg, CLI.Watch.Output, true)
	opts.Dev = true
	opts.CleanOutput = false // churn on every save is pure waste in dev
	opts.Incremental = true

	if cfg.Watch.MetricsAddr != "" {
		promReg := prometheus.NewRegistry()
		opts.Metrics = metrics.NewPrometheusRecorder(promReg)
		go serveMetrics(ctx, cfg.Watch.MetricsAddr, promReg)
	}

	rebuild := func(ctx context.Context) error {
		// Content sources are re-read each run; a fresh registry per build
		// keeps stale entries out.
		reg, rts, err := assembleSite(cfg)
		if err != nil {
			return err
		}
		_, err = build.Run(ctx, rts, reg, opts)
		return err
	}

	if err := rebuild(ctx); err != nil {
		slog.Error("initial build failed", "error", err)
	}

	debounce := time.Duration(cfg.Watch.Debounce)
	ignore := []string{opts.OutputDir, opts.CachePath}
	w, err := watch.New(cfg.Watch.Dirs, debounce, ignore)
	if err != nil {
		return err
	}

	slog.Info("watching for changes", "dirs", cfg.Watch.Dirs, "debounce", debounce)
	if err := w.Run(ctx, rebuild); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("watch stopped")
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Warn("metrics server stopped", "error", err)
	}
}

// structuralStamp fingerprints everything that changes page structure
// without changing content: the binary itself (templates are compiled in)
// and the configuration file. A changed stamp forces a full rebuild.
func structuralStamp(configPath string) string {
	h := sha256.New()

	if exe, err := os.Executable(); err == nil {
		if f, err := os.Open(exe); err == nil {
			_, _ = io.Copy(h, f)
			_ = f.Close()
		}
	}
	if data, err := os.ReadFile(configPath); err == nil {
		h.Write(data)
	}

	return hex.EncodeToString(h.Sum(nil))
}
