// Command babelgif is the Telegram inline translation-GIF bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mzhaase/babelgif/internal/allowlist"
	"github.com/mzhaase/babelgif/internal/coalesce"
	"github.com/mzhaase/babelgif/internal/config"
	"github.com/mzhaase/babelgif/internal/health"
	"github.com/mzhaase/babelgif/internal/observe"
	"github.com/mzhaase/babelgif/internal/pipeline"
	"github.com/mzhaase/babelgif/internal/telegram"
	"github.com/mzhaase/babelgif/pkg/render"
	"github.com/mzhaase/babelgif/pkg/translate"
	"github.com/mzhaase/babelgif/pkg/upload"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "babelgif: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "babelgif: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("babelgif starting",
		"config", *configPath,
		"version", version,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "babelgif",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Access control ────────────────────────────────────────────────────────
	allow, err := allowlist.Load(cfg.Telegram.AllowlistPath)
	if err != nil {
		slog.Error("failed to load allowlist", "err", err)
		return 1
	}
	if allow.Len() == 0 {
		slog.Warn("allowlist is empty; every inline query will be denied",
			"path", cfg.Telegram.AllowlistPath)
	}

	// ── Pipeline stages ───────────────────────────────────────────────────────
	catalog := translate.DefaultCatalog()

	translator, err := translate.New(cfg.Translate.Endpoint, catalog,
		translate.WithTimeout(cfg.Translate.Timeout.Std()))
	if err != nil {
		slog.Error("failed to build translator", "err", err)
		return 1
	}

	var renderOpts []render.Option
	if len(cfg.Render.LatinFonts) > 0 {
		renderOpts = append(renderOpts, render.WithLatinFonts(cfg.Render.LatinFonts))
	}
	if len(cfg.Render.NonLatinFonts) > 0 {
		renderOpts = append(renderOpts, render.WithNonLatinFonts(cfg.Render.NonLatinFonts))
	}
	renderer := render.New(cfg.Render.Spec(), renderOpts...)

	uploader := upload.New(cfg.Upload.Endpoint,
		upload.WithTimeout(cfg.Upload.Timeout.Std()))

	orch := pipeline.New(translator, renderer, uploader)

	// ── Coalescer ─────────────────────────────────────────────────────────────
	coalescer := coalesce.New(orch.Run,
		coalesce.WithDebounce(cfg.Pipeline.DebounceDelay.Std()),
		coalesce.WithDeadline(cfg.Pipeline.Deadline.Std()),
	)
	defer coalescer.Close()

	// ── Telegram bot ──────────────────────────────────────────────────────────
	bot, err := telegram.NewBot(cfg.Telegram.Token, func(a telegram.Answerer) *telegram.Handler {
		return telegram.NewHandler(allow, catalog, coalescer, a)
	})
	if err != nil {
		slog.Error("failed to connect to telegram", "err", err)
		return 1
	}
	slog.Info("telegram bot authenticated", "bot", bot.Username())

	// ── Ops HTTP server (health, metrics) ─────────────────────────────────────
	var opsServer *http.Server
	if cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		health.NewEndpoints(
			health.Probe{Name: "allowlist", Run: func(context.Context) error {
				if allow.Len() == 0 {
					return errors.New("allowlist is empty")
				}
				return nil
			}},
		).Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())

		opsServer = &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           observe.Middleware(observe.DefaultMetrics())(mux),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("ops server error", "err", err)
			}
		}()
		slog.Info("ops server listening", "addr", cfg.Server.ListenAddr)
	}

	printStartupSummary(cfg, allow.Len(), catalog.Len())
	slog.Info("bot ready — press Ctrl+C to shut down")

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("telegram polling error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")

	coalescer.Close()

	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("ops server shutdown error", "err", err)
		}
	}

	slog.Info("goodbye")
	return 0
}

// printStartupSummary writes a human-readable overview of the effective
// configuration to stdout.
func printStartupSummary(cfg *config.Config, allowed, languages int) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        babelgif — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	fmt.Printf("║ allowed users     %-20d║\n", allowed)
	fmt.Printf("║ languages         %-20d║\n", languages)
	fmt.Printf("║ debounce          %-20s║\n", cfg.Pipeline.DebounceDelay.Std())
	fmt.Printf("║ run deadline      %-20s║\n", cfg.Pipeline.Deadline.Std())
	fmt.Printf("║ frame count       %-20d║\n", cfg.Render.Spec().FrameCount)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
