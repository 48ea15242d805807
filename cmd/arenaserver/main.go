package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/arena/internal/ai"
	"github.com/udisondev/arena/internal/config"
	"github.com/udisondev/arena/internal/db"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/feed"
	"github.com/udisondev/arena/internal/sim"
)

const ArenaConfigPath = "config/arena.yaml"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ArenaConfigPath
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadArena(cfgPath)
	if err != nil {
		return fmt.Errorf("loading arena config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("arena server starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"enemies", len(cfg.Enemies))

	session, err := sim.NewSession(cfg)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	runner := sim.NewRunner(session, cfg.TickRate)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.History.Enabled {
		recorder, closeDB, err := openHistory(ctx, cfg.History)
		if err != nil {
			return err
		}
		defer closeDB()

		session.SetRunEndedFunc(recorder.Record)
		g.Go(func() error {
			return ignoreCanceled(recorder.Run(gctx))
		})
	}

	if cfg.Feed.Enabled {
		hub := feed.NewHub(feed.Config{
			QueueSize:    cfg.Feed.QueueSize,
			WriteTimeout: cfg.Feed.WriteTimeout,
		}, runner)
		session.Bus().SubscribeAll(func(ev event.Event) {
			hub.Publish(ev)
		})

		mux := http.NewServeMux()
		mux.Handle(cfg.Feed.Path, hub)
		srv := &http.Server{
			Addr:              cfg.Feed.BindAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			return ignoreCanceled(hub.Run(gctx))
		})
		g.Go(func() error {
			slog.Info("event feed listening", "addr", srv.Addr, "path", cfg.Feed.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("feed server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return ignoreCanceled(runner.Run(gctx))
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("arena server stopped",
		"ticks", session.Tick(),
		"deaths", session.Coordinator().Deaths())
	return nil
}

// openHistory connects run history storage and applies migrations.
func openHistory(ctx context.Context, cfg config.RunHistory) (*db.Recorder, func(), error) {
	dsn := cfg.Database.DSN()

	database, err := db.New(ctx, dsn, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, dsn); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	return db.NewRecorder(database.Runs(), 16), database.Close, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
