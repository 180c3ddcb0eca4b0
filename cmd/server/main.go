package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dpetrov/elevator-cab/internal/drv"
	"github.com/dpetrov/elevator-cab/internal/engine"
	"github.com/dpetrov/elevator-cab/internal/heartbeat"
	httpPkg "github.com/dpetrov/elevator-cab/internal/http"
	"github.com/dpetrov/elevator-cab/internal/infra/config"
	"github.com/dpetrov/elevator-cab/internal/infra/health"
	"github.com/dpetrov/elevator-cab/internal/infra/logging"
	"github.com/dpetrov/elevator-cab/internal/queue"
	"github.com/dpetrov/elevator-cab/internal/session"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		slog.Error("failed to initialize configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.InfoContext(ctx, "elevator cab starting up",
		slog.String("environment", cfg.Environment),
		slog.Int("cab_id", cfg.CabID),
		slog.Int("min_floor", cfg.MinFloor),
		slog.Int("max_floor", cfg.MaxFloor),
		slog.Int("port", cfg.Port),
		slog.Int("session_port", cfg.SessionPort))

	bounds := cfg.Bounds()
	driver := drv.NewSimulatedDriver(bounds.Min, bounds.Max, cfg.TransitPerFloor)
	hb := heartbeat.NewWatchdog(cfg.HeartbeatThreshold)
	cmds := queue.NewCommandQueue(32)
	outbound := queue.NewStateChangeQueue()

	engCfg := engine.Config{
		WaitThreshold: cfg.WaitThreshold,
		KeepAlive:     cfg.KeepAlive,
		Speed:         cfg.Speed,
	}
	eng := engine.New(cfg.CabID, bounds, driver, hb, cmds, outbound, engCfg,
		slog.With(slog.String("component", "engine")))

	eng.Start()

	globalState := session.NewGlobalState(bounds)
	relay := session.NewRelay(cfg.SessionPort, globalState, slog.With(slog.String("component", "relay")))
	go relay.Pump(outbound)

	healthService := health.NewHealthService(time.Second)
	healthService.Register(health.NewLivenessChecker())
	healthService.Register(health.NewReadinessChecker())
	healthService.Register(health.NewSystemResourceChecker(0.9, 10000))
	healthService.Register(health.NewCabChecker(cfg.CabID, hb, eng))

	server := httpPkg.NewServer(cfg, eng, cmds, healthService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 2)

	go func() {
		slog.InfoContext(ctx, "starting command server", slog.Int("port", cfg.Port))
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	go func() {
		slog.InfoContext(ctx, "starting session relay", slog.Int("port", cfg.SessionPort))
		if err := relay.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	select {
	case err := <-serverErrCh:
		slog.ErrorContext(ctx, "server failed to start", slog.String("error", err.Error()))
		shutdown(ctx, cfg, server, relay, eng)
		os.Exit(1)
	case sig := <-quit:
		slog.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
	}

	cancel()
	shutdown(ctx, cfg, server, relay, eng)
	slog.InfoContext(ctx, "elevator cab shutdown complete")
}

func shutdown(ctx context.Context, cfg *config.Config, server *httpPkg.Server, relay *session.Relay, eng *engine.Engine) {
	if err := server.Shutdown(); err != nil {
		slog.Error("command server shutdown failed", slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := relay.Shutdown(shutdownCtx); err != nil {
		slog.Error("session relay shutdown failed", slog.String("error", err.Error()))
	}

	eng.Terminate()
}
