// Command statedemo runs the saved-state demo host: a development state
// service, the demo component wired to it, and the HTTP API that exposes
// both. Run with --strategy session to keep records in memory only.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hostkit/statedemo/internal/api"
	"github.com/hostkit/statedemo/internal/demo"
	"github.com/hostkit/statedemo/internal/events"
	"github.com/hostkit/statedemo/internal/hostcfg"
	"github.com/hostkit/statedemo/internal/identity"
	"github.com/hostkit/statedemo/internal/statesvc"
	"github.com/hostkit/statedemo/internal/zeroconf"
)

func main() {
	var (
		addr     = flag.String("addr", ":8090", "HTTP listen address")
		cfgDir   = flag.String("config-dir", "", "config directory (default: ~/.config/statedemo)")
		dataDir  = flag.String("data-dir", "", "state record directory (default: <config-dir>/data)")
		strategy = flag.String("strategy", "persistent", "storage strategy: persistent or session")
		latency  = flag.Duration("latency", 0, "simulated state service latency per call")
		saveRate = flag.Int("save-rate", 0, "max saves per minute accepted by the service (0 = unlimited)")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	var strat statesvc.Strategy
	switch *strategy {
	case string(statesvc.StrategyPersistent):
		strat = statesvc.StrategyPersistent
	case string(statesvc.StrategySession):
		strat = statesvc.StrategySession
	default:
		slog.Error("unknown strategy", "strategy", *strategy)
		os.Exit(1)
	}

	// Resolve config directory
	if *cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = filepath.Join(home, ".config", "statedemo")
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}
	if *dataDir == "" {
		*dataDir = filepath.Join(*cfgDir, "data")
	}
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		slog.Error("cannot create data directory", "path", *dataDir, "err", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Development state service
	var devOpts []statesvc.DevOption
	if *latency > 0 {
		devOpts = append(devOpts, statesvc.WithLatency(*latency))
	}
	if *saveRate > 0 {
		devOpts = append(devOpts, statesvc.WithWriteQuota(*saveRate))
	}
	svc := statesvc.NewDevService(*dataDir, devOpts...)

	// Event bus
	bus := events.NewBus()

	// Display configuration with hot reload
	hostCfg := hostcfg.NewService(*cfgDir)
	defer hostCfg.Close()

	// Demo component: registers with the service and subscribes its hooks
	comp := demo.New(svc, bus, demo.WithStrategy(strat))

	version := identity.GetVersion(*cfgDir)
	hostname := identity.GetHostname()
	info := api.Info{Name: "statedemo", Version: version, Hostname: hostname}

	// Zeroconf mDNS registration
	port := 8090
	if parts := strings.SplitN(*addr, ":", 2); len(parts) == 2 && parts[1] != "" {
		if p, err := strconv.Atoi(parts[1]); err == nil {
			port = p
		}
	}
	txt := []string{"version=" + version, "strategy=" + string(strat)}
	zc := zeroconf.New(hostname, port, txt)
	go func() {
		if err := zc.Start(ctx); err != nil {
			slog.Warn("zeroconf failed", "err", err)
		}
	}()

	// HTTP server
	router := api.NewRouter(comp, hostCfg, svc, bus, info)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("statedemo listening",
			"addr", *addr,
			"strategy", strat,
			"config", *cfgDir,
			"data", *dataDir,
			"version", version,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()

	// Release hooks and any pending autosave
	comp.Close()

	// Flush pending record writes
	if err := svc.Close(); err != nil {
		slog.Warn("failed to flush state records", "err", err)
	}

	// Graceful HTTP shutdown
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}
