package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horizon/internal/shared/config"
	"horizon/internal/shared/logger"
	"horizon/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(!cfg.IsProduction())

	var telemetryShutdown func(context.Context) error
	if cfg.Telemetry.Enabled {
		telemetryShutdown, err = telemetry.Init(context.Background(), telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.App.Env,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			return err
		}
	}

	deps, err := NewDependencies(cfg, log)
	if err != nil {
		return err
	}

	handler := SetupRoutes(deps, cfg, log)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := StartServer(addr, handler, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, telemetryShutdown, 30*time.Second, log)
	return nil
}
