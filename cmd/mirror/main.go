// mirror: Behavioral analysis service for interview coaching
// Accepts WebSocket connections from browsers and streams live metrics
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mirrorlabs/interview-mirror/internal/config"
	"github.com/mirrorlabs/interview-mirror/internal/log"
	"github.com/mirrorlabs/interview-mirror/pkg/session"
	"github.com/mirrorlabs/interview-mirror/pkg/web"
)

var (
	version    = "1.0.0"
	configPath = flag.String("config", "config.yaml", "Path to YAML config file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	log.Init(cfg.Server.LogLevel)
	log.Info("interview mirror starting", "version", version, "port", cfg.Server.Port)

	manager := session.NewManager(cfg.SessionConfig())
	server := web.NewServer(cfg.Server.Port, manager)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown", "error", err)
		}
	}
}
