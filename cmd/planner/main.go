// Command planner runs the Planner process: it consumes each zone's
// ZoneStatus and publishes a conflict-free, rate-limited Plan (spec §4.5).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"poultrymapek/internal/appconfig"
	"poultrymapek/internal/bus"
	"poultrymapek/internal/httpapi"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/logging"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/planner"
	"poultrymapek/internal/topology"
)

func main() {
	cfg := appconfig.FromEnv()
	log, logFile := logging.Init("planner")
	if logFile != nil {
		defer logFile.Close()
	}

	b, err := bus.Connect(bus.Options{
		BrokerURL:    cfg.BrokerURL,
		ClientID:     cfg.ClientIDPrefix + "-planner",
		Username:     cfg.BrokerUser,
		Password:     cfg.BrokerPass,
		ConnectRetry: false,
	}, log)
	if err != nil {
		log.Error("failed to connect to broker, exiting", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	resolver := topology.NewResolver(cfg.TopologyPath)
	m := metrics.New("planner")
	store := knowledge.New(knowledge.Options{
		Window:      cfg.KnowledgeWindow,
		Durable:     cfg.KnowledgeDurable,
		DurablePath: cfg.KnowledgeLogPath,
	}, log)
	defer store.Close()

	mode := planner.ModeStatus
	if cfg.PlannerMode == string(planner.ModeStarvation) {
		mode = planner.ModeStarvation
	}

	p := planner.New(b, resolver, store, m, mode, log)
	if err := p.Start(context.Background()); err != nil {
		log.Error("failed to start planner, exiting", "error", err)
		os.Exit(1)
	}
	defer p.Stop()

	httpSrv := httpapi.New(cfg.HTTPBind, m, func() (bool, string) {
		if !b.Connected() {
			return false, "broker disconnected"
		}
		return true, ""
	}, log)
	httpSrv.Start()
	defer httpSrv.Close()

	log.Info("planner running", "mode", mode)
	waitForShutdown(log)
}

func waitForShutdown(log *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutdown signal received", "signal", s.String())
}
