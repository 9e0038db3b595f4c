// Command analyzer runs the Analyzer process: it periodically reduces
// Knowledge readings into a ZoneStatus per zone and publishes it (spec §4.4).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poultrymapek/internal/analyzer"
	"poultrymapek/internal/appconfig"
	"poultrymapek/internal/bus"
	"poultrymapek/internal/httpapi"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/logging"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/topology"
)

func main() {
	cfg := appconfig.FromEnv()
	log, logFile := logging.Init("analyzer")
	if logFile != nil {
		defer logFile.Close()
	}

	b, err := bus.Connect(bus.Options{
		BrokerURL:    cfg.BrokerURL,
		ClientID:     cfg.ClientIDPrefix + "-analyzer",
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
	m := metrics.New("analyzer")
	store := knowledge.New(knowledge.Options{
		Window:      cfg.KnowledgeWindow,
		Durable:     cfg.KnowledgeDurable,
		DurablePath: cfg.KnowledgeLogPath,
	}, log)
	defer store.Close()

	interval := time.Duration(cfg.StatusIntervalS * float64(time.Second))
	a := analyzer.New(b, resolver, store, m, interval, log)
	a.Start(context.Background())
	defer a.Stop()

	httpSrv := httpapi.New(cfg.HTTPBind, m, func() (bool, string) {
		if !b.Connected() {
			return false, "broker disconnected"
		}
		return true, ""
	}, log)
	httpSrv.Start()
	defer httpSrv.Close()

	log.Info("analyzer running", "interval", interval)
	waitForShutdown(log)
}

func waitForShutdown(log *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutdown signal received", "signal", s.String())
}
