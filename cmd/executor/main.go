// Command executor runs the Executor process: it translates each Plan into
// per-actuator commands, archives them, and performs the cold-boot all-OFF
// sweep on startup (spec §4.6).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"poultrymapek/internal/appconfig"
	"poultrymapek/internal/bus"
	"poultrymapek/internal/executor"
	"poultrymapek/internal/httpapi"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/logging"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/topology"
)

func main() {
	cfg := appconfig.FromEnv()
	log, logFile := logging.Init("executor")
	if logFile != nil {
		defer logFile.Close()
	}

	b, err := bus.Connect(bus.Options{
		BrokerURL:    cfg.BrokerURL,
		ClientID:     cfg.ClientIDPrefix + "-executor",
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
	m := metrics.New("executor")
	store := knowledge.New(knowledge.Options{
		Window:      cfg.KnowledgeWindow,
		Durable:     cfg.KnowledgeDurable,
		DurablePath: cfg.KnowledgeLogPath,
	}, log)
	defer store.Close()

	e := executor.New(b, resolver, store, m, log)
	if err := e.Start(context.Background()); err != nil {
		log.Error("failed to start executor, exiting", "error", err)
		os.Exit(1)
	}
	defer e.Stop()

	httpSrv := httpapi.New(cfg.HTTPBind, m, func() (bool, string) {
		if !b.Connected() {
			return false, "broker disconnected"
		}
		return true, ""
	}, log)
	httpSrv.Start()
	defer httpSrv.Close()

	log.Info("executor running")
	waitForShutdown(log)
}

func waitForShutdown(log *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutdown signal received", "signal", s.String())
}
