// Command monitor runs the Monitor process: it subscribes to every zone's
// sensor topics and writes each reading to the Knowledge store (spec §4.3).
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
	"poultrymapek/internal/monitor"
)

func main() {
	cfg := appconfig.FromEnv()
	log, logFile := logging.Init("monitor")
	if logFile != nil {
		defer logFile.Close()
	}

	b, err := bus.Connect(bus.Options{
		BrokerURL:    cfg.BrokerURL,
		ClientID:     cfg.ClientIDPrefix + "-monitor",
		Username:     cfg.BrokerUser,
		Password:     cfg.BrokerPass,
		ConnectRetry: false,
	}, log)
	if err != nil {
		log.Error("failed to connect to broker, exiting", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	m := metrics.New("monitor")
	store := knowledge.New(knowledge.Options{
		Window:      cfg.KnowledgeWindow,
		Durable:     cfg.KnowledgeDurable,
		DurablePath: cfg.KnowledgeLogPath,
	}, log)
	defer store.Close()

	mon := monitor.New(b, store, m, log)
	if err := mon.Start(context.Background()); err != nil {
		log.Error("failed to start monitor, exiting", "error", err)
		os.Exit(1)
	}
	defer mon.Stop()

	httpSrv := httpapi.New(cfg.HTTPBind, m, func() (bool, string) {
		if !b.Connected() {
			return false, "broker disconnected"
		}
		return true, ""
	}, log)
	httpSrv.Start()
	defer httpSrv.Close()

	log.Info("monitor running")
	waitForShutdown(log)
}

func waitForShutdown(log *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutdown signal received", "signal", s.String())
}
