// Command supervisor runs the Simulator-Supervisor process: it reconciles
// live per-zone simulator workers against the topology document and keeps
// them running as the topology changes (spec §4.2).
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
	"poultrymapek/internal/logging"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/supervisor"
	"poultrymapek/internal/topology"
)

func main() {
	cfg := appconfig.FromEnv()
	log, logFile := logging.Init("supervisor")
	if logFile != nil {
		defer logFile.Close()
	}

	b, err := bus.Connect(bus.Options{
		BrokerURL:    cfg.BrokerURL,
		ClientID:     cfg.ClientIDPrefix + "-supervisor",
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
	m := metrics.New("supervisor")
	sup := supervisor.New(b, resolver, m, cfg.SimStepS, cfg.SensorIntervalS, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup.Reconcile(ctx, resolver.Document())

	stopWatch, err := topology.Watch(resolver, log, func(doc *topology.Document) {
		sup.Reconcile(ctx, doc)
	})
	if err != nil {
		log.Warn("topology file watch unavailable, topology changes will not be picked up", "error", err)
	} else {
		defer stopWatch()
	}

	httpSrv := httpapi.New(cfg.HTTPBind, m, func() (bool, string) {
		if !b.Connected() {
			return false, "broker disconnected"
		}
		return true, ""
	}, log)
	httpSrv.Start()
	defer httpSrv.Close()

	log.Info("supervisor running", "zones", sup.ActiveCount())
	waitForShutdown(log)
	sup.StopAll()
}

func waitForShutdown(log *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutdown signal received", "signal", s.String())
}
