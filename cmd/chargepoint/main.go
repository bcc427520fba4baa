// Command chargepoint runs a standalone OCPP 1.6 Charge Point client
// against a central system, using synthetic/logging defaults for the
// hardware callbacks an embedder would normally supply.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-ocpp/chargepoint/internal/chargepoint"
	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/events"
	"github.com/go-ocpp/chargepoint/internal/events/kafkasink"
	"github.com/go-ocpp/chargepoint/internal/hostapi"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/metrics"
	"github.com/go-ocpp/chargepoint/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Async:  cfg.Log.Async,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitGlobalLogger(&logger.Config{
		Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output, Async: cfg.Log.Async,
	}); err != nil {
		log.Fatalf("failed to install global logger: %v", err)
	}
	log.Info("logger initialized")

	gw, err := storage.Open(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	log.Info("storage opened")

	var sink events.Sink
	if cfg.Kafka.Enabled {
		producer, err := kafkasink.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("failed to initialize Kafka sink: %v", err)
		}
		sink = producer
		log.Info("Kafka event sink initialized")
	}

	hw := chargepoint.Hardware{
		Meters:      hostapi.NewSyntheticMeter(100),
		Files:       hostapi.NewFileTransfer(workDir()),
		Transaction: hostapi.NewRelayLog(),
	}

	cp, err := chargepoint.New(cfg, gw, hw, sink)
	if err != nil {
		log.Fatalf("failed to assemble charge point: %v", err)
	}

	metrics.RegisterMetrics()
	go startMetricsServer(cfg.GetMetricsAddr(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := cp.Start(ctx); err != nil {
		log.Fatalf("failed to start charge point: %v", err)
	}
	log.Infof("charge point %s starting against %s", cfg.CentralSystem.ChargePointIdentifier, cfg.CentralSystem.Url)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	cp.Stop()
	if err := gw.Close(); err != nil {
		log.Errorf("error closing storage: %v", err)
	}
	log.Info("shutdown complete")
}

func workDir() string {
	dir := os.Getenv("CHARGEPOINT_WORKDIR")
	if dir == "" {
		dir = "./data/transfers"
	}
	return dir
}

func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Infof("metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("metrics server failed: %v", err)
	}
}
