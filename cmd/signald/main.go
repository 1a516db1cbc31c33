// Command signald runs the signal engine: the HTTP API, the websocket hub
// and the background signal worker, all over one DuckDB store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/api"
	"github.com/signalmaster/signal-engine/internal/condition"
	"github.com/signalmaster/signal-engine/internal/config"
	"github.com/signalmaster/signal-engine/internal/fanout"
	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/notification"
	"github.com/signalmaster/signal-engine/internal/store"
	"github.com/signalmaster/signal-engine/internal/worker"
	"github.com/signalmaster/signal-engine/pkg/marketdata"
)

const shutdownTimeout = 10 * time.Second

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if key := os.Getenv("POLYGON_API_KEY"); key != "" && cfg.MarketData.PolygonAPIKey == "" {
		cfg.MarketData.PolygonAPIKey = key
	}

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync()

	st, err := store.NewStore(cfg.Database.Path, l)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Initialize(); err != nil {
		return err
	}

	provider, err := marketdata.NewProvider(
		marketdata.ProviderType(cfg.MarketData.Provider),
		marketdata.FactoryConfig{
			PolygonAPIKey: cfg.MarketData.PolygonAPIKey,
			CandleReader:  st,
		},
	)
	if err != nil {
		return err
	}

	hub := notification.NewHub(l)

	var notifier notification.Notifier
	if cfg.Push.Enabled {
		notifier = notification.NewExpoNotifier(l)
	} else {
		notifier = notification.NewLogNotifier(l)
	}

	fo := fanout.NewFanout(st, notifier, hub, l)

	w := worker.NewWorker(
		worker.Config{
			BaseTick:          cfg.Worker.BaseTick,
			SubscriptionDelay: cfg.Worker.SubscriptionDelay,
			Bars:              cfg.Worker.Bars,
			FetchTimeout:      cfg.Worker.FetchTimeout,
		},
		st, provider, condition.NewEvaluator(l), fo, l,
	)

	server := api.NewServer(cfg.Server.Addr, st, fo, hub, l)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)

		if err := w.Run(runCtx); err != nil {
			l.Error("worker exited with error", zap.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-runCtx.Done():
		l.Info("shutdown signal received")
	case err := <-serverErr:
		stop()

		if err != nil {
			l.Error("api server failed", zap.Error(err))

			<-workerDone

			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("api server shutdown failed", zap.Error(err))
	}

	<-workerDone
	l.Info("signal engine stopped")

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "signald",
		Usage: "Run the trading signal engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
