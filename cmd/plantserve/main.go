// Command plantserve runs the HTTP classification service.
//
// Usage: plantserve [-config config.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mediplant/internal/classify"
	"mediplant/internal/config"
	"mediplant/internal/history"
	"mediplant/internal/logging"
	"mediplant/internal/server"
	"mediplant/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting plantserve", zap.String("version", version.String()))

	classifier := classify.Load(cfg.Models.Dir)
	if classifier.Available() {
		log.Info("artifacts loaded",
			zap.String("dir", cfg.Models.Dir),
			zap.Int("classes", len(classifier.Labels())),
			zap.Int("resolution", classifier.Config().Resolution))
	} else {
		// Deliberate: serve in the degraded state so the host stays up
		// and reports clean failures instead of crash-looping.
		log.Warn("serving without artifacts, classifications will fail cleanly",
			zap.String("dir", cfg.Models.Dir),
			zap.Error(classifier.Err()))
	}

	var store *history.Store
	if cfg.Server.HistoryDBPath != "" {
		if store, err = history.Open(cfg.Server.HistoryDBPath); err != nil {
			log.Warn("history store unavailable", zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, classifier, store, log)
	if err := srv.Run(ctx); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}
