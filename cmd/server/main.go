// Package main is the entry point for the cycle screening server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/api"
	"github.com/lunacycle-screening-server/internal/catalog"
	"github.com/lunacycle-screening-server/internal/config"
	"github.com/lunacycle-screening-server/internal/database"
	"github.com/lunacycle-screening-server/internal/domain"
	"github.com/lunacycle-screening-server/internal/scheduler"
	"github.com/lunacycle-screening-server/internal/service"
	"github.com/lunacycle-screening-server/internal/store"
)

func main() {
	cfgManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfgManager.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg := cfgManager.GetConfig()

	logger := newLogger(cfg.Logging)

	repo, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open storage backend")
	}
	defer closeStore()

	policy := policyFromConfig(cfg.Screening)
	screening := service.NewScreeningService(
		logger, catalog.Default(), repo, repo, repo, policy)

	if cfg.Scheduler.Enabled {
		notifier := scheduler.NewResilientNotifier(scheduler.NewLogNotifier(logger), logger)
		sweep := scheduler.NewFollowUpScheduler(repo, notifier, logger, cfg.Scheduler.CronSpec)
		if err := sweep.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start follow-up scheduler")
		}
		defer sweep.Stop()
	}

	server := api.NewServer(cfg, logger, screening)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("HTTP server failed")
	}

	logger.Info("Cycle screening server stopped")
}

// storeBackend is the union of the repository interfaces the server
// wires: history source, diagnosis and prediction repositories, and the
// scheduler's follow-up source.
type storeBackend interface {
	domain.HistorySource
	domain.DiagnosisRepository
	domain.PredictionRepository
	scheduler.FollowUpSource
}

func openStore(cfg *config.Config, logger *logrus.Logger) (storeBackend, func(), error) {
	switch cfg.Database.Backend {
	case "postgres":
		runner, err := database.NewMigrationRunner(cfg.Database.PostgresURL, cfg.Database.MigrationsPath, logger)
		if err != nil {
			return nil, nil, err
		}
		defer runner.Close()
		if err := runner.Up(); err != nil {
			return nil, nil, err
		}

		st, err := store.NewPostgresStoreFromURL(cfg.Database.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	default:
		st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	}
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func policyFromConfig(sc config.ScreeningConfig) service.Policy {
	p := service.DefaultPolicy()
	if sc.ActivationThreshold > 0 {
		p.ActivationThreshold = sc.ActivationThreshold
	}
	if sc.SymptomWindowDays > 0 {
		p.SymptomWindowDays = sc.SymptomWindowDays
	}
	if sc.DedupWindowDays > 0 {
		p.DedupWindowDays = sc.DedupWindowDays
	}
	if sc.FollowUpDays > 0 {
		p.FollowUpDays = sc.FollowUpDays
	}
	if sc.SymptomWeight > 0 {
		p.SymptomWeight = sc.SymptomWeight
	}
	if sc.RiskFactorWeight > 0 {
		p.RiskFactorWeight = sc.RiskFactorWeight
	}
	if sc.IrregularityWeight > 0 {
		p.IrregularityWeight = sc.IrregularityWeight
	}
	if sc.DefaultCycleLength > 0 {
		p.DefaultCycleLength = sc.DefaultCycleLength
	}
	if sc.DefaultPeriodLength > 0 {
		p.DefaultPeriodLength = sc.DefaultPeriodLength
	}
	return p
}
