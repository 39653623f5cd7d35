// Package cmd provides the command-line interface for the application.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibare/dbkeeper/internal/backup"
	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/logging"
	"github.com/hibare/dbkeeper/internal/notifiers"
	"github.com/hibare/dbkeeper/internal/retention"
	"github.com/hibare/dbkeeper/internal/snapshot"
	"github.com/hibare/dbkeeper/internal/storage"
)

// loadConfig reads the configuration and installs file logging. The returned function
// closes the log files.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	closeLogs, err := logging.Setup(cfg.Logger, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	return cfg, func() {
		if cErr := closeLogs(); cErr != nil {
			fmt.Fprintf(os.Stderr, "error closing log files: %v\n", cErr)
		}
	}, nil
}

func newOrchestrator(cfg *config.Config) (*backup.Orchestrator, error) {
	targets, err := storage.NewTargets(cfg)
	if err != nil {
		return nil, err
	}

	notify := notifiers.NewNotifier(cfg)
	if err := notify.InitStore(); err != nil {
		return nil, err
	}

	return backup.NewOrchestrator(
		cfg,
		snapshot.NewTaker(cfg),
		targets,
		retention.NewPruner(cfg),
		notify,
	), nil
}

func doBackup(ctx context.Context, orchestrator *backup.Orchestrator) error {
	report, err := orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("backup %s: %w", report.State(), err)
	}

	if failed := report.FailedUploads(); len(failed) > 0 {
		slog.WarnContext(ctx, "Snapshot kept locally but not uploaded everywhere", "failed_targets", len(failed))
	}
	return nil
}
