package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"
)

var runNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run backups in-process on SCHEDULE_CRON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closeLogs, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLogs()

		orchestrator, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		job := func() {
			if err := doBackup(ctx, orchestrator); err != nil {
				slog.ErrorContext(ctx, "Scheduled backup failed", "error", err)
			}
		}

		s := gocron.NewScheduler(time.Local)
		s.SingletonModeAll()
		if _, err := s.Cron(cfg.Backup.Schedule).Do(job); err != nil {
			return fmt.Errorf("error scheduling backup %q: %w", cfg.Backup.Schedule, err)
		}

		if runNow {
			job()
		}

		s.StartAsync()
		slog.InfoContext(ctx, "Scheduler started", "schedule", cfg.Backup.Schedule)

		<-ctx.Done()
		slog.InfoContext(context.WithoutCancel(ctx), "Stopping scheduler")
		s.Stop()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&runNow, "now", false, "run one backup before waiting for the schedule")
}
