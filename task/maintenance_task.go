package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/aircast-go/config"
)

type MaintenanceStore interface {
	Backup(ctx context.Context) (string, error)
	PurgeBackups(ctx context.Context, retentionDays int) error
	PurgeLog(ctx context.Context, maxEntries int) error
}

func NewMaintenanceTask(logger *slog.Logger, store MaintenanceStore, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if path, err := store.Backup(ctx); err != nil {
			logger.Error("database backup error", slog.Any("error", err))
		} else {
			logger.Debug("database backup created", slog.String("path", path))
		}

		if err := store.PurgeBackups(ctx, cnfg.Database.GetBackupRetentionDays()); err != nil {
			logger.Error("backup maintenance error", slog.Any("error", err))
		}

		if err := store.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
		}

		logger.Info("maintenance task done")
	}
}
