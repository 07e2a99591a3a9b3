package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angas/aircast-go/config"
	"github.com/robfig/cron/v3"
)

const maintenanceSchedule = "30 2 * * *"

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	MaintenanceTask func()
	PublishTask     func()
}

// NewTasks builds the scheduled tasks. pub may be nil when publishing is
// disabled.
func NewTasks(logger *slog.Logger, store MaintenanceStore, pub SummaryPublisher, cnfg *config.AppConfig) *Tasks {
	t := &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), store, cnfg),
	}
	if pub != nil {
		t.PublishTask = NewPublishTask(logger.With(slog.String("task", "publish")), pub)
	}
	return t
}

func (t *Tasks) Run() error {
	if _, err := t.cron.AddFunc(maintenanceSchedule, t.MaintenanceTask); err != nil {
		return fmt.Errorf("unable to schedule maintenance task: %w", err)
	}
	if t.PublishTask != nil {
		if _, err := t.cron.AddFunc(t.cnfg.Publish.RunAt, t.PublishTask); err != nil {
			return fmt.Errorf("unable to schedule publish task: %w", err)
		}
	}
	t.cron.Start()
	return nil
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
