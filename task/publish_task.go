package task

import (
	"context"
	"log/slog"
	"time"
)

type SummaryPublisher interface {
	PublishAll(ctx context.Context) error
}

func NewPublishTask(logger *slog.Logger, pub SummaryPublisher) func() {
	return func() {
		logger.Debug("running publish task...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := pub.PublishAll(ctx); err != nil {
			logger.Error("publish task error", slog.Any("error", err))
			return
		}

		logger.Info("publish task done")
	}
}
