package workers

import (
	"context"
	"log/slog"

	application "dceseed/contexts/document-emission/seed-service/application"
	"dceseed/contexts/document-emission/seed-service/ports"
)

// KeepAlive re-resolves the seed queue so the queue client keeps a warm
// connection while the process idles after a seed run.
type KeepAlive struct {
	Queue     ports.MessageQueue
	QueueName string
	Logger    *slog.Logger
}

func (k KeepAlive) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(k.Logger)
	handle, err := k.Queue.Resolve(ctx, k.QueueName)
	if err != nil {
		logger.Warn("keep-alive queue resolution failed",
			"event", "seed_keepalive_failed",
			"module", "document-emission/seed-service",
			"layer", "worker",
			"queue", k.QueueName,
			"error", err.Error(),
		)
		return err
	}
	logger.Debug("keep-alive queue resolved",
		"event", "seed_keepalive_succeeded",
		"module", "document-emission/seed-service",
		"layer", "worker",
		"queue", handle.Name,
		"queue_url", handle.URL,
	)
	return nil
}
