package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "dceseed/contexts/document-emission/seed-service/application"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"
	contractsv1 "dceseed/contracts/gen/events/v1"
)

const (
	DefaultBurstCount = 5
	DefaultBurstGroup = "default-group"
	DefaultBurstDelay = time.Second

	burstAction = "PROCESS_DCE"
	burstStatus = "PENDING"
)

type SendBurstCommand struct {
	Count   int
	GroupID string
	Delay   time.Duration
}

type BurstOutcome struct {
	Index     int
	MessageID string
	Err       error
}

type SendBurstResult struct {
	QueueURL string
	Outcomes []BurstOutcome
}

func (r SendBurstResult) SuccessCount() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil {
			count++
		}
	}
	return count
}

func (r SendBurstResult) ErrorCount() int {
	return len(r.Outcomes) - r.SuccessCount()
}

// SendBurstUseCase pushes synthetic messages into one FIFO group without
// touching the record store. Each message gets a random deduplication id so
// repeated bursts are never collapsed.
type SendBurstUseCase struct {
	Queue       ports.MessageQueue
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	QueueName   string
	Logger      *slog.Logger
}

// Execute sends sequentially, sleeping Delay between sends but not after the
// last one. A failed send is recorded and the burst continues.
func (u SendBurstUseCase) Execute(ctx context.Context, cmd SendBurstCommand) (SendBurstResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Count < 0 || cmd.Delay < 0 {
		return SendBurstResult{}, domainerrors.ErrInvalidSeedRequest
	}
	groupID := valueOr(cmd.GroupID, DefaultBurstGroup)
	queueName := valueOr(u.QueueName, DefaultQueueName)

	handle, err := u.Queue.Resolve(ctx, queueName)
	if err != nil {
		logger.Error("burst queue resolution failed",
			"event", "seed_burst_queue_resolution_failed",
			"module", "document-emission/seed-service",
			"layer", "application",
			"queue", queueName,
			"error", err.Error(),
		)
		return SendBurstResult{}, fmt.Errorf("%w: %s: %w", domainerrors.ErrQueueResolution, queueName, err)
	}

	result := SendBurstResult{
		QueueURL: handle.URL,
		Outcomes: make([]BurstOutcome, 0, cmd.Count),
	}
	for i := 1; i <= cmd.Count; i++ {
		outcome := BurstOutcome{Index: i}
		receipt, err := u.sendOne(ctx, handle, groupID, i)
		if err != nil {
			outcome.Err = err
			logger.Warn("burst message send failed",
				"event", "seed_burst_send_failed",
				"module", "document-emission/seed-service",
				"layer", "application",
				"queue", handle.Name,
				"index", i,
				"error", err.Error(),
			)
		} else {
			outcome.MessageID = receipt.MessageID
			logger.Info("burst message sent",
				"event", "seed_burst_sent",
				"module", "document-emission/seed-service",
				"layer", "application",
				"queue", handle.Name,
				"index", i,
				"message_id", receipt.MessageID,
			)
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if i < cmd.Count && cmd.Delay > 0 {
			timer := time.NewTimer(cmd.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return result, nil
}

func (u SendBurstUseCase) sendOne(
	ctx context.Context,
	handle ports.QueueHandle,
	groupID string,
	index int,
) (ports.MessageReceipt, error) {
	correlationID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.MessageReceipt{}, fmt.Errorf("generate correlation id: %w", err)
	}
	deduplicationID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.MessageReceipt{}, fmt.Errorf("generate deduplication id: %w", err)
	}

	now := time.Now().UTC()
	if u.Clock != nil {
		now = u.Clock.Now().UTC()
	}
	body, err := json.Marshal(contractsv1.BurstSample{
		MessageIndex:  index,
		Timestamp:     formatTimestamp(now),
		CorrelationID: correlationID,
		Payload: contractsv1.BurstSamplePayload{
			Action:     burstAction,
			DocumentID: fmt.Sprintf("DOC-%05d", index),
			Status:     burstStatus,
		},
	})
	if err != nil {
		return ports.MessageReceipt{}, fmt.Errorf("%w: encode body: %w", domainerrors.ErrPublishFailed, err)
	}

	receipt, err := u.Queue.Send(ctx, handle, ports.QueueMessage{
		Body:            body,
		GroupID:         groupID,
		DeduplicationID: deduplicationID,
	})
	if err != nil {
		return ports.MessageReceipt{}, fmt.Errorf("%w: %w", domainerrors.ErrPublishFailed, err)
	}
	return receipt, nil
}
