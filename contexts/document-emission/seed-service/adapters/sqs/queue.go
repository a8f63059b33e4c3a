package sqsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
)

// API is the slice of the SQS client the queue adapter needs.
type API interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Queue sends FIFO messages through SQS. The underlying client is safe for
// concurrent use, so one Queue serves every publish goroutine.
type Queue struct {
	client API
	logger *slog.Logger
}

func NewQueue(client API, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{client: client, logger: logger}
}

func (q *Queue) Resolve(ctx context.Context, queueName string) (ports.QueueHandle, error) {
	queueName = strings.TrimSpace(queueName)
	if queueName == "" {
		return ports.QueueHandle{}, errors.New("queue name is required")
	}
	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		q.logger.Warn("sqs get queue url failed",
			"event", "seed_sqs_resolve_failed",
			"module", "document-emission/seed-service",
			"layer", "adapter",
			"queue", queueName,
			"error", err.Error(),
		)
		return ports.QueueHandle{}, err
	}
	return ports.QueueHandle{
		Name: queueName,
		URL:  aws.ToString(out.QueueUrl),
	}, nil
}

func (q *Queue) Send(ctx context.Context, handle ports.QueueHandle, message ports.QueueMessage) (ports.MessageReceipt, error) {
	if strings.TrimSpace(handle.URL) == "" {
		return ports.MessageReceipt{}, errors.New("queue handle is not resolved")
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(handle.URL),
		MessageBody: aws.String(string(message.Body)),
	}
	if message.GroupID != "" {
		input.MessageGroupId = aws.String(message.GroupID)
	}
	if message.DeduplicationID != "" {
		input.MessageDeduplicationId = aws.String(message.DeduplicationID)
	}

	out, err := q.client.SendMessage(ctx, input)
	if err != nil {
		classified := classifyError(err)
		q.logger.Warn("sqs send message failed",
			"event", "seed_sqs_send_failed",
			"module", "document-emission/seed-service",
			"layer", "adapter",
			"queue", handle.Name,
			"message_group_id", message.GroupID,
			"deduplication_id", message.DeduplicationID,
			"error", classified.Error(),
		)
		return ports.MessageReceipt{}, classified
	}
	return ports.MessageReceipt{
		MessageID:      aws.ToString(out.MessageId),
		SequenceNumber: aws.ToString(out.SequenceNumber),
	}, nil
}

func classifyError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "ThrottlingException", "RequestThrottled", "KmsThrottled":
		return fmt.Errorf("%w: %w", domainerrors.ErrQueueThrottled, err)
	default:
		return err
	}
}
