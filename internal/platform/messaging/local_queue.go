package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"dceseed/contexts/document-emission/seed-service/ports"
)

// DefaultDeduplicationWindow matches the SQS FIFO deduplication interval.
const DefaultDeduplicationWindow = 5 * time.Minute

var (
	ErrQueueNotFound   = errors.New("queue does not exist")
	ErrMissingGroupID  = errors.New("fifo queue requires a message group id")
	ErrUnresolvedQueue = errors.New("queue handle is not resolved")
)

// DeliveredMessage is a message accepted by the local queue, in delivery order.
type DeliveredMessage struct {
	MessageID       string
	SequenceNumber  string
	GroupID         string
	DeduplicationID string
	Body            []byte
	SentAt          time.Time
}

// LocalQueue is the in-process queue used when no broker is configured.
// It keeps FIFO order per queue and collapses sends that reuse a
// deduplication id inside the deduplication window.
type LocalQueue struct {
	mu          sync.Mutex
	queues      map[string]*localQueueState
	dedupWindow time.Duration
	sequence    uint64
	now         func() time.Time
	logger      *slog.Logger
}

type localQueueState struct {
	messages []DeliveredMessage
	dedup    map[string]dedupEntry
}

type dedupEntry struct {
	receipt   ports.MessageReceipt
	expiresAt time.Time
}

func NewLocalQueue(queueNames []string, dedupWindow time.Duration, logger *slog.Logger) *LocalQueue {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDeduplicationWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	q := &LocalQueue{
		queues:      make(map[string]*localQueueState, len(queueNames)),
		dedupWindow: dedupWindow,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
	for _, name := range queueNames {
		q.CreateQueue(name)
	}
	return q
}

// CreateQueue declares a queue; declaring an existing queue is a no-op.
func (q *LocalQueue) CreateQueue(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queues[name]; !ok {
		q.queues[name] = &localQueueState{dedup: make(map[string]dedupEntry)}
	}
}

func (q *LocalQueue) Resolve(ctx context.Context, queueName string) (ports.QueueHandle, error) {
	if err := ctx.Err(); err != nil {
		return ports.QueueHandle{}, err
	}
	queueName = strings.TrimSpace(queueName)
	q.mu.Lock()
	_, ok := q.queues[queueName]
	q.mu.Unlock()
	if !ok {
		return ports.QueueHandle{}, fmt.Errorf("%w: %s", ErrQueueNotFound, queueName)
	}
	return ports.QueueHandle{Name: queueName, URL: "local://" + queueName}, nil
}

func (q *LocalQueue) Send(ctx context.Context, handle ports.QueueHandle, message ports.QueueMessage) (ports.MessageReceipt, error) {
	if err := ctx.Err(); err != nil {
		return ports.MessageReceipt{}, err
	}
	if handle.URL == "" {
		return ports.MessageReceipt{}, ErrUnresolvedQueue
	}
	fifo := strings.HasSuffix(handle.Name, ".fifo")
	if fifo && message.GroupID == "" {
		return ports.MessageReceipt{}, ErrMissingGroupID
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.queues[handle.Name]
	if !ok {
		return ports.MessageReceipt{}, fmt.Errorf("%w: %s", ErrQueueNotFound, handle.Name)
	}
	now := q.now()
	if message.DeduplicationID != "" {
		if entry, seen := state.dedup[message.DeduplicationID]; seen && now.Before(entry.expiresAt) {
			q.logger.Debug("local queue deduplicated message",
				"event", "local_queue_deduplicated",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"queue", handle.Name,
				"deduplication_id", message.DeduplicationID,
			)
			return entry.receipt, nil
		}
	}

	q.sequence++
	receipt := ports.MessageReceipt{
		MessageID:      fmt.Sprintf("local-%d", q.sequence),
		SequenceNumber: strconv.FormatUint(q.sequence, 10),
	}
	state.messages = append(state.messages, DeliveredMessage{
		MessageID:       receipt.MessageID,
		SequenceNumber:  receipt.SequenceNumber,
		GroupID:         message.GroupID,
		DeduplicationID: message.DeduplicationID,
		Body:            append([]byte(nil), message.Body...),
		SentAt:          now,
	})
	if message.DeduplicationID != "" {
		state.dedup[message.DeduplicationID] = dedupEntry{
			receipt:   receipt,
			expiresAt: now.Add(q.dedupWindow),
		}
	}

	q.logger.Debug("local queue accepted message",
		"event", "local_queue_send",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"queue", handle.Name,
		"message_id", receipt.MessageID,
		"message_group_id", message.GroupID,
	)
	return receipt, nil
}

// Messages returns accepted messages of queueName in delivery order.
func (q *LocalQueue) Messages(queueName string) []DeliveredMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.queues[queueName]
	if !ok {
		return nil
	}
	return append([]DeliveredMessage(nil), state.messages...)
}
