package ports

import (
	"context"
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
)

// Record is one entity flattened to the attribute map stored by a RecordStore.
// KeyAttribute names the attribute holding Key.
type Record struct {
	Key          string
	KeyAttribute string
	Attributes   map[string]string
}

// RecordStore writes records keyed by Record.Key into a named collection.
// Put must be idempotent: writing the same record twice leaves one row with
// the same final value.
type RecordStore interface {
	Put(ctx context.Context, collection string, record Record) error
}

// QueueHandle is the resolved address of a named queue.
type QueueHandle struct {
	Name string
	URL  string
}

// QueueMessage is a FIFO send request. GroupID orders messages relative to
// each other and DeduplicationID collapses repeats inside the dedup window.
type QueueMessage struct {
	Body            []byte
	GroupID         string
	DeduplicationID string
}

type MessageReceipt struct {
	MessageID      string
	SequenceNumber string
}

// MessageQueue abstracts the ordered, deduplicated queue transport.
// Implementations must be safe for concurrent Send calls.
type MessageQueue interface {
	Resolve(ctx context.Context, queueName string) (QueueHandle, error)
	Send(ctx context.Context, handle QueueHandle, message QueueMessage) (MessageReceipt, error)
}

// Clock allows deterministic timestamps in tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts entity/message identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RunRegistry keeps the outcome of recent seed runs for the serve-mode HTTP
// surface.
type RunRegistry interface {
	RecordRun(ctx context.Context, run entities.SeedRun) error
	LatestRun(ctx context.Context) (entities.SeedRun, bool, error)
}
