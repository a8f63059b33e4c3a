package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
	"dceseed/contexts/document-emission/seed-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// sequenceIDs hands out "p1" for the first id and "c1", "c2", ... afterwards,
// matching one parent followed by its children.
type sequenceIDs struct {
	mu    sync.Mutex
	calls int
	fail  map[int]error
}

func (g *sequenceIDs) NewID(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if err, ok := g.fail[g.calls]; ok {
		return "", err
	}
	if g.calls == 1 {
		return "p1", nil
	}
	return fmt.Sprintf("c%d", g.calls-1), nil
}

type putCall struct {
	collection string
	record     ports.Record
}

type fakeStore struct {
	mu    sync.Mutex
	puts  []putCall
	fail  map[string]error
	calls int
}

func (s *fakeStore) Put(_ context.Context, collection string, record ports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.fail[record.Key]; ok {
		return err
	}
	s.puts = append(s.puts, putCall{collection: collection, record: record})
	return nil
}

func (s *fakeStore) keys(collection string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for _, call := range s.puts {
		if call.collection == collection {
			keys = append(keys, call.record.Key)
		}
	}
	return keys
}

type fakeQueue struct {
	mu         sync.Mutex
	resolveErr error
	resolved   int
	sent       []ports.QueueMessage
	// failDedup fails sends whose deduplication id is a key.
	failDedup map[string]error
	// onSend runs before the send is recorded, outside the lock.
	onSend func(ports.QueueMessage)
}

func (q *fakeQueue) Resolve(_ context.Context, queueName string) (ports.QueueHandle, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resolved++
	if q.resolveErr != nil {
		return ports.QueueHandle{}, q.resolveErr
	}
	return ports.QueueHandle{Name: queueName, URL: "https://queue.local/" + queueName}, nil
}

func (q *fakeQueue) Send(ctx context.Context, handle ports.QueueHandle, message ports.QueueMessage) (ports.MessageReceipt, error) {
	if q.onSend != nil {
		q.onSend(message)
	}
	if err := ctx.Err(); err != nil {
		return ports.MessageReceipt{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if err, ok := q.failDedup[message.DeduplicationID]; ok {
		return ports.MessageReceipt{}, err
	}
	if handle.URL == "" {
		return ports.MessageReceipt{}, errors.New("unresolved handle")
	}
	q.sent = append(q.sent, message)
	n := len(q.sent)
	return ports.MessageReceipt{
		MessageID:      fmt.Sprintf("msg-%d", n),
		SequenceNumber: fmt.Sprintf("%d", n),
	}, nil
}

func (q *fakeQueue) messages() []ports.QueueMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]ports.QueueMessage(nil), q.sent...)
}

type fakeRuns struct {
	runs []entities.SeedRun
}

func (r *fakeRuns) RecordRun(_ context.Context, run entities.SeedRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRuns) LatestRun(context.Context) (entities.SeedRun, bool, error) {
	if len(r.runs) == 0 {
		return entities.SeedRun{}, false, nil
	}
	return r.runs[len(r.runs)-1], true, nil
}
