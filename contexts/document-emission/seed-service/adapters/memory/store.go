package memory

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"

	"github.com/google/uuid"
)

const defaultRunHistory = 20

// Store is an in-memory adapter implementing the seed-service ports for local
// runs and tests. It is not intended as production persistence.
type Store struct {
	mu sync.RWMutex

	collections map[string]map[string]ports.Record
	order       map[string][]string
	writes      map[string]int
	runs        []entities.SeedRun
	runHistory  int
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]ports.Record),
		order:       make(map[string][]string),
		writes:      make(map[string]int),
		runHistory:  defaultRunHistory,
	}
}

// Put overwrites any record with the same key, so retries converge on one row.
func (s *Store) Put(ctx context.Context, collection string, record ports.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection = strings.TrimSpace(collection)
	key := strings.TrimSpace(record.Key)
	if collection == "" || key == "" {
		return domainerrors.ErrInvalidIdentifier
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.collections[collection]
	if !ok {
		rows = make(map[string]ports.Record)
		s.collections[collection] = rows
	}
	if _, exists := rows[key]; !exists {
		s.order[collection] = append(s.order[collection], key)
	}
	rows[key] = cloneRecord(record)
	s.writes[collection]++
	return nil
}

// Records returns the collection in first-write order.
func (s *Store) Records(collection string) []ports.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.order[collection]
	items := make([]ports.Record, 0, len(keys))
	for _, key := range keys {
		items = append(items, cloneRecord(s.collections[collection][key]))
	}
	return items
}

func (s *Store) Record(collection string, key string) (ports.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.collections[collection][key]
	if !ok {
		return ports.Record{}, false
	}
	return cloneRecord(record), true
}

// Writes counts Put calls per collection, including overwrites.
func (s *Store) Writes(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[collection]
}

func (s *Store) RecordRun(_ context.Context, run entities.SeedRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)
	if len(s.runs) > s.runHistory {
		s.runs = append([]entities.SeedRun(nil), s.runs[len(s.runs)-s.runHistory:]...)
	}
	return nil
}

func (s *Store) LatestRun(_ context.Context) (entities.SeedRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return entities.SeedRun{}, false, nil
	}
	return s.runs[len(s.runs)-1], true, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneRecord(record ports.Record) ports.Record {
	record.Attributes = maps.Clone(record.Attributes)
	return record
}
