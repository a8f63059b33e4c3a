package memory

import (
	"context"
	"errors"
	"testing"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"
)

func TestPutIsIdempotentOverwrite(t *testing.T) {
	store := NewStore()
	record := ports.Record{
		Key:          "c1",
		KeyAttribute: "codIdtDeclCtudElet",
		Attributes:   map[string]string{"txtSituEmisDeclCtudElet": "PENDING"},
	}

	for range 2 {
		if err := store.Put(context.Background(), "declarations", record); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}
	if got := len(store.Records("declarations")); got != 1 {
		t.Fatalf("expected one row after repeated put, got %d", got)
	}
	if got := store.Writes("declarations"); got != 2 {
		t.Fatalf("expected 2 writes counted, got %d", got)
	}
}

func TestPutClonesAttributes(t *testing.T) {
	store := NewStore()
	attrs := map[string]string{"status": "PENDING"}
	if err := store.Put(context.Background(), "declarations", ports.Record{Key: "c1", Attributes: attrs}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	attrs["status"] = "MUTATED"

	record, ok := store.Record("declarations", "c1")
	if !ok {
		t.Fatalf("expected record c1")
	}
	if record.Attributes["status"] != "PENDING" {
		t.Fatalf("stored record was mutated through caller map")
	}
}

func TestPutRejectsEmptyKeyAndCancelledContext(t *testing.T) {
	store := NewStore()
	if err := store.Put(context.Background(), "declarations", ports.Record{}); !errors.Is(err, domainerrors.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid identifier, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Put(ctx, "declarations", ports.Record{Key: "c1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestRecordsKeepFirstWriteOrder(t *testing.T) {
	store := NewStore()
	for _, key := range []string{"c2", "c1", "c3", "c1"} {
		_ = store.Put(context.Background(), "declarations", ports.Record{Key: key})
	}
	records := store.Records("declarations")
	got := records[0].Key + records[1].Key + records[2].Key
	if got != "c2c1c3" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestRunHistoryKeepsLatest(t *testing.T) {
	store := NewStore()
	if _, found, _ := store.LatestRun(context.Background()); found {
		t.Fatalf("expected no run before recording")
	}
	for i := range defaultRunHistory + 5 {
		_ = store.RecordRun(context.Background(), entities.SeedRun{
			Document: entities.RemittanceDocument{ID: string(rune('a' + i%26))},
		})
	}
	if len(store.runs) != defaultRunHistory {
		t.Fatalf("expected history capped at %d, got %d", defaultRunHistory, len(store.runs))
	}
	latest, found, err := store.LatestRun(context.Background())
	if err != nil || !found {
		t.Fatalf("expected latest run, err=%v", err)
	}
	if latest.Document.ID != string(rune('a'+(defaultRunHistory+4)%26)) {
		t.Fatalf("unexpected latest run %s", latest.Document.ID)
	}
}
