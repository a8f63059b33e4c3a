package httpadapter

import (
	"errors"
	"testing"
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
)

func TestToSeedRunResponse(t *testing.T) {
	started := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	run := entities.SeedRun{
		Document:          entities.RemittanceDocument{ID: "p1"},
		DocumentPersisted: true,
		StartedAt:         started,
		FinishedAt:        started.Add(time.Second),
		Declarations: []entities.DeclarationOutcome{
			{Sequence: 1, DeclarationID: "c1", Persisted: true, Published: true, MessageID: "m1", SequenceNumber: "1"},
			{Sequence: 2, DeclarationID: "c2", Persisted: true, PublishError: errors.New("timeout")},
		},
	}

	resp := toSeedRunResponse(run)
	if resp.Succeeded || resp.PublishedCount != 1 {
		t.Fatalf("unexpected summary fields %+v", resp)
	}
	if resp.StartedAt != "2026-02-05T10:00:00Z" || resp.FinishedAt != "2026-02-05T10:00:01Z" {
		t.Fatalf("unexpected timestamps %s %s", resp.StartedAt, resp.FinishedAt)
	}
	if resp.Declarations[0].State != "published" || resp.Declarations[0].MessageID != "m1" {
		t.Fatalf("unexpected first declaration %+v", resp.Declarations[0])
	}
	if resp.Declarations[1].State != "publish_failed" || resp.Declarations[1].Error != "timeout" {
		t.Fatalf("unexpected second declaration %+v", resp.Declarations[1])
	}
}
