package seedservice

import (
	"context"
	"errors"
	"testing"

	"dceseed/contexts/document-emission/seed-service/application/commands"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"
	httptransport "dceseed/contexts/document-emission/seed-service/transport/http"
	"dceseed/internal/platform/messaging"
)

const queueName = "worker-dce-queue.fifo"

func TestInMemoryModuleSeedsAndReportsLatestRun(t *testing.T) {
	queue := messaging.NewLocalQueue([]string{queueName}, 0, nil)
	module := NewInMemoryModule(queue, 5, nil)

	if _, err := module.Handler.LatestRunHandler(context.Background()); !errors.Is(err, domainerrors.ErrRunNotFound) {
		t.Fatalf("expected run not found before first run, got %v", err)
	}

	resp, err := module.Handler.TriggerRunHandler(context.Background(), httptransport.TriggerRunRequest{})
	if err != nil {
		t.Fatalf("trigger run failed: %v", err)
	}
	if !resp.Succeeded || resp.PublishedCount != 5 {
		t.Fatalf("unexpected response %+v", resp)
	}

	messages := queue.Messages(queueName)
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	seen := map[string]bool{}
	for _, message := range messages {
		if message.GroupID != "seed-"+resp.RemittanceDocumentID {
			t.Fatalf("unexpected group id %s", message.GroupID)
		}
		seen[message.DeduplicationID] = true
	}
	for _, declaration := range resp.Declarations {
		key := "seed-" + resp.RemittanceDocumentID + "-" + declaration.DeclarationID
		if !seen[key] {
			t.Fatalf("missing message for declaration %s", declaration.DeclarationID)
		}
		if _, ok := module.Store.Record("tbrw9001_decl_ctud_elet_supm", declaration.DeclarationID); !ok {
			t.Fatalf("declaration %s not stored", declaration.DeclarationID)
		}
	}
	if _, ok := module.Store.Record("tbrw9002_docm_reme_supm", resp.RemittanceDocumentID); !ok {
		t.Fatalf("remittance document not stored")
	}

	latest, err := module.Handler.LatestRunHandler(context.Background())
	if err != nil {
		t.Fatalf("latest run failed: %v", err)
	}
	if latest.RemittanceDocumentID != resp.RemittanceDocumentID {
		t.Fatalf("expected latest run %s, got %s", resp.RemittanceDocumentID, latest.RemittanceDocumentID)
	}
}

func TestSecondRunCreatesNewDocument(t *testing.T) {
	queue := messaging.NewLocalQueue([]string{queueName}, 0, nil)
	module := NewInMemoryModule(queue, 1, nil)

	first, err := module.SeedDocuments.Execute(context.Background(), commands.SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := module.SeedDocuments.Execute(context.Background(), commands.SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if first.Document.ID == second.Document.ID {
		t.Fatalf("expected distinct remittance documents per run")
	}
	if got := len(module.Store.Records("tbrw9002_docm_reme_supm")); got != 2 {
		t.Fatalf("expected 2 documents, got %d", got)
	}
}

func TestKeepAliveResolvesQueue(t *testing.T) {
	module := NewInMemoryModule(messaging.NewLocalQueue([]string{queueName}, 0, nil), 1, nil)
	if err := module.KeepAlive.RunOnce(context.Background()); err != nil {
		t.Fatalf("keep-alive failed: %v", err)
	}

	missing := NewInMemoryModule(messaging.NewLocalQueue(nil, 0, nil), 1, nil)
	if err := missing.KeepAlive.RunOnce(context.Background()); !errors.Is(err, messaging.ErrQueueNotFound) {
		t.Fatalf("expected queue not found, got %v", err)
	}
}

func TestNewModuleDefaultsQueueName(t *testing.T) {
	queue := messaging.NewLocalQueue([]string{queueName}, 0, nil)
	module := NewModule(Dependencies{
		Records: discardStore{},
		Queue:   queue,
	})
	if module.SeedDocuments.QueueName != queueName || module.KeepAlive.QueueName != queueName {
		t.Fatalf("expected default queue name, got %q", module.SeedDocuments.QueueName)
	}
}

type discardStore struct{}

func (discardStore) Put(context.Context, string, ports.Record) error { return nil }
