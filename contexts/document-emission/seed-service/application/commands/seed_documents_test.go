package commands

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"
)

var seedNow = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

func newSeedUseCase(store *fakeStore, queue *fakeQueue, ids *sequenceIDs, count int) SeedDocumentsUseCase {
	return SeedDocumentsUseCase{
		Store:            store,
		Queue:            queue,
		Clock:            fixedClock{now: seedNow},
		IDGenerator:      ids,
		DeclarationCount: count,
	}
}

func TestSeedDocumentsPersistsAndPublishesEveryDeclaration(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 5)

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !run.Succeeded() || run.PublishedCount() != 5 {
		t.Fatalf("expected 5 published declarations, got %d (err=%v)", run.PublishedCount(), run.Err())
	}

	if got := store.keys(DefaultDocumentCollection); len(got) != 1 || got[0] != "p1" {
		t.Fatalf("unexpected documents: %v", got)
	}
	wantChildren := []string{"c1", "c2", "c3", "c4", "c5"}
	if got := store.keys(DefaultDeclarationCollection); strings.Join(got, ",") != strings.Join(wantChildren, ",") {
		t.Fatalf("expected declarations persisted in order %v, got %v", wantChildren, got)
	}

	for _, call := range store.puts {
		if call.collection != DefaultDeclarationCollection {
			if call.record.Attributes[AttrDocumentCreatedAt] != "2026-02-05T10:00:00Z" {
				t.Fatalf("unexpected document createdAt %q", call.record.Attributes[AttrDocumentCreatedAt])
			}
			continue
		}
		attrs := call.record.Attributes
		if attrs[AttrRemittanceDocumentID] != "p1" || attrs[AttrDeclarationStatus] != "PENDING" {
			t.Fatalf("unexpected declaration attributes: %v", attrs)
		}
		if call.record.KeyAttribute != AttrContentDeclarationID {
			t.Fatalf("unexpected key attribute %s", call.record.KeyAttribute)
		}
	}

	messages := queue.messages()
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	bodies := make([]string, 0, len(messages))
	dedupIDs := make([]string, 0, len(messages))
	for _, message := range messages {
		if message.GroupID != "seed-p1" {
			t.Fatalf("unexpected group %s", message.GroupID)
		}
		dedupIDs = append(dedupIDs, message.DeduplicationID)
		bodies = append(bodies, string(message.Body))
	}
	sort.Strings(dedupIDs)
	wantDedup := []string{"seed-p1-c1", "seed-p1-c2", "seed-p1-c3", "seed-p1-c4", "seed-p1-c5"}
	if strings.Join(dedupIDs, ",") != strings.Join(wantDedup, ",") {
		t.Fatalf("unexpected deduplication ids %v, want %v", dedupIDs, wantDedup)
	}
	sort.Strings(bodies)
	if bodies[0] != `{"id_dr":"p1","id_dce":"c1","evento":"SOLICITACAO_EMISSAO"}` {
		t.Fatalf("unexpected body %s", bodies[0])
	}

	for i, outcome := range run.Declarations {
		if outcome.Sequence != i+1 || outcome.DeclarationID != wantChildren[i] {
			t.Fatalf("outcome %d out of order: %+v", i, outcome)
		}
		if outcome.MessageID == "" {
			t.Fatalf("expected message id on outcome %d", i)
		}
	}
}

func TestSeedDocumentsPublishFailureDoesNotStopSiblings(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{failDedup: map[string]error{"seed-p1-c3": errors.New("timeout")}}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 5)

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if run.Succeeded() {
		t.Fatalf("expected failed run")
	}
	if len(queue.messages()) != 4 {
		t.Fatalf("expected 4 delivered messages, got %d", len(queue.messages()))
	}
	if len(store.keys(DefaultDeclarationCollection)) != 5 {
		t.Fatalf("expected all 5 declarations persisted")
	}
	failures := run.PublishFailures()
	if len(failures) != 1 || failures[0].DeclarationID != "c3" {
		t.Fatalf("unexpected publish failures: %+v", failures)
	}
	if !errors.Is(failures[0].PublishError, domainerrors.ErrPublishFailed) {
		t.Fatalf("expected publish failure kind, got %v", failures[0].PublishError)
	}
	if !strings.Contains(run.Err().Error(), "#3 c3") {
		t.Fatalf("expected run error to identify c3, got %v", run.Err())
	}
}

func TestSeedDocumentsDeclarationPersistFailureSkipsItsPublish(t *testing.T) {
	store := &fakeStore{fail: map[string]error{"c2": errors.New("provisioned throughput exceeded")}}
	queue := &fakeQueue{}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 5)

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	for _, message := range queue.messages() {
		if message.DeduplicationID == "seed-p1-c2" {
			t.Fatalf("declaration c2 must not be published")
		}
	}
	if len(queue.messages()) != 4 {
		t.Fatalf("expected 4 published messages, got %d", len(queue.messages()))
	}
	failures := run.PersistFailures()
	if len(failures) != 1 || failures[0].DeclarationID != "c2" {
		t.Fatalf("unexpected persist failures: %+v", failures)
	}
	if domainerrors.Kind(failures[0].PersistError) != domainerrors.KindPersist {
		t.Fatalf("expected persist kind, got %v", failures[0].PersistError)
	}
	if got := store.keys(DefaultDeclarationCollection); strings.Join(got, ",") != "c1,c3,c4,c5" {
		t.Fatalf("expected remaining declarations persisted, got %v", got)
	}
}

func TestSeedDocumentsDocumentPersistFailureStopsRun(t *testing.T) {
	store := &fakeStore{fail: map[string]error{"p1": errors.New("table does not exist")}}
	queue := &fakeQueue{}
	runs := &fakeRuns{}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 5)
	useCase.Runs = runs

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if !errors.Is(err, domainerrors.ErrPersistFailed) {
		t.Fatalf("expected persist failure, got %v", err)
	}
	if run.DocumentPersisted || len(run.Declarations) != 0 {
		t.Fatalf("expected no declarations after document failure: %+v", run)
	}
	if store.calls != 1 {
		t.Fatalf("expected only the document write, got %d writes", store.calls)
	}
	if len(queue.messages()) != 0 {
		t.Fatalf("expected no messages")
	}
	if len(runs.runs) != 1 || runs.runs[0].DocumentError == nil {
		t.Fatalf("expected failed run to be recorded")
	}
}

func TestSeedDocumentsQueueResolutionFailureWritesNothing(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{resolveErr: errors.New("AWS.SimpleQueueService.NonExistentQueue")}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 5)

	_, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if !errors.Is(err, domainerrors.ErrQueueResolution) {
		t.Fatalf("expected queue resolution failure, got %v", err)
	}
	if !strings.Contains(err.Error(), DefaultQueueName) {
		t.Fatalf("expected queue name in error, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no writes, got %d", store.calls)
	}
}

func TestSeedDocumentsZeroDeclarations(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 0)

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !run.Succeeded() || !run.DocumentPersisted {
		t.Fatalf("expected parent-only success: %+v", run)
	}
	if len(queue.messages()) != 0 || len(store.keys(DefaultDeclarationCollection)) != 0 {
		t.Fatalf("expected no declarations or messages")
	}
}

func TestSeedDocumentsCommandCountOverride(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	useCase := newSeedUseCase(store, queue, &sequenceIDs{}, 5)

	two := 2
	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{DeclarationCount: &two})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if len(run.Declarations) != 2 || len(queue.messages()) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(run.Declarations))
	}
}

func TestSeedDocumentsRejectsNegativeCount(t *testing.T) {
	queue := &fakeQueue{}
	useCase := newSeedUseCase(&fakeStore{}, queue, &sequenceIDs{}, -1)

	_, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if !errors.Is(err, domainerrors.ErrInvalidSeedRequest) {
		t.Fatalf("expected invalid seed request, got %v", err)
	}
	if queue.resolved != 0 {
		t.Fatalf("expected no queue resolution")
	}
}

func TestSeedDocumentsIDFailureRecordedAsPersistFailure(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	ids := &sequenceIDs{fail: map[int]error{3: errors.New("entropy exhausted")}}
	useCase := newSeedUseCase(store, queue, ids, 3)

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if got := run.Declarations[1].State(); got != entities.OutcomePersistFailed {
		t.Fatalf("expected second declaration persist_failed, got %s", got)
	}
	if run.PublishedCount() != 2 {
		t.Fatalf("expected 2 published, got %d", run.PublishedCount())
	}
}

func TestSeedDocumentsWaitsForEveryPublish(t *testing.T) {
	const count = 5
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(count)
	queue := &fakeQueue{onSend: func(_ ports.QueueMessage) {
		started.Done()
		<-release
	}}
	useCase := newSeedUseCase(&fakeStore{}, queue, &sequenceIDs{}, count)

	done := make(chan entities.SeedRun, 1)
	go func() {
		run, _ := useCase.Execute(context.Background(), SeedDocumentsCommand{})
		done <- run
	}()

	// All publishes are in flight at once.
	started.Wait()
	select {
	case <-done:
		t.Fatalf("execute returned before publishes completed")
	default:
	}

	close(release)
	run := <-done
	if run.PublishedCount() != count {
		t.Fatalf("expected %d published after join, got %d", count, run.PublishedCount())
	}
}

func TestSeedDocumentsPublishConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	queue := &fakeQueue{onSend: func(_ ports.QueueMessage) {
		current := inFlight.Add(1)
		for {
			seen := peak.Load()
			if current <= seen || peak.CompareAndSwap(seen, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	}}
	useCase := newSeedUseCase(&fakeStore{}, queue, &sequenceIDs{}, 6)
	useCase.PublishConcurrency = 2

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if run.PublishedCount() != 6 {
		t.Fatalf("expected 6 published, got %d", run.PublishedCount())
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 publishes in flight, saw %d", peak.Load())
	}
}

func TestSeedDocumentsRecordsRun(t *testing.T) {
	runs := &fakeRuns{}
	useCase := newSeedUseCase(&fakeStore{}, &fakeQueue{}, &sequenceIDs{}, 2)
	useCase.Runs = runs

	run, err := useCase.Execute(context.Background(), SeedDocumentsCommand{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	latest, found, _ := runs.LatestRun(context.Background())
	if !found || latest.Document.ID != run.Document.ID {
		t.Fatalf("expected run %s recorded", run.Document.ID)
	}
}
