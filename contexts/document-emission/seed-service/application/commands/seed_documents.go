package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "dceseed/contexts/document-emission/seed-service/application"
	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultQueueName             = "worker-dce-queue.fifo"
	DefaultDocumentCollection    = "tbrw9002_docm_reme_supm"
	DefaultDeclarationCollection = "tbrw9001_decl_ctud_elet_supm"
	DefaultDeclarationCount      = 5
)

type SeedDocumentsCommand struct {
	// DeclarationCount overrides SeedDocumentsUseCase.DeclarationCount when set.
	DeclarationCount *int
}

type SeedDocumentsUseCase struct {
	Store                 ports.RecordStore
	Queue                 ports.MessageQueue
	Runs                  ports.RunRegistry
	Clock                 ports.Clock
	IDGenerator           ports.IDGenerator
	QueueName             string
	DocumentCollection    string
	DeclarationCollection string
	DeclarationCount      int
	// PublishConcurrency bounds in-flight publishes; zero means one goroutine
	// per declaration.
	PublishConcurrency int
	Logger             *slog.Logger
}

// Execute runs one seed in this order:
// 1) resolve the queue handle
// 2) create and persist the remittance document
// 3) create and persist each declaration in order, scheduling its publish
// 4) wait for every scheduled publish.
//
// The returned error is non-nil only when the run could not start (queue
// resolution, invalid count) or the document was not persisted. Declaration
// failures are reported through the returned SeedRun.
func (u SeedDocumentsUseCase) Execute(ctx context.Context, cmd SeedDocumentsCommand) (entities.SeedRun, error) {
	logger := application.ResolveLogger(u.Logger)
	factory := EntityFactory{IDGenerator: u.IDGenerator, Clock: u.Clock}
	publisher := MessagePublisher{Queue: u.Queue, Logger: u.Logger}

	count := u.DeclarationCount
	if cmd.DeclarationCount != nil {
		count = *cmd.DeclarationCount
	}
	if count < 0 {
		return entities.SeedRun{}, fmt.Errorf("%w: declaration count %d", domainerrors.ErrInvalidSeedRequest, count)
	}

	run := entities.SeedRun{StartedAt: factory.now()}
	queueName := u.queueName()

	logger.Info("seed run started",
		"event", "seed_run_started",
		"module", "document-emission/seed-service",
		"layer", "application",
		"queue", queueName,
		"declaration_count", count,
	)

	handle, err := u.Queue.Resolve(ctx, queueName)
	if err != nil {
		logger.Error("seed queue resolution failed",
			"event", "seed_queue_resolution_failed",
			"module", "document-emission/seed-service",
			"layer", "application",
			"queue", queueName,
			"error", err.Error(),
		)
		return entities.SeedRun{}, fmt.Errorf("%w: %s: %w", domainerrors.ErrQueueResolution, queueName, err)
	}

	document, err := factory.MakeParent(ctx)
	if err != nil {
		return entities.SeedRun{}, err
	}
	run.Document = document

	if err := u.Store.Put(ctx, u.documentCollection(), documentRecord(document)); err != nil {
		run.DocumentError = fmt.Errorf("%w: %w", domainerrors.ErrPersistFailed, err)
		run.FinishedAt = factory.now()
		logger.Error("seed remittance document persist failed",
			"event", "seed_document_persist_failed",
			"module", "document-emission/seed-service",
			"layer", "application",
			"collection", u.documentCollection(),
			"remittance_document_id", document.ID,
			"error", err.Error(),
		)
		u.record(ctx, logger, run)
		return run, run.DocumentError
	}
	run.DocumentPersisted = true

	run.Declarations = make([]entities.DeclarationOutcome, count)
	var publishes errgroup.Group
	if u.PublishConcurrency > 0 {
		publishes.SetLimit(u.PublishConcurrency)
	}

	for i := range count {
		outcome := &run.Declarations[i]
		outcome.Sequence = i + 1

		declaration, err := factory.MakeChild(ctx, document.ID)
		if err != nil {
			outcome.PersistError = err
			logger.Warn("seed content declaration create failed",
				"event", "seed_declaration_create_failed",
				"module", "document-emission/seed-service",
				"layer", "application",
				"remittance_document_id", document.ID,
				"sequence", outcome.Sequence,
				"error", err.Error(),
			)
			continue
		}
		outcome.DeclarationID = declaration.ID

		if err := u.Store.Put(ctx, u.declarationCollection(), declarationRecord(declaration)); err != nil {
			outcome.PersistError = fmt.Errorf("%w: %w", domainerrors.ErrPersistFailed, err)
			logger.Warn("seed content declaration persist failed",
				"event", "seed_declaration_persist_failed",
				"module", "document-emission/seed-service",
				"layer", "application",
				"collection", u.declarationCollection(),
				"remittance_document_id", document.ID,
				"content_declaration_id", declaration.ID,
				"sequence", outcome.Sequence,
				"error", err.Error(),
			)
			continue
		}
		outcome.Persisted = true

		message := entities.NewEmissionRequested(declaration)
		// Each goroutine owns its outcome slot; errors are recorded there so a
		// failed publish never cancels its siblings.
		publishes.Go(func() error {
			receipt, err := publisher.Publish(ctx, handle, message)
			if err != nil {
				outcome.PublishError = err
				return nil
			}
			outcome.Published = true
			outcome.MessageID = receipt.MessageID
			outcome.SequenceNumber = receipt.SequenceNumber
			return nil
		})
	}

	_ = publishes.Wait()
	run.FinishedAt = factory.now()

	attrs := []any{
		"event", "seed_run_completed",
		"module", "document-emission/seed-service",
		"layer", "application",
		"remittance_document_id", document.ID,
		"declaration_count", count,
		"persisted_count", run.PersistedCount(),
		"published_count", run.PublishedCount(),
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	}
	if run.Succeeded() {
		logger.Info("seed run completed", attrs...)
	} else {
		logger.Warn("seed run completed with failures", append(attrs, "error", run.Err().Error())...)
	}

	u.record(ctx, logger, run)
	return run, nil
}

func (u SeedDocumentsUseCase) record(ctx context.Context, logger *slog.Logger, run entities.SeedRun) {
	if u.Runs == nil {
		return
	}
	if err := u.Runs.RecordRun(ctx, run); err != nil {
		logger.Warn("seed run registry write failed",
			"event", "seed_run_record_failed",
			"module", "document-emission/seed-service",
			"layer", "application",
			"remittance_document_id", run.Document.ID,
			"error", err.Error(),
		)
	}
}

func (u SeedDocumentsUseCase) queueName() string {
	return valueOr(u.QueueName, DefaultQueueName)
}

func (u SeedDocumentsUseCase) documentCollection() string {
	return valueOr(u.DocumentCollection, DefaultDocumentCollection)
}

func (u SeedDocumentsUseCase) declarationCollection() string {
	return valueOr(u.DeclarationCollection, DefaultDeclarationCollection)
}

func valueOr(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
