package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "dceseed/contexts/document-emission/seed-service/application"
	"dceseed/contexts/document-emission/seed-service/application/commands"
	"dceseed/contexts/document-emission/seed-service/application/queries"
	"dceseed/contexts/document-emission/seed-service/domain/entities"
	httptransport "dceseed/contexts/document-emission/seed-service/transport/http"
)

type Handler struct {
	SeedDocuments commands.SeedDocumentsUseCase
	LatestRun     queries.GetLatestRunUseCase
	Logger        *slog.Logger
}

func (h Handler) TriggerRunHandler(
	ctx context.Context,
	req httptransport.TriggerRunRequest,
) (httptransport.SeedRunResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	run, err := h.SeedDocuments.Execute(ctx, commands.SeedDocumentsCommand{
		DeclarationCount: req.DeclarationCount,
	})
	if err != nil {
		logger.Warn("seed http trigger run failed",
			"event", "seed_http_trigger_run_failed",
			"module", "document-emission/seed-service",
			"layer", "adapter",
			"error", err.Error(),
		)
		return httptransport.SeedRunResponse{}, err
	}
	logger.Info("seed http trigger run completed",
		"event", "seed_http_trigger_run_completed",
		"module", "document-emission/seed-service",
		"layer", "adapter",
		"remittance_document_id", run.Document.ID,
		"published_count", run.PublishedCount(),
	)
	return toSeedRunResponse(run), nil
}

func (h Handler) LatestRunHandler(ctx context.Context) (httptransport.SeedRunResponse, error) {
	run, err := h.LatestRun.Execute(ctx)
	if err != nil {
		return httptransport.SeedRunResponse{}, err
	}
	return toSeedRunResponse(run), nil
}

func toSeedRunResponse(run entities.SeedRun) httptransport.SeedRunResponse {
	resp := httptransport.SeedRunResponse{
		RemittanceDocumentID: run.Document.ID,
		DocumentPersisted:    run.DocumentPersisted,
		Succeeded:            run.Succeeded(),
		PublishedCount:       run.PublishedCount(),
		Declarations:         make([]httptransport.DeclarationOutcomeDTO, 0, len(run.Declarations)),
		StartedAt:            run.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt:           run.FinishedAt.UTC().Format(time.RFC3339Nano),
	}
	if run.DocumentError != nil {
		resp.DocumentError = run.DocumentError.Error()
	}
	for _, outcome := range run.Declarations {
		item := httptransport.DeclarationOutcomeDTO{
			Sequence:       outcome.Sequence,
			DeclarationID:  outcome.DeclarationID,
			State:          string(outcome.State()),
			MessageID:      outcome.MessageID,
			SequenceNumber: outcome.SequenceNumber,
		}
		if err := outcome.Err(); err != nil {
			item.Error = err.Error()
		}
		resp.Declarations = append(resp.Declarations, item)
	}
	return resp
}
