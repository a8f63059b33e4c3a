package queries

import (
	"context"
	"log/slog"

	application "dceseed/contexts/document-emission/seed-service/application"
	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"
)

type GetLatestRunUseCase struct {
	Runs   ports.RunRegistry
	Logger *slog.Logger
}

func (u GetLatestRunUseCase) Execute(ctx context.Context) (entities.SeedRun, error) {
	logger := application.ResolveLogger(u.Logger)
	run, found, err := u.Runs.LatestRun(ctx)
	if err != nil {
		logger.Error("latest seed run lookup failed",
			"event", "seed_latest_run_lookup_failed",
			"module", "document-emission/seed-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.SeedRun{}, err
	}
	if !found {
		return entities.SeedRun{}, domainerrors.ErrRunNotFound
	}
	return run, nil
}
