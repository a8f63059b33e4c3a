package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"
)

// EntityFactory stamps ids and creation times on new seed entities.
type EntityFactory struct {
	IDGenerator ports.IDGenerator
	Clock       ports.Clock
}

func (f EntityFactory) MakeParent(ctx context.Context) (entities.RemittanceDocument, error) {
	id, err := f.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.RemittanceDocument{}, fmt.Errorf("generate remittance document id: %w", err)
	}
	return entities.NewRemittanceDocument(id, f.now())
}

// MakeChild rejects an empty parent id before consuming an identifier.
func (f EntityFactory) MakeChild(ctx context.Context, remittanceDocumentID string) (entities.ContentDeclaration, error) {
	if strings.TrimSpace(remittanceDocumentID) == "" {
		return entities.ContentDeclaration{}, domainerrors.ErrInvalidParentReference
	}
	id, err := f.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.ContentDeclaration{}, fmt.Errorf("generate content declaration id: %w", err)
	}
	return entities.NewContentDeclaration(id, remittanceDocumentID, f.now())
}

func (f EntityFactory) now() time.Time {
	if f.Clock != nil {
		return f.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
