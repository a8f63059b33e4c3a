package entities

import (
	"strings"
	"time"

	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
)

// RemittanceDocument is the parent row every content declaration of a seed
// run points at. One is created per run and never mutated afterwards.
type RemittanceDocument struct {
	ID        string
	CreatedAt time.Time
}

func NewRemittanceDocument(id string, createdAt time.Time) (RemittanceDocument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RemittanceDocument{}, domainerrors.ErrInvalidIdentifier
	}
	return RemittanceDocument{
		ID:        id,
		CreatedAt: createdAt.UTC(),
	}, nil
}
