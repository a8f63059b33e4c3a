package entities

import (
	"strings"
	"time"

	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
)

type DeclarationStatus string

// DeclarationStatusPending is the only status this service writes. Later
// transitions belong to the emission workers consuming the queue.
const DeclarationStatusPending DeclarationStatus = "PENDING"

type ContentDeclaration struct {
	ID                   string
	RemittanceDocumentID string
	Status               DeclarationStatus
	CreatedAt            time.Time
}

func NewContentDeclaration(id string, remittanceDocumentID string, createdAt time.Time) (ContentDeclaration, error) {
	remittanceDocumentID = strings.TrimSpace(remittanceDocumentID)
	if remittanceDocumentID == "" {
		return ContentDeclaration{}, domainerrors.ErrInvalidParentReference
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ContentDeclaration{}, domainerrors.ErrInvalidIdentifier
	}
	return ContentDeclaration{
		ID:                   id,
		RemittanceDocumentID: remittanceDocumentID,
		Status:               DeclarationStatusPending,
		CreatedAt:            createdAt.UTC(),
	}, nil
}
