package commands

import (
	"time"

	"dceseed/contexts/document-emission/seed-service/domain/entities"
	"dceseed/contexts/document-emission/seed-service/ports"
)

// Attribute names of the emission tables. The downstream workers read these
// columns directly.
const (
	AttrRemittanceDocumentID = "codIdtDocmReme"
	AttrDocumentCreatedAt    = "createdAt"

	AttrContentDeclarationID = "codIdtDeclCtudElet"
	AttrDeclarationStatus    = "txtSituEmisDeclCtudElet"
	AttrDeclarationCreatedAt = "datHorCriaDeclCtudElet"
)

func documentRecord(document entities.RemittanceDocument) ports.Record {
	return ports.Record{
		Key:          document.ID,
		KeyAttribute: AttrRemittanceDocumentID,
		Attributes: map[string]string{
			AttrRemittanceDocumentID: document.ID,
			AttrDocumentCreatedAt:    formatTimestamp(document.CreatedAt),
		},
	}
}

func declarationRecord(declaration entities.ContentDeclaration) ports.Record {
	return ports.Record{
		Key:          declaration.ID,
		KeyAttribute: AttrContentDeclarationID,
		Attributes: map[string]string{
			AttrContentDeclarationID: declaration.ID,
			AttrRemittanceDocumentID: declaration.RemittanceDocumentID,
			AttrDeclarationStatus:    string(declaration.Status),
			AttrDeclarationCreatedAt: formatTimestamp(declaration.CreatedAt),
		},
	}
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}
