package entities

// EventTypeEmissionRequested tags the message that asks the emission workers
// to process a freshly seeded content declaration.
const EventTypeEmissionRequested = "SOLICITACAO_EMISSAO"

// EmissionRequested is built right after its declaration is persisted and is
// handed to the publisher without being stored.
type EmissionRequested struct {
	RemittanceDocumentID string
	ContentDeclarationID string
	EventType            string
}

func NewEmissionRequested(declaration ContentDeclaration) EmissionRequested {
	return EmissionRequested{
		RemittanceDocumentID: declaration.RemittanceDocumentID,
		ContentDeclarationID: declaration.ID,
		EventType:            EventTypeEmissionRequested,
	}
}
