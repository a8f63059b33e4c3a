package v1

// EmissionRequested is the queue body consumed by the DCE emission workers.
// Field names are the workers' wire contract and must stay stable.
type EmissionRequested struct {
	RemittanceDocumentID string `json:"id_dr"`
	ContentDeclarationID string `json:"id_dce"`
	Event                string `json:"evento"`
}

// BurstSample is the synthetic body sent by the queue burst tool.
type BurstSample struct {
	MessageIndex  int                `json:"messageIndex"`
	Timestamp     string             `json:"timestamp"`
	CorrelationID string             `json:"correlationId"`
	Payload       BurstSamplePayload `json:"payload"`
}

type BurstSamplePayload struct {
	Action     string `json:"action"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}
