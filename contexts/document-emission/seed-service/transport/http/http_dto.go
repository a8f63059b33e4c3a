package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TriggerRunRequest struct {
	DeclarationCount *int `json:"declaration_count,omitempty"`
}

type DeclarationOutcomeDTO struct {
	Sequence       int    `json:"sequence"`
	DeclarationID  string `json:"content_declaration_id,omitempty"`
	State          string `json:"state"`
	MessageID      string `json:"message_id,omitempty"`
	SequenceNumber string `json:"sequence_number,omitempty"`
	Error          string `json:"error,omitempty"`
}

type SeedRunResponse struct {
	RemittanceDocumentID string                  `json:"remittance_document_id"`
	DocumentPersisted    bool                    `json:"document_persisted"`
	DocumentError        string                  `json:"document_error,omitempty"`
	Succeeded            bool                    `json:"succeeded"`
	PublishedCount       int                     `json:"published_count"`
	Declarations         []DeclarationOutcomeDTO `json:"declarations"`
	StartedAt            string                  `json:"started_at"`
	FinishedAt           string                  `json:"finished_at"`
}
