package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	application "dceseed/contexts/document-emission/seed-service/application"
	"dceseed/contexts/document-emission/seed-service/domain/entities"
	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/domain/services"
	"dceseed/contexts/document-emission/seed-service/ports"
	contractsv1 "dceseed/contracts/gen/events/v1"
)

// MessagePublisher sends one EmissionRequested per call with the ordering
// group and deduplication key derived from the message ids. It never retries.
type MessagePublisher struct {
	Queue  ports.MessageQueue
	Logger *slog.Logger
}

func (p MessagePublisher) Publish(
	ctx context.Context,
	handle ports.QueueHandle,
	message entities.EmissionRequested,
) (ports.MessageReceipt, error) {
	logger := application.ResolveLogger(p.Logger)

	body, err := EncodeEmissionRequested(message)
	if err != nil {
		return ports.MessageReceipt{}, fmt.Errorf("%w: encode body: %w", domainerrors.ErrPublishFailed, err)
	}
	groupID := services.OrderingGroup(message.RemittanceDocumentID)
	deduplicationID := services.DeduplicationKey(message.RemittanceDocumentID, message.ContentDeclarationID)

	receipt, err := p.Queue.Send(ctx, handle, ports.QueueMessage{
		Body:            body,
		GroupID:         groupID,
		DeduplicationID: deduplicationID,
	})
	if err != nil {
		logger.Warn("emission requested publish failed",
			"event", "seed_emission_publish_failed",
			"module", "document-emission/seed-service",
			"layer", "application",
			"queue", handle.Name,
			"remittance_document_id", message.RemittanceDocumentID,
			"content_declaration_id", message.ContentDeclarationID,
			"error", err.Error(),
		)
		return ports.MessageReceipt{}, fmt.Errorf("%w: %w", domainerrors.ErrPublishFailed, err)
	}

	logger.Debug("emission requested published",
		"event", "seed_emission_published",
		"module", "document-emission/seed-service",
		"layer", "application",
		"queue", handle.Name,
		"message_group_id", groupID,
		"deduplication_id", deduplicationID,
		"message_id", receipt.MessageID,
	)
	return receipt, nil
}

// EncodeEmissionRequested renders the worker-facing JSON body.
func EncodeEmissionRequested(message entities.EmissionRequested) ([]byte, error) {
	return json.Marshal(contractsv1.EmissionRequested{
		RemittanceDocumentID: message.RemittanceDocumentID,
		ContentDeclarationID: message.ContentDeclarationID,
		Event:                message.EventType,
	})
}
