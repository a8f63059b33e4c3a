package dynamodbadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// PutItemAPI is the slice of the DynamoDB client the record store needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// RecordStore writes seed records as DynamoDB items, one table per
// collection. PutItem replaces the whole item, which makes retries idempotent.
type RecordStore struct {
	client      PutItemAPI
	tablePrefix string
	logger      *slog.Logger
}

func NewRecordStore(client PutItemAPI, tablePrefix string, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{
		client:      client,
		tablePrefix: strings.TrimSpace(tablePrefix),
		logger:      logger,
	}
}

func (s *RecordStore) Put(ctx context.Context, collection string, record ports.Record) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(record.Key) == "" {
		return domainerrors.ErrInvalidIdentifier
	}

	item, err := attributevalue.MarshalMap(record.Attributes)
	if err != nil {
		return fmt.Errorf("marshal dynamodb item: %w", err)
	}
	if record.KeyAttribute != "" {
		item[record.KeyAttribute] = &types.AttributeValueMemberS{Value: record.Key}
	}

	table := s.tableName(collection)
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}); err != nil {
		classified := classifyError(err)
		s.logger.Warn("dynamodb put item failed",
			"event", "seed_dynamodb_put_failed",
			"module", "document-emission/seed-service",
			"layer", "adapter",
			"table", table,
			"record_key", record.Key,
			"error", classified.Error(),
		)
		return classified
	}

	s.logger.Debug("dynamodb put item completed",
		"event", "seed_dynamodb_put_completed",
		"module", "document-emission/seed-service",
		"layer", "adapter",
		"table", table,
		"record_key", record.Key,
	)
	return nil
}

func (s *RecordStore) tableName(collection string) string {
	return s.tablePrefix + strings.TrimSpace(collection)
}

func classifyError(err error) error {
	var throughput *types.ProvisionedThroughputExceededException
	var requestLimit *types.RequestLimitExceeded
	var conditional *types.ConditionalCheckFailedException
	var txConflict *types.TransactionConflictException
	switch {
	case errors.As(err, &throughput), errors.As(err, &requestLimit):
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreThrottled, err)
	case errors.As(err, &conditional), errors.As(err, &txConflict):
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreConflict, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreThrottled, err)
	}
	return err
}
