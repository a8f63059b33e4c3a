package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordStore keeps every seed collection in one jsonb-backed table keyed by
// (collection, record_key).
type RecordStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecordStore(db *gorm.DB, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the records table when missing.
func (s *RecordStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&recordModel{})
}

func (s *RecordStore) Put(ctx context.Context, collection string, record ports.Record) error {
	collection = strings.TrimSpace(collection)
	key := strings.TrimSpace(record.Key)
	if collection == "" || key == "" {
		return domainerrors.ErrInvalidIdentifier
	}
	attributes, err := json.Marshal(record.Attributes)
	if err != nil {
		return fmt.Errorf("encode record attributes: %w", err)
	}

	row := recordModel{
		Collection:   collection,
		RecordKey:    key,
		KeyAttribute: record.KeyAttribute,
		Attributes:   attributes,
		UpdatedAt:    time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"key_attribute", "attributes", "updated_at"}),
		}).
		Create(&row).
		Error
	if err != nil {
		classified := classifyError(err)
		s.logger.Warn("postgres record upsert failed",
			"event", "seed_postgres_put_failed",
			"module", "document-emission/seed-service",
			"layer", "adapter",
			"collection", collection,
			"record_key", key,
			"error", classified.Error(),
		)
		return classified
	}
	return nil
}

func (s *RecordStore) Get(ctx context.Context, collection string, key string) (ports.Record, bool, error) {
	var row recordModel
	err := s.db.WithContext(ctx).
		Where("collection = ? AND record_key = ?", collection, key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Record{}, false, nil
		}
		return ports.Record{}, false, err
	}
	record, err := row.toPort()
	if err != nil {
		return ports.Record{}, false, err
	}
	return record, true, nil
}

type recordModel struct {
	Collection   string    `gorm:"column:collection;primaryKey"`
	RecordKey    string    `gorm:"column:record_key;primaryKey"`
	KeyAttribute string    `gorm:"column:key_attribute"`
	Attributes   []byte    `gorm:"column:attributes;type:jsonb"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (recordModel) TableName() string {
	return "seed_records"
}

func (m recordModel) toPort() (ports.Record, error) {
	attributes := map[string]string{}
	if err := json.Unmarshal(m.Attributes, &attributes); err != nil {
		return ports.Record{}, fmt.Errorf("decode record attributes: %w", err)
	}
	return ports.Record{
		Key:          m.RecordKey,
		KeyAttribute: m.KeyAttribute,
		Attributes:   attributes,
	}, nil
}

// Postgres error codes mapped onto the store failure kinds.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgTooManyConnections   = "53300"
	pgLockNotAvailable     = "55P03"
)

func classifyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreConflict, err)
	case pgTooManyConnections, pgLockNotAvailable:
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreThrottled, err)
	default:
		return err
	}
}
