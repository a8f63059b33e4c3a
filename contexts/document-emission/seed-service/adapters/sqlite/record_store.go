package sqliteadapter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	"dceseed/contexts/document-emission/seed-service/ports"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS seed_records (
		collection TEXT NOT NULL,
		record_key TEXT NOT NULL,
		key_attribute TEXT NOT NULL DEFAULT '',
		attributes TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (collection, record_key)
	)`,
}

// RecordStore is a file-backed record store for seeding a local environment
// without a database server.
type RecordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordStore(db *sql.DB, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{db: db, logger: logger}
}

// Migrate creates the records table. Safe to call on every start.
func (s *RecordStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate seed_records: %w", err)
		}
	}
	return nil
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

	_, err = s.db.ExecContext(ctx, `INSERT INTO seed_records (collection, record_key, key_attribute, attributes, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, record_key) DO UPDATE SET
			key_attribute = excluded.key_attribute,
			attributes = excluded.attributes,
			updated_at = excluded.updated_at`,
		collection, key, record.KeyAttribute, string(attributes), time.Now().UTC(),
	)
	if err != nil {
		classified := classifyError(err)
		s.logger.Warn("sqlite record upsert failed",
			"event", "seed_sqlite_put_failed",
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
	var (
		keyAttribute string
		attributes   string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT key_attribute, attributes FROM seed_records WHERE collection = ? AND record_key = ?",
		collection, key,
	).Scan(&keyAttribute, &attributes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.Record{}, false, nil
		}
		return ports.Record{}, false, err
	}

	decoded := map[string]string{}
	if err := json.Unmarshal([]byte(attributes), &decoded); err != nil {
		return ports.Record{}, false, fmt.Errorf("decode record attributes: %w", err)
	}
	return ports.Record{
		Key:          key,
		KeyAttribute: keyAttribute,
		Attributes:   decoded,
	}, true, nil
}

// Count returns the number of rows stored in collection.
func (s *RecordStore) Count(ctx context.Context, collection string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seed_records WHERE collection = ?", collection,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func classifyError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreThrottled, err)
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("%w: %w", domainerrors.ErrStoreConflict, err)
	default:
		return err
	}
}
