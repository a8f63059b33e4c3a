package systemadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator creates random UUIDv4 identifiers for documents, declarations
// and burst deduplication ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
