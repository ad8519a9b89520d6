package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator issues RFC 4122 UUID v4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
