package farm

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("farm not found")
	ErrCodeTaken = errors.New("farm code already in use")
)

type FindParams struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Farm, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Farm, error)
	GetByLegacyID(ctx context.Context, legacyID string) (Farm, error)
	GetAll(ctx context.Context) ([]Farm, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, f Farm) (Farm, error)
	Update(ctx context.Context, f Farm) (Farm, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
