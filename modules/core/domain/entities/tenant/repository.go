package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("tenant not found")

type Repository interface {
	GetAll(ctx context.Context) ([]Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (Tenant, error)
	Create(ctx context.Context, t Tenant) (Tenant, error)
}
