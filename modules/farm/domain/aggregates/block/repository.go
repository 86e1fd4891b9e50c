package block

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("block not found")
	ErrCodeTaken   = errors.New("block code already in use")
	ErrNotPhysical = errors.New("block is not a physical block")
	ErrNotVirtual  = errors.New("block is not a virtual block")
)

type FindParams struct {
	FarmID   uuid.UUID
	Category Category
	Limit    int
	Offset   int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Block, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Block, error)
	GetByLegacyCode(ctx context.Context, legacyCode string) (Block, error)
	GetPhysical(ctx context.Context) ([]Block, error)
	GetVirtual(ctx context.Context) ([]Block, error)
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]Block, error)
	Create(ctx context.Context, b Block) (Block, error)
	Update(ctx context.Context, b Block) (Block, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// CreatePlanting inserts the virtual child and persists the parent's
	// updated child list, counter and available area as one transaction.
	CreatePlanting(ctx context.Context, child Block, parent Block) (Block, error)
	// ClearPlanting persists a cleared child and its parent's returned area
	// as one transaction.
	ClearPlanting(ctx context.Context, child Block, parent Block) error
}
