// Package archive holds historical records carried over from the legacy
// system. They are append-only documents, so they are modeled as plain
// records rather than aggregates.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("archive record not found")
	ErrDuplicate = errors.New("archive record already exists")
)

// BlockArchive is one activity entry from the legacy block history. Either
// block reference may be Nil when the source row could not be resolved; the
// stored legacy code is kept either way. LegacyID is the source row UUID
// and is unique per tenant, so re-importing the same row fails with
// ErrDuplicate.
type BlockArchive struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	LegacyID        string
	VirtualBlockID  uuid.UUID
	PhysicalBlockID uuid.UUID
	LegacyBlockCode string
	Activity        string
	Payload         string
	RecordedAt      time.Time
	CreatedAt       time.Time
}

// Harvest records a single pick. Block references follow the same
// null-tolerant policy as BlockArchive.
type Harvest struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	LegacyID        string
	VirtualBlockID  uuid.UUID
	PhysicalBlockID uuid.UUID
	LegacyBlockCode string
	Crop            string
	Quantity        decimal.Decimal
	Grade           string
	HarvestedAt     time.Time
	CreatedAt       time.Time
}

// CropPrice is a dated price point from the legacy price book. The customer
// reference is Nil when name matching failed; the stored name is preserved
// for audit.
type CropPrice struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	LegacyID     string
	CustomerID   uuid.UUID
	CustomerName string
	Crop         string
	Price        decimal.Decimal
	EffectiveAt  time.Time
	CreatedAt    time.Time
}

type BlockArchiveRepository interface {
	GetByBlockID(ctx context.Context, blockID uuid.UUID) ([]BlockArchive, error)
	Create(ctx context.Context, a BlockArchive) (BlockArchive, error)
	Count(ctx context.Context) (int64, error)
}

type HarvestRepository interface {
	GetByBlockID(ctx context.Context, blockID uuid.UUID) ([]Harvest, error)
	Create(ctx context.Context, h Harvest) (Harvest, error)
	Count(ctx context.Context) (int64, error)
}

type CropPriceRepository interface {
	GetByCrop(ctx context.Context, crop string) ([]CropPrice, error)
	Create(ctx context.Context, p CropPrice) (CropPrice, error)
	Count(ctx context.Context) (int64, error)
}
