package block

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryPhysical Category = "physical"
	CategoryVirtual  Category = "virtual"
)

type State string

const (
	// Physical block states.
	StateEmpty   State = "empty"
	StatePartial State = "partial"
	StateFull    State = "full"

	// Virtual block states.
	StateActive  State = "active"
	StateCleared State = "cleared"
)

// DefaultParentDrips guards the drip-ratio allocation against division by
// zero when the source row carries no drip total.
const DefaultParentDrips = 10

// Block is polymorphic over Category: a physical block is a fixed land
// parcel; a virtual block is one planting cycle inside a physical block.
type Block struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	farmID     uuid.UUID
	category   Category
	blockCode  string
	legacyCode string
	state      State
	createdAt  time.Time
	updatedAt  time.Time

	// Physical fields.
	totalArea      float64
	availableArea  float64
	totalDrips     int
	childBlockIDs  []uuid.UUID
	virtualCounter int

	// Virtual fields.
	parentBlockID uuid.UUID
	allocatedArea float64
	crop          string
	season        string
	plantedAt     time.Time
	clearedAt     time.Time
}

// NewPhysical derives a physical block from a farm parcel. The block code is
// the farm's display code plus a zero-padded sequence number.
func NewPhysical(tenantID, farmID uuid.UUID, farmCode string, seq int, legacyCode string, totalArea float64, totalDrips int) Block {
	return Block{
		id:            uuid.New(),
		tenantID:      tenantID,
		farmID:        farmID,
		category:      CategoryPhysical,
		blockCode:     fmt.Sprintf("%s-%02d", farmCode, seq),
		legacyCode:    strings.TrimSpace(legacyCode),
		state:         StateEmpty,
		totalArea:     totalArea,
		availableArea: totalArea,
		totalDrips:    totalDrips,
	}
}

// NewVirtual creates one planting cycle inside the given physical parent.
// The cycle counter is read from the parent but not advanced here; the
// parent advances when the child is attached via WithChild.
func NewVirtual(parent Block, legacyCode, crop, season string, plantedAt time.Time, allocatedArea float64) Block {
	return Block{
		id:            uuid.New(),
		tenantID:      parent.tenantID,
		farmID:        parent.farmID,
		category:      CategoryVirtual,
		blockCode:     parent.NextChildCode(),
		legacyCode:    strings.TrimSpace(legacyCode),
		state:         StateActive,
		parentBlockID: parent.id,
		allocatedArea: allocatedArea,
		crop:          strings.TrimSpace(crop),
		season:        strings.TrimSpace(season),
		plantedAt:     plantedAt,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	farmID uuid.UUID,
	category Category,
	blockCode string,
	legacyCode string,
	state State,
	totalArea float64,
	availableArea float64,
	totalDrips int,
	childBlockIDs []uuid.UUID,
	virtualCounter int,
	parentBlockID uuid.UUID,
	allocatedArea float64,
	crop string,
	season string,
	plantedAt time.Time,
	clearedAt time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) Block {
	return Block{
		id:             id,
		tenantID:       tenantID,
		farmID:         farmID,
		category:       category,
		blockCode:      blockCode,
		legacyCode:     legacyCode,
		state:          state,
		totalArea:      totalArea,
		availableArea:  availableArea,
		totalDrips:     totalDrips,
		childBlockIDs:  childBlockIDs,
		virtualCounter: virtualCounter,
		parentBlockID:  parentBlockID,
		allocatedArea:  allocatedArea,
		crop:           crop,
		season:         season,
		plantedAt:      plantedAt,
		clearedAt:      clearedAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (b Block) ID() uuid.UUID              { return b.id }
func (b Block) TenantID() uuid.UUID        { return b.tenantID }
func (b Block) FarmID() uuid.UUID          { return b.farmID }
func (b Block) Category() Category         { return b.category }
func (b Block) BlockCode() string          { return b.blockCode }
func (b Block) LegacyCode() string         { return b.legacyCode }
func (b Block) State() State               { return b.state }
func (b Block) TotalArea() float64         { return b.totalArea }
func (b Block) AvailableArea() float64     { return b.availableArea }
func (b Block) TotalDrips() int            { return b.totalDrips }
func (b Block) ChildBlockIDs() []uuid.UUID { return b.childBlockIDs }
func (b Block) VirtualCounter() int        { return b.virtualCounter }
func (b Block) ParentBlockID() uuid.UUID   { return b.parentBlockID }
func (b Block) AllocatedArea() float64     { return b.allocatedArea }
func (b Block) Crop() string               { return b.crop }
func (b Block) Season() string             { return b.season }
func (b Block) PlantedAt() time.Time       { return b.plantedAt }
func (b Block) ClearedAt() time.Time       { return b.clearedAt }
func (b Block) CreatedAt() time.Time       { return b.createdAt }
func (b Block) UpdatedAt() time.Time       { return b.updatedAt }
func (b Block) IsZero() bool               { return b.id == uuid.Nil && b.blockCode == "" }
func (b Block) IsPhysical() bool           { return b.category == CategoryPhysical }
func (b Block) IsVirtual() bool            { return b.category == CategoryVirtual }

// NextChildCode generates the block code for the next planting cycle:
// {farmCode}-{seq}-{cycle}, cycle zero-padded to three digits. Per-parent
// counters keep codes unique without a global sequence.
func (b Block) NextChildCode() string {
	return fmt.Sprintf("%s-%03d", b.blockCode, b.virtualCounter+1)
}

// AllocationFor computes the child's area share of the parent by drip-count
// ratio, rounded to two decimals. A missing or zero parent drip total falls
// back to DefaultParentDrips.
func (b Block) AllocationFor(drips int) float64 {
	parentDrips := b.totalDrips
	if parentDrips <= 0 {
		parentDrips = DefaultParentDrips
	}
	alloc := decimal.NewFromFloat(b.totalArea).
		Mul(decimal.NewFromInt(int64(drips))).
		Div(decimal.NewFromInt(int64(parentDrips))).
		Round(2)
	f, _ := alloc.Float64()
	return f
}

// WithChild attaches a planting cycle: records the child id, advances the
// cycle counter, deducts the allocated area (floored at zero) and flips an
// empty block to partial.
func (b Block) WithChild(childID uuid.UUID, allocatedArea float64) Block {
	b.childBlockIDs = append(append([]uuid.UUID(nil), b.childBlockIDs...), childID)
	b.virtualCounter++

	avail := decimal.NewFromFloat(b.availableArea).
		Sub(decimal.NewFromFloat(allocatedArea)).
		Round(2)
	if avail.IsNegative() {
		avail = decimal.Zero
	}
	b.availableArea, _ = avail.Float64()

	if avail.IsZero() {
		b.state = StateFull
	} else {
		b.state = StatePartial
	}
	return b
}

// WithoutChild detaches a cleared planting cycle and returns its area to the
// parent. The cycle counter never decreases so block codes stay unique.
func (b Block) WithoutChild(childID uuid.UUID, allocatedArea float64) Block {
	children := make([]uuid.UUID, 0, len(b.childBlockIDs))
	for _, id := range b.childBlockIDs {
		if id != childID {
			children = append(children, id)
		}
	}
	b.childBlockIDs = children

	avail := decimal.NewFromFloat(b.availableArea).
		Add(decimal.NewFromFloat(allocatedArea)).
		Round(2)
	if total := decimal.NewFromFloat(b.totalArea); avail.GreaterThan(total) {
		avail = total
	}
	b.availableArea, _ = avail.Float64()

	if len(b.childBlockIDs) == 0 {
		b.state = StateEmpty
	} else {
		b.state = StatePartial
	}
	return b
}

// Cleared ends a virtual block's planting cycle.
func (b Block) Cleared(at time.Time) Block {
	b.state = StateCleared
	b.clearedAt = at
	return b
}
