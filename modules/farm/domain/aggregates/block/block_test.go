package block_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
)

func newParent(t *testing.T, totalArea float64, totalDrips int) block.Block {
	t.Helper()
	return block.NewPhysical(uuid.New(), uuid.New(), "F001", 10, "LW-10", totalArea, totalDrips)
}

func TestNewPhysical_Defaults(t *testing.T) {
	t.Parallel()

	b := newParent(t, 2000, 4000)
	assert.Equal(t, block.CategoryPhysical, b.Category())
	assert.Equal(t, "F001-10", b.BlockCode())
	assert.Equal(t, "LW-10", b.LegacyCode())
	assert.Equal(t, block.StateEmpty, b.State())
	assert.Equal(t, 2000.0, b.AvailableArea())
	assert.Empty(t, b.ChildBlockIDs())
	assert.Zero(t, b.VirtualCounter())
}

func TestAllocationFor_DripRatio(t *testing.T) {
	t.Parallel()

	// 2000 * 1000/4000 = 500.0
	parent := newParent(t, 2000, 4000)
	assert.Equal(t, 500.0, parent.AllocationFor(1000))
}

func TestAllocationFor_RoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 1000, 3)
	// 1000 * 1/3 = 333.333... -> 333.33
	assert.Equal(t, 333.33, parent.AllocationFor(1))
}

func TestAllocationFor_DefaultsParentDrips(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 100, 0)
	// parent drips default to 10: 100 * 5/10 = 50
	assert.Equal(t, 50.0, parent.AllocationFor(5))
}

func TestWithChild_UpdatesParent(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 2000, 4000)
	alloc := parent.AllocationFor(1000)
	child := block.NewVirtual(parent, "LW-10-A", "tomato", "2020/21", time.Now(), alloc)

	updated := parent.WithChild(child.ID(), alloc)

	assert.Equal(t, 1500.0, updated.AvailableArea())
	assert.Equal(t, block.StatePartial, updated.State())
	assert.Equal(t, 1, updated.VirtualCounter())
	require.Len(t, updated.ChildBlockIDs(), 1)
	assert.Equal(t, child.ID(), updated.ChildBlockIDs()[0])
}

func TestWithChild_AreaConservation(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 2000, 4000)
	allocated := 0.0
	for _, drips := range []int{1000, 700, 1300} {
		alloc := parent.AllocationFor(drips)
		parent = parent.WithChild(uuid.New(), alloc)
		allocated += alloc
	}
	assert.InDelta(t, parent.TotalArea(), parent.AvailableArea()+allocated, 0.01)
}

func TestWithChild_FloorsAtZeroAndGoesFull(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 100, 10)
	parent = parent.WithChild(uuid.New(), 150)

	assert.Equal(t, 0.0, parent.AvailableArea())
	assert.Equal(t, block.StateFull, parent.State())
}

func TestNextChildCode_CycleSequence(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 2000, 4000)
	assert.Equal(t, "F001-10-001", parent.NextChildCode())

	parent = parent.WithChild(uuid.New(), 10)
	assert.Equal(t, "F001-10-002", parent.NextChildCode())
}

func TestNewVirtual_InheritsParent(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 2000, 4000)
	child := block.NewVirtual(parent, "LW-10-A", "tomato", "2020/21", time.Now(), 500)

	assert.Equal(t, block.CategoryVirtual, child.Category())
	assert.Equal(t, "F001-10-001", child.BlockCode())
	assert.Equal(t, parent.ID(), child.ParentBlockID())
	assert.Equal(t, parent.FarmID(), child.FarmID())
	assert.Equal(t, block.StateActive, child.State())
	assert.Equal(t, 500.0, child.AllocatedArea())
}

func TestWithoutChild_RestoresAreaAndState(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 2000, 4000)
	childID := uuid.New()
	parent = parent.WithChild(childID, 500)
	require.Equal(t, block.StatePartial, parent.State())

	parent = parent.WithoutChild(childID, 500)
	assert.Equal(t, 2000.0, parent.AvailableArea())
	assert.Equal(t, block.StateEmpty, parent.State())
	assert.Empty(t, parent.ChildBlockIDs())
	// Counter never rewinds: the next cycle code must stay unique.
	assert.Equal(t, "F001-10-002", parent.NextChildCode())
}

func TestCleared(t *testing.T) {
	t.Parallel()

	parent := newParent(t, 2000, 4000)
	child := block.NewVirtual(parent, "LW-10-A", "tomato", "2020/21", time.Now(), 500)

	at := time.Now()
	cleared := child.Cleared(at)
	assert.Equal(t, block.StateCleared, cleared.State())
	assert.Equal(t, at, cleared.ClearedAt())
}
