package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type memBlockRepo struct {
	blocks map[uuid.UUID]block.Block
}

func newMemBlockRepo() *memBlockRepo {
	return &memBlockRepo{blocks: make(map[uuid.UUID]block.Block)}
}

func (r *memBlockRepo) GetPaginated(_ context.Context, params *block.FindParams) ([]block.Block, int64, error) {
	var out []block.Block
	for _, b := range r.blocks {
		if params != nil && params.FarmID != uuid.Nil && b.FarmID() != params.FarmID {
			continue
		}
		if params != nil && params.Category != "" && b.Category() != params.Category {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *memBlockRepo) GetByID(_ context.Context, id uuid.UUID) (block.Block, error) {
	b, ok := r.blocks[id]
	if !ok {
		return block.Block{}, block.ErrNotFound
	}
	return b, nil
}

func (r *memBlockRepo) GetByLegacyCode(_ context.Context, legacyCode string) (block.Block, error) {
	for _, b := range r.blocks {
		if b.LegacyCode() == legacyCode {
			return b, nil
		}
	}
	return block.Block{}, block.ErrNotFound
}

func (r *memBlockRepo) GetPhysical(ctx context.Context) ([]block.Block, error) {
	out, _, err := r.GetPaginated(ctx, &block.FindParams{Category: block.CategoryPhysical})
	return out, err
}

func (r *memBlockRepo) GetVirtual(ctx context.Context) ([]block.Block, error) {
	out, _, err := r.GetPaginated(ctx, &block.FindParams{Category: block.CategoryVirtual})
	return out, err
}

func (r *memBlockRepo) GetChildren(_ context.Context, parentID uuid.UUID) ([]block.Block, error) {
	var out []block.Block
	for _, b := range r.blocks {
		if b.ParentBlockID() == parentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBlockRepo) Create(_ context.Context, b block.Block) (block.Block, error) {
	for _, existing := range r.blocks {
		if existing.BlockCode() == b.BlockCode() {
			return block.Block{}, block.ErrCodeTaken
		}
	}
	r.blocks[b.ID()] = b
	return b, nil
}

func (r *memBlockRepo) Update(_ context.Context, b block.Block) (block.Block, error) {
	if _, ok := r.blocks[b.ID()]; !ok {
		return block.Block{}, block.ErrNotFound
	}
	r.blocks[b.ID()] = b
	return b, nil
}

func (r *memBlockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.blocks[id]; !ok {
		return block.ErrNotFound
	}
	delete(r.blocks, id)
	return nil
}

func (r *memBlockRepo) CreatePlanting(ctx context.Context, child block.Block, parent block.Block) (block.Block, error) {
	created, err := r.Create(ctx, child)
	if err != nil {
		return block.Block{}, err
	}
	if _, err := r.Update(ctx, parent); err != nil {
		return block.Block{}, err
	}
	return created, nil
}

func (r *memBlockRepo) ClearPlanting(ctx context.Context, child block.Block, parent block.Block) error {
	if _, err := r.Update(ctx, child); err != nil {
		return err
	}
	_, err := r.Update(ctx, parent)
	return err
}

type memFarmRepo struct {
	farms map[uuid.UUID]farm.Farm
}

func newMemFarmRepo() *memFarmRepo {
	return &memFarmRepo{farms: make(map[uuid.UUID]farm.Farm)}
}

func (r *memFarmRepo) GetPaginated(_ context.Context, _ *farm.FindParams) ([]farm.Farm, int64, error) {
	var out []farm.Farm
	for _, f := range r.farms {
		out = append(out, f)
	}
	return out, int64(len(out)), nil
}

func (r *memFarmRepo) GetByID(_ context.Context, id uuid.UUID) (farm.Farm, error) {
	f, ok := r.farms[id]
	if !ok {
		return farm.Farm{}, farm.ErrNotFound
	}
	return f, nil
}

func (r *memFarmRepo) GetByLegacyID(_ context.Context, legacyID string) (farm.Farm, error) {
	for _, f := range r.farms {
		if f.LegacyID() == legacyID {
			return f, nil
		}
	}
	return farm.Farm{}, farm.ErrNotFound
}

func (r *memFarmRepo) GetAll(_ context.Context) ([]farm.Farm, error) {
	var out []farm.Farm
	for _, f := range r.farms {
		out = append(out, f)
	}
	return out, nil
}

func (r *memFarmRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.farms)), nil
}

func (r *memFarmRepo) Create(_ context.Context, f farm.Farm) (farm.Farm, error) {
	r.farms[f.ID()] = f
	return f, nil
}

func (r *memFarmRepo) Update(_ context.Context, f farm.Farm) (farm.Farm, error) {
	if _, ok := r.farms[f.ID()]; !ok {
		return farm.Farm{}, farm.ErrNotFound
	}
	r.farms[f.ID()] = f
	return f, nil
}

func (r *memFarmRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.farms[id]; !ok {
		return farm.ErrNotFound
	}
	delete(r.farms, id)
	return nil
}

func setupBlockService(t *testing.T) (*services.BlockService, *memBlockRepo, farm.Farm, context.Context) {
	t.Helper()
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)

	farms := newMemFarmRepo()
	f, err := farms.Create(ctx, farm.New(tenantID, "F001", "North Farm", "valley"))
	require.NoError(t, err)

	blocks := newMemBlockRepo()
	svc := services.NewBlockService(blocks, farms, eventbus.NewEventPublisher(logrus.New()))
	return svc, blocks, f, ctx
}

func TestBlockService_CreatePhysical_SequencesCodes(t *testing.T) {
	t.Parallel()
	svc, _, f, ctx := setupBlockService(t)

	first, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 2000, TotalDrips: 4000,
	})
	require.NoError(t, err)
	assert.Equal(t, "F001-01", first.BlockCode())
	assert.Equal(t, block.StateEmpty, first.State())

	second, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "F001-02", second.BlockCode())
}

func TestBlockService_CreatePlanting_AllocatesByDripRatio(t *testing.T) {
	t.Parallel()
	svc, repo, f, ctx := setupBlockService(t)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 2000, TotalDrips: 4000,
	})
	require.NoError(t, err)

	child, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{
		Crop: "tomato", Season: "2025-summer", Drips: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, "F001-01-001", child.BlockCode())
	assert.InDelta(t, 500.0, child.AllocatedArea(), 0.001)
	assert.Equal(t, block.StateActive, child.State())

	stored, err := repo.GetByID(ctx, parent.ID())
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, stored.AvailableArea(), 0.001)
	assert.Equal(t, block.StatePartial, stored.State())
	assert.Equal(t, 1, stored.VirtualCounter())
}

func TestBlockService_CreatePlanting_OnVirtualFails(t *testing.T) {
	t.Parallel()
	svc, _, f, ctx := setupBlockService(t)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 1000, TotalDrips: 10,
	})
	require.NoError(t, err)

	child, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{Crop: "melon", Drips: 5})
	require.NoError(t, err)

	_, err = svc.CreatePlanting(ctx, child.ID(), &block.CreatePlantingDTO{Crop: "melon", Drips: 5})
	assert.ErrorIs(t, err, block.ErrNotPhysical)
}

func TestBlockService_ClearPlanting_RestoresArea(t *testing.T) {
	t.Parallel()
	svc, repo, f, ctx := setupBlockService(t)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 2000, TotalDrips: 4000,
	})
	require.NoError(t, err)

	child, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{
		Crop: "tomato", Drips: 1000,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ClearPlanting(ctx, parent.ID(), child.ID()))

	cleared, err := repo.GetByID(ctx, child.ID())
	require.NoError(t, err)
	assert.Equal(t, block.StateCleared, cleared.State())
	assert.False(t, cleared.ClearedAt().IsZero())

	stored, err := repo.GetByID(ctx, parent.ID())
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, stored.AvailableArea(), 0.001)
	assert.Equal(t, block.StateEmpty, stored.State())
	// Counter keeps advancing so the next cycle gets a fresh code.
	assert.Equal(t, 1, stored.VirtualCounter())

	next, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{
		Crop: "pepper", Drips: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "F001-01-002", next.BlockCode())
}

func TestBlockService_ClearPlanting_AlreadyCleared(t *testing.T) {
	t.Parallel()
	svc, _, f, ctx := setupBlockService(t)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 1000, TotalDrips: 100,
	})
	require.NoError(t, err)

	child, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{Crop: "okra", Drips: 50})
	require.NoError(t, err)

	require.NoError(t, svc.ClearPlanting(ctx, parent.ID(), child.ID()))
	require.NoError(t, svc.ClearPlanting(ctx, parent.ID(), child.ID()))
}

func TestBlockService_Delete_BlocksWithPlantings(t *testing.T) {
	t.Parallel()
	svc, _, f, ctx := setupBlockService(t)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 1000, TotalDrips: 100,
	})
	require.NoError(t, err)

	_, err = svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{Crop: "okra", Drips: 50})
	require.NoError(t, err)

	assert.Error(t, svc.Delete(ctx, parent.ID()))
}

func TestBlockService_ClearPlanting_WrongParent(t *testing.T) {
	t.Parallel()
	svc, repo, f, ctx := setupBlockService(t)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 2000, TotalDrips: 4000,
	})
	require.NoError(t, err)
	other, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 1000, TotalDrips: 2000,
	})
	require.NoError(t, err)

	child, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{
		Crop: "tomato", Drips: 1000,
	})
	require.NoError(t, err)

	err = svc.ClearPlanting(ctx, other.ID(), child.ID())
	assert.ErrorIs(t, err, block.ErrNotFound)

	// The cycle must stay active when addressed through the wrong parent.
	stored, err := repo.GetByID(ctx, child.ID())
	require.NoError(t, err)
	assert.Equal(t, block.StateActive, stored.State())
}

func TestBlockService_CreatePlanting_PublishesUpdatedParent(t *testing.T) {
	t.Parallel()
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)

	farms := newMemFarmRepo()
	f, err := farms.Create(ctx, farm.New(tenantID, "F001", "North Farm", "valley"))
	require.NoError(t, err)

	publisher := eventbus.NewEventPublisher(logrus.New())
	var planted []services.PlantingCreatedEvent
	publisher.Subscribe(func(e services.PlantingCreatedEvent) {
		planted = append(planted, e)
	})
	publisher.Subscribe(func(e services.BlockCreatedEvent) {})

	svc := services.NewBlockService(newMemBlockRepo(), farms, publisher)

	parent, err := svc.CreatePhysical(ctx, &block.CreatePhysicalDTO{
		FarmID: f.ID().String(), TotalArea: 2000, TotalDrips: 4000,
	})
	require.NoError(t, err)

	child, err := svc.CreatePlanting(ctx, parent.ID(), &block.CreatePlantingDTO{
		Crop: "tomato", Drips: 1000,
	})
	require.NoError(t, err)
	require.Len(t, planted, 1)

	// Subscribers must see the parent as persisted, not its pre-update copy.
	got := planted[0]
	assert.Equal(t, child.ID(), got.Child.ID())
	assert.Equal(t, 1, got.Parent.VirtualCounter())
	assert.InDelta(t, 1500.0, got.Parent.AvailableArea(), 0.001)
	assert.Equal(t, block.StatePartial, got.Parent.State())
}
