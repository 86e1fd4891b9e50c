package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type BlockCreatedEvent struct {
	Block block.Block
}

type PlantingCreatedEvent struct {
	Child  block.Block
	Parent block.Block
}

type PlantingClearedEvent struct {
	ChildID uuid.UUID
}

type BlockService struct {
	repo      block.Repository
	farms     farm.Repository
	publisher eventbus.EventBus
}

func NewBlockService(repo block.Repository, farms farm.Repository, publisher eventbus.EventBus) *BlockService {
	return &BlockService{repo: repo, farms: farms, publisher: publisher}
}

func (s *BlockService) GetPaginated(ctx context.Context, params *block.FindParams) ([]block.Block, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *BlockService) GetByID(ctx context.Context, id uuid.UUID) (block.Block, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BlockService) GetChildren(ctx context.Context, parentID uuid.UUID) ([]block.Block, error) {
	return s.repo.GetChildren(ctx, parentID)
}

// CreatePhysical registers a new land parcel under a farm. The block code
// sequence continues from the number of parcels the farm already has.
func (s *BlockService) CreatePhysical(ctx context.Context, dto *block.CreatePhysicalDTO) (block.Block, error) {
	if dto == nil {
		return block.Block{}, errors.New("missing dto")
	}
	dto.Normalize()

	farmID, err := uuid.Parse(dto.FarmID)
	if err != nil {
		return block.Block{}, farm.ErrNotFound
	}
	f, err := s.farms.GetByID(ctx, farmID)
	if err != nil {
		return block.Block{}, err
	}

	_, existing, err := s.repo.GetPaginated(ctx, &block.FindParams{
		FarmID:   f.ID(),
		Category: block.CategoryPhysical,
		Limit:    1,
	})
	if err != nil {
		return block.Block{}, err
	}

	entity := block.NewPhysical(
		f.TenantID(), f.ID(), f.Code(), int(existing)+1,
		dto.LegacyCode, dto.TotalArea, dto.TotalDrips,
	)
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return block.Block{}, err
	}
	s.publisher.Publish(BlockCreatedEvent{Block: created})
	return created, nil
}

// CreatePlanting opens a planting cycle in a physical block. The cycle's
// area share comes from its drip count relative to the parent's drip total,
// and the child insert plus parent update land atomically.
func (s *BlockService) CreatePlanting(ctx context.Context, parentID uuid.UUID, dto *block.CreatePlantingDTO) (block.Block, error) {
	if dto == nil {
		return block.Block{}, errors.New("missing dto")
	}
	dto.Normalize()

	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return block.Block{}, err
	}
	if !parent.IsPhysical() {
		return block.Block{}, block.ErrNotPhysical
	}

	plantedAt := time.Now().UTC()
	if dto.PlantedAt != "" {
		if t, err := time.Parse(time.RFC3339, dto.PlantedAt); err == nil {
			plantedAt = t
		}
	}

	allocated := parent.AllocationFor(dto.Drips)
	child := block.NewVirtual(parent, "", dto.Crop, dto.Season, plantedAt, allocated)
	updatedParent := parent.WithChild(child.ID(), allocated)

	created, err := s.repo.CreatePlanting(ctx, child, updatedParent)
	if err != nil {
		return block.Block{}, err
	}
	s.publisher.Publish(PlantingCreatedEvent{Child: created, Parent: updatedParent})
	return created, nil
}

// ClearPlanting ends a planting cycle, returning its allocated area to the
// parent parcel. The cycle is addressed through its parent, so a child that
// does not belong to parentID reads as not found.
func (s *BlockService) ClearPlanting(ctx context.Context, parentID, childID uuid.UUID) error {
	child, err := s.repo.GetByID(ctx, childID)
	if err != nil {
		return err
	}
	if !child.IsVirtual() {
		return block.ErrNotVirtual
	}
	if child.ParentBlockID() != parentID {
		return block.ErrNotFound
	}
	if child.State() == block.StateCleared {
		return nil
	}

	parent, err := s.repo.GetByID(ctx, child.ParentBlockID())
	if err != nil {
		return err
	}

	err = s.repo.ClearPlanting(ctx,
		child.Cleared(time.Now().UTC()),
		parent.WithoutChild(child.ID(), child.AllocatedArea()),
	)
	if err != nil {
		return err
	}
	s.publisher.Publish(PlantingClearedEvent{ChildID: childID})
	return nil
}

func (s *BlockService) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.IsPhysical() && len(b.ChildBlockIDs()) > 0 {
		return errors.New("block has active plantings")
	}
	return s.repo.Delete(ctx, id)
}
