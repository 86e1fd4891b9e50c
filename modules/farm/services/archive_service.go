package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/entities/archive"
)

// ArchiveService is a read-only surface over the append-only history
// collections; writes happen through the migration pipeline.
type ArchiveService struct {
	archives archive.BlockArchiveRepository
	harvests archive.HarvestRepository
	prices   archive.CropPriceRepository
}

func NewArchiveService(
	archives archive.BlockArchiveRepository,
	harvests archive.HarvestRepository,
	prices archive.CropPriceRepository,
) *ArchiveService {
	return &ArchiveService{archives: archives, harvests: harvests, prices: prices}
}

func (s *ArchiveService) BlockHistory(ctx context.Context, blockID uuid.UUID) ([]archive.BlockArchive, error) {
	return s.archives.GetByBlockID(ctx, blockID)
}

func (s *ArchiveService) BlockHarvests(ctx context.Context, blockID uuid.UUID) ([]archive.Harvest, error) {
	return s.harvests.GetByBlockID(ctx, blockID)
}

func (s *ArchiveService) PricesByCrop(ctx context.Context, crop string) ([]archive.CropPrice, error) {
	return s.prices.GetByCrop(ctx, crop)
}
