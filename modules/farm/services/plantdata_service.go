package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type PlantDataCreatedEvent struct {
	PlantData plantdata.PlantData
}

type PlantDataUpdatedEvent struct {
	PlantData plantdata.PlantData
}

type PlantDataDeletedEvent struct {
	ID uuid.UUID
}

type PlantDataService struct {
	repo      plantdata.Repository
	publisher eventbus.EventBus
}

func NewPlantDataService(repo plantdata.Repository, publisher eventbus.EventBus) *PlantDataService {
	return &PlantDataService{repo: repo, publisher: publisher}
}

func (s *PlantDataService) GetAll(ctx context.Context) ([]plantdata.PlantData, error) {
	return s.repo.GetAll(ctx)
}

func (s *PlantDataService) GetByID(ctx context.Context, id uuid.UUID) (plantdata.PlantData, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlantDataService) Create(ctx context.Context, dto *plantdata.CreateDTO) (plantdata.PlantData, error) {
	if dto == nil {
		return plantdata.PlantData{}, errors.New("missing dto")
	}
	dto.Normalize()

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return plantdata.PlantData{}, err
	}

	entity := plantdata.New(tenantID, dto.Code, dto.Item, dto.Variety, dto.Spacing, dto.DripRate)
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return plantdata.PlantData{}, err
	}
	s.publisher.Publish(PlantDataCreatedEvent{PlantData: created})
	return created, nil
}

func (s *PlantDataService) Update(ctx context.Context, id uuid.UUID, dto *plantdata.UpdateDTO) (plantdata.PlantData, error) {
	if dto == nil {
		return plantdata.PlantData{}, errors.New("missing dto")
	}
	dto.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return plantdata.PlantData{}, err
	}

	updated, err := s.repo.Update(ctx, existing.WithDetails(dto.Item, dto.Variety, dto.Spacing, dto.DripRate))
	if err != nil {
		return plantdata.PlantData{}, err
	}
	s.publisher.Publish(PlantDataUpdatedEvent{PlantData: updated})
	return updated, nil
}

func (s *PlantDataService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(PlantDataDeletedEvent{ID: id})
	return nil
}
