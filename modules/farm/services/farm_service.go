package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type FarmCreatedEvent struct {
	Farm farm.Farm
}

type FarmUpdatedEvent struct {
	Farm farm.Farm
}

type FarmDeletedEvent struct {
	ID uuid.UUID
}

type FarmService struct {
	repo      farm.Repository
	publisher eventbus.EventBus
}

func NewFarmService(repo farm.Repository, publisher eventbus.EventBus) *FarmService {
	return &FarmService{repo: repo, publisher: publisher}
}

func (s *FarmService) GetPaginated(ctx context.Context, params *farm.FindParams) ([]farm.Farm, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *FarmService) GetByID(ctx context.Context, id uuid.UUID) (farm.Farm, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FarmService) Create(ctx context.Context, dto *farm.CreateDTO) (farm.Farm, error) {
	if dto == nil {
		return farm.Farm{}, errors.New("missing dto")
	}
	dto.Normalize()

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return farm.Farm{}, err
	}

	created, err := s.repo.Create(ctx, farm.New(tenantID, dto.Code, dto.Name, dto.Location))
	if err != nil {
		return farm.Farm{}, err
	}
	s.publisher.Publish(FarmCreatedEvent{Farm: created})
	return created, nil
}

func (s *FarmService) Update(ctx context.Context, id uuid.UUID, dto *farm.UpdateDTO) (farm.Farm, error) {
	if dto == nil {
		return farm.Farm{}, errors.New("missing dto")
	}
	dto.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return farm.Farm{}, err
	}

	updated, err := s.repo.Update(ctx, existing.
		WithName(dto.Name).
		WithLocation(dto.Location))
	if err != nil {
		return farm.Farm{}, err
	}
	s.publisher.Publish(FarmUpdatedEvent{Farm: updated})
	return updated, nil
}

func (s *FarmService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(FarmDeletedEvent{ID: id})
	return nil
}
