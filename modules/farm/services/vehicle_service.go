package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type VehicleCreatedEvent struct {
	Vehicle vehicle.Vehicle
}

type VehicleUpdatedEvent struct {
	Vehicle vehicle.Vehicle
}

type VehicleDeletedEvent struct {
	ID uuid.UUID
}

type VehicleService struct {
	repo      vehicle.Repository
	publisher eventbus.EventBus
}

func NewVehicleService(repo vehicle.Repository, publisher eventbus.EventBus) *VehicleService {
	return &VehicleService{repo: repo, publisher: publisher}
}

func (s *VehicleService) GetAll(ctx context.Context) ([]vehicle.Vehicle, error) {
	return s.repo.GetAll(ctx)
}

func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VehicleService) Create(ctx context.Context, dto *vehicle.CreateDTO) (vehicle.Vehicle, error) {
	if dto == nil {
		return vehicle.Vehicle{}, errors.New("missing dto")
	}
	dto.Normalize()

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return vehicle.Vehicle{}, err
	}

	created, err := s.repo.Create(ctx, vehicle.New(tenantID, dto.Code, dto.Registration, dto.Kind))
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	s.publisher.Publish(VehicleCreatedEvent{Vehicle: created})
	return created, nil
}

func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, dto *vehicle.UpdateDTO) (vehicle.Vehicle, error) {
	if dto == nil {
		return vehicle.Vehicle{}, errors.New("missing dto")
	}
	dto.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return vehicle.Vehicle{}, err
	}

	updated, err := s.repo.Update(ctx, existing.WithDetails(dto.Registration, dto.Kind))
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	s.publisher.Publish(VehicleUpdatedEvent{Vehicle: updated})
	return updated, nil
}

func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(VehicleDeletedEvent{ID: id})
	return nil
}
