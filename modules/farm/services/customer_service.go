package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type CustomerCreatedEvent struct {
	Customer customer.Customer
}

type CustomerUpdatedEvent struct {
	Customer customer.Customer
}

type CustomerDeletedEvent struct {
	ID uuid.UUID
}

type CustomerService struct {
	repo      customer.Repository
	publisher eventbus.EventBus
}

func NewCustomerService(repo customer.Repository, publisher eventbus.EventBus) *CustomerService {
	return &CustomerService{repo: repo, publisher: publisher}
}

func (s *CustomerService) GetPaginated(ctx context.Context, params *customer.FindParams) ([]customer.Customer, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (customer.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, dto *customer.CreateDTO) (customer.Customer, error) {
	if dto == nil {
		return customer.Customer{}, errors.New("missing dto")
	}
	dto.Normalize()

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return customer.Customer{}, err
	}

	entity := customer.New(tenantID, dto.Code, dto.Name).WithContact(dto.Phone, dto.Email)
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return customer.Customer{}, err
	}
	s.publisher.Publish(CustomerCreatedEvent{Customer: created})
	return created, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, dto *customer.UpdateDTO) (customer.Customer, error) {
	if dto == nil {
		return customer.Customer{}, errors.New("missing dto")
	}
	dto.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}

	updated, err := s.repo.Update(ctx, existing.
		WithName(dto.Name).
		WithContact(dto.Phone, dto.Email))
	if err != nil {
		return customer.Customer{}, err
	}
	s.publisher.Publish(CustomerUpdatedEvent{Customer: updated})
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(CustomerDeletedEvent{ID: id})
	return nil
}
