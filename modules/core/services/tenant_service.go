package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/entities/tenant"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type TenantCreatedEvent struct {
	Tenant tenant.Tenant
}

type TenantService struct {
	repo      tenant.Repository
	publisher eventbus.EventBus
}

func NewTenantService(repo tenant.Repository, publisher eventbus.EventBus) *TenantService {
	return &TenantService{repo: repo, publisher: publisher}
}

func (s *TenantService) GetAll(ctx context.Context) ([]tenant.Tenant, error) {
	return s.repo.GetAll(ctx)
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (tenant.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) Create(ctx context.Context, name, domain string) (tenant.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return tenant.Tenant{}, errors.New("tenant name is required")
	}
	created, err := s.repo.Create(ctx, tenant.New(name, domain))
	if err != nil {
		return tenant.Tenant{}, err
	}
	s.publisher.Publish(TenantCreatedEvent{Tenant: created})
	return created, nil
}
