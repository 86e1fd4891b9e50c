package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/aggregates/user"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type UserCreatedEvent struct {
	User user.User
}

type UserUpdatedEvent struct {
	User user.User
}

type UserDeletedEvent struct {
	ID uuid.UUID
}

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, dto *user.CreateDTO) (user.User, error) {
	if dto == nil {
		return user.User{}, errors.New("missing dto")
	}
	dto.Normalize()

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, err
	}

	entity := user.New(tenantID, dto.Email, dto.FirstName, dto.LastName, user.Role(dto.Role))
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(UserCreatedEvent{User: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, dto *user.UpdateDTO) (user.User, error) {
	if dto == nil {
		return user.User{}, errors.New("missing dto")
	}
	dto.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	updated, err := s.repo.Update(ctx, existing.
		WithName(dto.FirstName, dto.LastName).
		WithRole(user.Role(dto.Role)))
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(UserUpdatedEvent{User: updated})
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(UserDeletedEvent{ID: id})
	return nil
}
