package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/aggregates/user"
	"github.com/fieldstone-hq/fieldstone/modules/core/services"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type memUserRepo struct {
	users map[uuid.UUID]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *memUserRepo) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	var out []user.User
	for _, u := range r.users {
		if params == nil || params.Q == "" || strings.Contains(u.Email(), params.Q) {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	for _, existing := range r.users {
		if existing.Email() == u.Email() && existing.TenantID() == u.TenantID() {
			return user.User{}, user.ErrEmailTaken
		}
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *memUserRepo) Update(_ context.Context, u user.User) (user.User, error) {
	if _, ok := r.users[u.ID()]; !ok {
		return user.User{}, user.ErrNotFound
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func setupUserService() (*services.UserService, context.Context) {
	repo := newMemUserRepo()
	svc := services.NewUserService(repo, eventbus.NewEventPublisher(logrus.New()))
	ctx := composables.WithTenantID(context.Background(), uuid.New())
	return svc, ctx
}

func TestUserService_Create(t *testing.T) {
	t.Parallel()
	svc, ctx := setupUserService()

	dto := &user.CreateDTO{
		Email:     "Jane.Doe@Example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "manager",
	}
	created, err := svc.Create(ctx, dto)
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", created.Email())
	assert.Equal(t, user.RoleManager, created.Role())
	assert.Equal(t, user.StatusActive, created.Status())
	assert.NotEqual(t, uuid.Nil, created.ID())
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, ctx := setupUserService()

	dto := &user.CreateDTO{Email: "a@b.com", FirstName: "A", LastName: "B", Role: "worker"}
	_, err := svc.Create(ctx, dto)
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto)
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestUserService_Create_NoTenant(t *testing.T) {
	t.Parallel()
	svc, _ := setupUserService()

	dto := &user.CreateDTO{Email: "a@b.com", FirstName: "A", LastName: "B", Role: "worker"}
	_, err := svc.Create(context.Background(), dto)
	assert.ErrorIs(t, err, composables.ErrNoTenantID)
}

func TestUserService_Update(t *testing.T) {
	t.Parallel()
	svc, ctx := setupUserService()

	created, err := svc.Create(ctx, &user.CreateDTO{
		Email: "a@b.com", FirstName: "A", LastName: "B", Role: "worker",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID(), &user.UpdateDTO{
		FirstName: "Alice", LastName: "Brown", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName())
	assert.Equal(t, user.RoleAdmin, updated.Role())
}

func TestUserService_Delete_NotFound(t *testing.T) {
	t.Parallel()
	svc, ctx := setupUserService()

	err := svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}
