package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	code      string
	name      string
	phone     string
	email     string
	legacyID  string
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, code, name string) Customer {
	return Customer{
		id:       uuid.New(),
		tenantID: tenantID,
		code:     strings.TrimSpace(code),
		name:     strings.TrimSpace(name),
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	code string,
	name string,
	phone string,
	email string,
	legacyID string,
	createdAt time.Time,
	updatedAt time.Time,
) Customer {
	return Customer{
		id:        id,
		tenantID:  tenantID,
		code:      code,
		name:      name,
		phone:     phone,
		email:     email,
		legacyID:  legacyID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c Customer) ID() uuid.UUID        { return c.id }
func (c Customer) TenantID() uuid.UUID  { return c.tenantID }
func (c Customer) Code() string         { return c.code }
func (c Customer) Name() string         { return c.name }
func (c Customer) Phone() string        { return c.phone }
func (c Customer) Email() string        { return c.email }
func (c Customer) LegacyID() string     { return c.legacyID }
func (c Customer) CreatedAt() time.Time { return c.createdAt }
func (c Customer) UpdatedAt() time.Time { return c.updatedAt }
func (c Customer) IsZero() bool         { return c.id == uuid.Nil && c.code == "" }

func (c Customer) WithName(name string) Customer {
	c.name = strings.TrimSpace(name)
	return c
}

func (c Customer) WithContact(phone, email string) Customer {
	c.phone = strings.TrimSpace(phone)
	c.email = strings.ToLower(strings.TrimSpace(email))
	return c
}

func (c Customer) WithLegacyID(legacyID string) Customer {
	c.legacyID = strings.TrimSpace(legacyID)
	return c
}

type FindParams struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Customer, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Customer, error)
	GetByLegacyID(ctx context.Context, legacyID string) (Customer, error)
	GetAll(ctx context.Context) ([]Customer, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, c Customer) (Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
