package vehicle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("vehicle not found")

type Vehicle struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	code         string
	registration string
	kind         string
	legacyID     string
	createdAt    time.Time
	updatedAt    time.Time
}

func New(tenantID uuid.UUID, code, registration, kind string) Vehicle {
	return Vehicle{
		id:           uuid.New(),
		tenantID:     tenantID,
		code:         strings.TrimSpace(code),
		registration: strings.TrimSpace(registration),
		kind:         strings.TrimSpace(kind),
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	code string,
	registration string,
	kind string,
	legacyID string,
	createdAt time.Time,
	updatedAt time.Time,
) Vehicle {
	return Vehicle{
		id:           id,
		tenantID:     tenantID,
		code:         code,
		registration: registration,
		kind:         kind,
		legacyID:     legacyID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (v Vehicle) ID() uuid.UUID        { return v.id }
func (v Vehicle) TenantID() uuid.UUID  { return v.tenantID }
func (v Vehicle) Code() string         { return v.code }
func (v Vehicle) Registration() string { return v.registration }
func (v Vehicle) Kind() string         { return v.kind }
func (v Vehicle) LegacyID() string     { return v.legacyID }
func (v Vehicle) CreatedAt() time.Time { return v.createdAt }
func (v Vehicle) UpdatedAt() time.Time { return v.updatedAt }
func (v Vehicle) IsZero() bool         { return v.id == uuid.Nil && v.code == "" }

func (v Vehicle) WithLegacyID(legacyID string) Vehicle {
	v.legacyID = strings.TrimSpace(legacyID)
	return v
}

func (v Vehicle) WithDetails(registration, kind string) Vehicle {
	v.registration = strings.TrimSpace(registration)
	v.kind = strings.TrimSpace(kind)
	return v
}

type Repository interface {
	GetAll(ctx context.Context) ([]Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (Vehicle, error)
	GetByLegacyID(ctx context.Context, legacyID string) (Vehicle, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, v Vehicle) (Vehicle, error)
	Update(ctx context.Context, v Vehicle) (Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
