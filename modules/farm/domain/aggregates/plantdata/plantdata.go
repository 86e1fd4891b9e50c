package plantdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("plant template not found")

// PlantData is a plant template: agronomic defaults for one crop item.
type PlantData struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	code      string
	item      string
	variety   string
	spacing   float64
	dripRate  float64
	legacyID  string
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, code, item, variety string, spacing, dripRate float64) PlantData {
	return PlantData{
		id:       uuid.New(),
		tenantID: tenantID,
		code:     strings.TrimSpace(code),
		item:     strings.TrimSpace(item),
		variety:  strings.TrimSpace(variety),
		spacing:  spacing,
		dripRate: dripRate,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	code string,
	item string,
	variety string,
	spacing float64,
	dripRate float64,
	legacyID string,
	createdAt time.Time,
	updatedAt time.Time,
) PlantData {
	return PlantData{
		id:        id,
		tenantID:  tenantID,
		code:      code,
		item:      item,
		variety:   variety,
		spacing:   spacing,
		dripRate:  dripRate,
		legacyID:  legacyID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p PlantData) ID() uuid.UUID        { return p.id }
func (p PlantData) TenantID() uuid.UUID  { return p.tenantID }
func (p PlantData) Code() string         { return p.code }
func (p PlantData) Item() string         { return p.item }
func (p PlantData) Variety() string      { return p.variety }
func (p PlantData) Spacing() float64     { return p.spacing }
func (p PlantData) DripRate() float64    { return p.dripRate }
func (p PlantData) LegacyID() string     { return p.legacyID }
func (p PlantData) CreatedAt() time.Time { return p.createdAt }
func (p PlantData) UpdatedAt() time.Time { return p.updatedAt }
func (p PlantData) IsZero() bool         { return p.id == uuid.Nil && p.code == "" }

func (p PlantData) WithLegacyID(legacyID string) PlantData {
	p.legacyID = strings.TrimSpace(legacyID)
	return p
}

func (p PlantData) WithDetails(item, variety string, spacing, dripRate float64) PlantData {
	p.item = strings.TrimSpace(item)
	p.variety = strings.TrimSpace(variety)
	p.spacing = spacing
	p.dripRate = dripRate
	return p
}

type Repository interface {
	GetAll(ctx context.Context) ([]PlantData, error)
	GetByID(ctx context.Context, id uuid.UUID) (PlantData, error)
	GetByLegacyID(ctx context.Context, legacyID string) (PlantData, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p PlantData) (PlantData, error)
	Update(ctx context.Context, p PlantData) (PlantData, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
