package farm

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Farm is created once (by API or by migration) and keeps its legacy source
// UUID as the canonical key across all migration phases.
type Farm struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	code      string
	name      string
	location  string
	legacyID  string
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, code, name, location string) Farm {
	return Farm{
		id:       uuid.New(),
		tenantID: tenantID,
		code:     strings.TrimSpace(code),
		name:     strings.TrimSpace(name),
		location: strings.TrimSpace(location),
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	code string,
	name string,
	location string,
	legacyID string,
	createdAt time.Time,
	updatedAt time.Time,
) Farm {
	return Farm{
		id:        id,
		tenantID:  tenantID,
		code:      code,
		name:      name,
		location:  location,
		legacyID:  legacyID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (f Farm) ID() uuid.UUID        { return f.id }
func (f Farm) TenantID() uuid.UUID  { return f.tenantID }
func (f Farm) Code() string         { return f.code }
func (f Farm) Name() string         { return f.name }
func (f Farm) Location() string     { return f.location }
func (f Farm) LegacyID() string     { return f.legacyID }
func (f Farm) CreatedAt() time.Time { return f.createdAt }
func (f Farm) UpdatedAt() time.Time { return f.updatedAt }
func (f Farm) IsZero() bool         { return f.id == uuid.Nil && f.code == "" }

func (f Farm) WithLegacyID(legacyID string) Farm {
	f.legacyID = strings.TrimSpace(legacyID)
	return f
}

func (f Farm) WithName(name string) Farm {
	f.name = strings.TrimSpace(name)
	return f
}

func (f Farm) WithLocation(location string) Farm {
	f.location = strings.TrimSpace(location)
	return f
}
