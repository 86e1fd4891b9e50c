package tenant

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	id        uuid.UUID
	name      string
	domain    string
	createdAt time.Time
	updatedAt time.Time
}

func New(name, domain string) Tenant {
	return Tenant{
		id:     uuid.New(),
		name:   strings.TrimSpace(name),
		domain: strings.TrimSpace(domain),
	}
}

func Hydrate(id uuid.UUID, name, domain string, createdAt, updatedAt time.Time) Tenant {
	return Tenant{
		id:        id,
		name:      name,
		domain:    domain,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (t Tenant) ID() uuid.UUID        { return t.id }
func (t Tenant) Name() string         { return t.name }
func (t Tenant) Domain() string       { return t.domain }
func (t Tenant) CreatedAt() time.Time { return t.createdAt }
func (t Tenant) UpdatedAt() time.Time { return t.updatedAt }
func (t Tenant) IsZero() bool         { return t.id == uuid.Nil }
