package persistence

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/aggregates/user"
	"github.com/fieldstone-hq/fieldstone/modules/core/domain/entities/tenant"
)

const (
	CollectionTenants = "tenants"
	CollectionUsers   = "users"
)

type tenantDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Domain    string    `bson:"domain,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type userDoc struct {
	ID        string    `bson:"_id"`
	TenantID  string    `bson:"tenantId"`
	Email     string    `bson:"email"`
	FirstName string    `bson:"firstName"`
	LastName  string    `bson:"lastName"`
	Role      string    `bson:"role"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toTenantDoc(t tenant.Tenant, now time.Time) tenantDoc {
	createdAt := t.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	return tenantDoc{
		ID:        t.ID().String(),
		Name:      t.Name(),
		Domain:    t.Domain(),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

func toDomainTenant(doc tenantDoc) tenant.Tenant {
	return tenant.Hydrate(
		mustUUID(doc.ID),
		doc.Name,
		doc.Domain,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

func toUserDoc(u user.User, now time.Time) userDoc {
	createdAt := u.CreatedAt()
	if createdAt.IsZero() {
		createdAt = now
	}
	return userDoc{
		ID:        u.ID().String(),
		TenantID:  u.TenantID().String(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Role:      string(u.Role()),
		Status:    string(u.Status()),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

func toDomainUser(doc userDoc) user.User {
	return user.Hydrate(
		mustUUID(doc.ID),
		mustUUID(doc.TenantID),
		doc.Email,
		doc.FirstName,
		doc.LastName,
		user.Role(doc.Role),
		user.Status(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

// mustUUID tolerates malformed stored ids by mapping them to uuid.Nil;
// callers treat Nil as not-found.
func mustUUID(v string) uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil
	}
	return id
}
