package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type User struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	email     string
	firstName string
	lastName  string
	role      Role
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, email, firstName, lastName string, role Role) User {
	return User{
		id:        uuid.New(),
		tenantID:  tenantID,
		email:     normalizeEmail(email),
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		role:      role,
		status:    StatusActive,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	email string,
	firstName string,
	lastName string,
	role Role,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		id:        id,
		tenantID:  tenantID,
		email:     normalizeEmail(email),
		firstName: firstName,
		lastName:  lastName,
		role:      role,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u User) ID() uuid.UUID        { return u.id }
func (u User) TenantID() uuid.UUID  { return u.tenantID }
func (u User) Email() string        { return u.email }
func (u User) FirstName() string    { return u.firstName }
func (u User) LastName() string     { return u.lastName }
func (u User) Role() Role           { return u.role }
func (u User) Status() Status       { return u.status }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }
func (u User) IsZero() bool         { return u.id == uuid.Nil && u.email == "" }

func (u User) WithName(firstName, lastName string) User {
	u.firstName = strings.TrimSpace(firstName)
	u.lastName = strings.TrimSpace(lastName)
	return u
}

func (u User) WithRole(role Role) User {
	u.role = role
	return u
}

func (u User) Deactivated() User {
	u.status = StatusInactive
	return u
}

func ValidRole(v string) bool {
	switch Role(v) {
	case RoleAdmin, RoleManager, RoleWorker:
		return true
	}
	return false
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
