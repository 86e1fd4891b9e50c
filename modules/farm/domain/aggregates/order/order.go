package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
	ErrNoItems  = errors.New("order has no line items")
	ErrBadState = errors.New("invalid order state transition")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type LineItem struct {
	Crop      string
	Quantity  float64
	UnitPrice decimal.Decimal
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromFloat(li.Quantity)).Round(2)
}

type Order struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	customerID uuid.UUID
	items      []LineItem
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

func New(tenantID, customerID uuid.UUID, items []LineItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrNoItems
	}
	cleaned := make([]LineItem, 0, len(items))
	for _, item := range items {
		item.Crop = strings.TrimSpace(item.Crop)
		cleaned = append(cleaned, item)
	}
	return Order{
		id:         uuid.New(),
		tenantID:   tenantID,
		customerID: customerID,
		items:      cleaned,
		status:     StatusDraft,
	}, nil
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	customerID uuid.UUID,
	items []LineItem,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) Order {
	return Order{
		id:         id,
		tenantID:   tenantID,
		customerID: customerID,
		items:      items,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (o Order) ID() uuid.UUID         { return o.id }
func (o Order) TenantID() uuid.UUID   { return o.tenantID }
func (o Order) CustomerID() uuid.UUID { return o.customerID }
func (o Order) Items() []LineItem     { return o.items }
func (o Order) Status() Status        { return o.status }
func (o Order) CreatedAt() time.Time  { return o.createdAt }
func (o Order) UpdatedAt() time.Time  { return o.updatedAt }
func (o Order) IsZero() bool          { return o.id == uuid.Nil }

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Total())
	}
	return total.Round(2)
}

// Transition enforces the order lifecycle:
// draft -> confirmed -> delivered, with cancel allowed before delivery.
func (o Order) Transition(to Status) (Order, error) {
	allowed := map[Status][]Status{
		StatusDraft:     {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusDelivered, StatusCancelled},
	}
	for _, next := range allowed[o.status] {
		if next == to {
			o.status = to
			return o, nil
		}
	}
	return Order{}, ErrBadState
}

type FindParams struct {
	CustomerID uuid.UUID
	Status     Status
	Limit      int
	Offset     int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Order, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	Create(ctx context.Context, o Order) (Order, error)
	Update(ctx context.Context, o Order) (Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
