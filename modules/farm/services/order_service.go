package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/order"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

type OrderCreatedEvent struct {
	Order order.Order
}

type OrderTransitionedEvent struct {
	Order order.Order
}

type OrderService struct {
	repo      order.Repository
	customers customer.Repository
	publisher eventbus.EventBus
}

func NewOrderService(repo order.Repository, customers customer.Repository, publisher eventbus.EventBus) *OrderService {
	return &OrderService{repo: repo, customers: customers, publisher: publisher}
}

func (s *OrderService) GetPaginated(ctx context.Context, params *order.FindParams) ([]order.Order, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderService) Create(ctx context.Context, dto *order.CreateDTO) (order.Order, error) {
	if dto == nil {
		return order.Order{}, errors.New("missing dto")
	}
	dto.Normalize()

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return order.Order{}, err
	}

	customerID, err := uuid.Parse(dto.CustomerID)
	if err != nil {
		return order.Order{}, customer.ErrNotFound
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return order.Order{}, err
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return order.Order{}, errors.New("invalid unit price: " + item.UnitPrice)
		}
		items = append(items, order.LineItem{
			Crop:      item.Crop,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}

	entity, err := order.New(tenantID, customerID, items)
	if err != nil {
		return order.Order{}, err
	}
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return order.Order{}, err
	}
	s.publisher.Publish(OrderCreatedEvent{Order: created})
	return created, nil
}

func (s *OrderService) Transition(ctx context.Context, id uuid.UUID, dto *order.TransitionDTO) (order.Order, error) {
	if dto == nil {
		return order.Order{}, errors.New("missing dto")
	}
	dto.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	next, err := existing.Transition(order.Status(dto.Status))
	if err != nil {
		return order.Order{}, err
	}
	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return order.Order{}, err
	}
	s.publisher.Publish(OrderTransitionedEvent{Order: updated})
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status() != order.StatusDraft {
		return order.ErrBadState
	}
	return s.repo.Delete(ctx, id)
}
