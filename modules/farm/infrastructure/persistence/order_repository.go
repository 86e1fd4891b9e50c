package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/order"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) order.Repository {
	return &OrderRepository{collection: db.Collection(CollectionOrders)}
}

func (r *OrderRepository) GetPaginated(ctx context.Context, params *order.FindParams) ([]order.Order, int64, error) {
	if params == nil {
		params = &order.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	filter := bson.M{"tenantId": tenantID.String()}
	if params.CustomerID != uuid.Nil {
		filter["customerId"] = params.CustomerID.String()
	}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []order.Order
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode order: %w", err)
		}
		out = append(out, toDomainOrder(doc))
	}
	return out, total, cursor.Err()
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return order.Order{}, err
	}
	var doc orderDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}
	return toDomainOrder(doc), nil
}

func (r *OrderRepository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return order.Order{}, err
	}
	if o.TenantID() != tenantID {
		return order.Order{}, order.ErrNotFound
	}
	doc := toOrderDoc(o, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return order.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return toDomainOrder(doc), nil
}

func (r *OrderRepository) Update(ctx context.Context, o order.Order) (order.Order, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return order.Order{}, err
	}
	doc := toOrderDoc(o, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		return order.Order{}, fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return order.Order{}, order.ErrNotFound
	}
	return toDomainOrder(doc), nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}
