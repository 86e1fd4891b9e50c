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

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type CustomerRepository struct {
	collection *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) customer.Repository {
	return &CustomerRepository{collection: db.Collection(CollectionCustomers)}
}

func (r *CustomerRepository) GetPaginated(ctx context.Context, params *customer.FindParams) ([]customer.Customer, int64, error) {
	if params == nil {
		params = &customer.FindParams{}
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
	if params.Q != "" {
		filter["$or"] = bson.A{
			bson.M{"code": bson.M{"$regex": params.Q, "$options": "i"}},
			bson.M{"name": bson.M{"$regex": params.Q, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find customers: %w", err)
	}
	defer cursor.Close(ctx)

	out, err := decodeCustomers(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (customer.Customer, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return customer.Customer{}, err
	}
	var doc customerDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return customer.Customer{}, customer.ErrNotFound
	}
	if err != nil {
		return customer.Customer{}, err
	}
	return toDomainCustomer(doc), nil
}

func (r *CustomerRepository) GetByLegacyID(ctx context.Context, legacyID string) (customer.Customer, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return customer.Customer{}, err
	}
	var doc customerDoc
	err = r.collection.FindOne(ctx, bson.M{"legacyId": legacyID, "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return customer.Customer{}, customer.ErrNotFound
	}
	if err != nil {
		return customer.Customer{}, err
	}
	return toDomainCustomer(doc), nil
}

func (r *CustomerRepository) GetAll(ctx context.Context) ([]customer.Customer, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID.String()},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer cursor.Close(ctx)
	return decodeCustomers(ctx, cursor)
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}

func (r *CustomerRepository) Create(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return customer.Customer{}, err
	}
	if c.TenantID() != tenantID {
		return customer.Customer{}, customer.ErrNotFound
	}
	doc := toCustomerDoc(c, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return customer.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return toDomainCustomer(doc), nil
}

func (r *CustomerRepository) Update(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return customer.Customer{}, err
	}
	doc := toCustomerDoc(c, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return customer.Customer{}, customer.ErrNotFound
	}
	return toDomainCustomer(doc), nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func decodeCustomers(ctx context.Context, cursor *mongo.Cursor) ([]customer.Customer, error) {
	var out []customer.Customer
	for cursor.Next(ctx) {
		var doc customerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		out = append(out, toDomainCustomer(doc))
	}
	return out, cursor.Err()
}
