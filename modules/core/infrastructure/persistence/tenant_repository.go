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

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/entities/tenant"
)

type TenantRepository struct {
	collection *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) tenant.Repository {
	return &TenantRepository{collection: db.Collection(CollectionTenants)}
}

func (r *TenantRepository) GetAll(ctx context.Context) ([]tenant.Tenant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var out []tenant.Tenant
	for cursor.Next(ctx) {
		var doc tenantDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode tenant: %w", err)
		}
		out = append(out, toDomainTenant(doc))
	}
	return out, cursor.Err()
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (tenant.Tenant, error) {
	var doc tenantDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	if err != nil {
		return tenant.Tenant{}, err
	}
	return toDomainTenant(doc), nil
}

func (r *TenantRepository) Create(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	doc := toTenantDoc(t, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return tenant.Tenant{}, fmt.Errorf("insert tenant: %w", err)
	}
	return toDomainTenant(doc), nil
}
