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

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type VehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) vehicle.Repository {
	return &VehicleRepository{collection: db.Collection(CollectionVehicles)}
}

func (r *VehicleRepository) GetAll(ctx context.Context) ([]vehicle.Vehicle, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID.String()},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var out []vehicle.Vehicle
	for cursor.Next(ctx) {
		var doc vehicleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode vehicle: %w", err)
		}
		out = append(out, toDomainVehicle(doc))
	}
	return out, cursor.Err()
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	var doc vehicleDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	return toDomainVehicle(doc), nil
}

func (r *VehicleRepository) GetByLegacyID(ctx context.Context, legacyID string) (vehicle.Vehicle, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	var doc vehicleDoc
	err = r.collection.FindOne(ctx, bson.M{"legacyId": legacyID, "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	return toDomainVehicle(doc), nil
}

func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}

func (r *VehicleRepository) Create(ctx context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	if v.TenantID() != tenantID {
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	doc := toVehicleDoc(v, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return vehicle.Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
	}
	return toDomainVehicle(doc), nil
}

func (r *VehicleRepository) Update(ctx context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	doc := toVehicleDoc(v, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		return vehicle.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	if res.MatchedCount == 0 {
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	return toDomainVehicle(doc), nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if res.DeletedCount == 0 {
		return vehicle.ErrNotFound
	}
	return nil
}
