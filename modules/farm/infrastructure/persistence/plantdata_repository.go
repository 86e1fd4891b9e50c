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

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type PlantDataRepository struct {
	collection *mongo.Collection
}

func NewPlantDataRepository(db *mongo.Database) plantdata.Repository {
	return &PlantDataRepository{collection: db.Collection(CollectionPlantData)}
}

func (r *PlantDataRepository) GetAll(ctx context.Context) ([]plantdata.PlantData, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID.String()},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find plant templates: %w", err)
	}
	defer cursor.Close(ctx)

	var out []plantdata.PlantData
	for cursor.Next(ctx) {
		var doc plantDataDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode plant template: %w", err)
		}
		out = append(out, toDomainPlantData(doc))
	}
	return out, cursor.Err()
}

func (r *PlantDataRepository) GetByID(ctx context.Context, id uuid.UUID) (plantdata.PlantData, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return plantdata.PlantData{}, err
	}
	var doc plantDataDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return plantdata.PlantData{}, plantdata.ErrNotFound
	}
	if err != nil {
		return plantdata.PlantData{}, err
	}
	return toDomainPlantData(doc), nil
}

func (r *PlantDataRepository) GetByLegacyID(ctx context.Context, legacyID string) (plantdata.PlantData, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return plantdata.PlantData{}, err
	}
	var doc plantDataDoc
	err = r.collection.FindOne(ctx, bson.M{"legacyId": legacyID, "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return plantdata.PlantData{}, plantdata.ErrNotFound
	}
	if err != nil {
		return plantdata.PlantData{}, err
	}
	return toDomainPlantData(doc), nil
}

func (r *PlantDataRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}

func (r *PlantDataRepository) Create(ctx context.Context, p plantdata.PlantData) (plantdata.PlantData, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return plantdata.PlantData{}, err
	}
	if p.TenantID() != tenantID {
		return plantdata.PlantData{}, plantdata.ErrNotFound
	}
	doc := toPlantDataDoc(p, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return plantdata.PlantData{}, fmt.Errorf("insert plant template: %w", err)
	}
	return toDomainPlantData(doc), nil
}

func (r *PlantDataRepository) Update(ctx context.Context, p plantdata.PlantData) (plantdata.PlantData, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return plantdata.PlantData{}, err
	}
	doc := toPlantDataDoc(p, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		return plantdata.PlantData{}, fmt.Errorf("update plant template: %w", err)
	}
	if res.MatchedCount == 0 {
		return plantdata.PlantData{}, plantdata.ErrNotFound
	}
	return toDomainPlantData(doc), nil
}

func (r *PlantDataRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete plant template: %w", err)
	}
	if res.DeletedCount == 0 {
		return plantdata.ErrNotFound
	}
	return nil
}
