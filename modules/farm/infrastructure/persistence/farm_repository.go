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

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type FarmRepository struct {
	collection *mongo.Collection
}

func NewFarmRepository(db *mongo.Database) farm.Repository {
	return &FarmRepository{collection: db.Collection(CollectionFarms)}
}

func (r *FarmRepository) GetPaginated(ctx context.Context, params *farm.FindParams) ([]farm.Farm, int64, error) {
	if params == nil {
		params = &farm.FindParams{}
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
		return nil, 0, fmt.Errorf("count farms: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find farms: %w", err)
	}
	defer cursor.Close(ctx)

	var out []farm.Farm
	for cursor.Next(ctx) {
		var doc farmDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode farm: %w", err)
		}
		out = append(out, toDomainFarm(doc))
	}
	return out, total, cursor.Err()
}

func (r *FarmRepository) GetByID(ctx context.Context, id uuid.UUID) (farm.Farm, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return farm.Farm{}, err
	}
	var doc farmDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return farm.Farm{}, farm.ErrNotFound
	}
	if err != nil {
		return farm.Farm{}, err
	}
	return toDomainFarm(doc), nil
}

func (r *FarmRepository) GetByLegacyID(ctx context.Context, legacyID string) (farm.Farm, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return farm.Farm{}, err
	}
	var doc farmDoc
	err = r.collection.FindOne(ctx, bson.M{"legacyId": legacyID, "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return farm.Farm{}, farm.ErrNotFound
	}
	if err != nil {
		return farm.Farm{}, err
	}
	return toDomainFarm(doc), nil
}

func (r *FarmRepository) GetAll(ctx context.Context) ([]farm.Farm, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID.String()},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find farms: %w", err)
	}
	defer cursor.Close(ctx)

	var out []farm.Farm
	for cursor.Next(ctx) {
		var doc farmDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode farm: %w", err)
		}
		out = append(out, toDomainFarm(doc))
	}
	return out, cursor.Err()
}

func (r *FarmRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}

func (r *FarmRepository) Create(ctx context.Context, f farm.Farm) (farm.Farm, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return farm.Farm{}, err
	}
	if f.TenantID() != tenantID {
		return farm.Farm{}, farm.ErrNotFound
	}
	doc := toFarmDoc(f, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return farm.Farm{}, farm.ErrCodeTaken
		}
		return farm.Farm{}, fmt.Errorf("insert farm: %w", err)
	}
	return toDomainFarm(doc), nil
}

func (r *FarmRepository) Update(ctx context.Context, f farm.Farm) (farm.Farm, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return farm.Farm{}, err
	}
	doc := toFarmDoc(f, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return farm.Farm{}, farm.ErrCodeTaken
		}
		return farm.Farm{}, fmt.Errorf("update farm: %w", err)
	}
	if res.MatchedCount == 0 {
		return farm.Farm{}, farm.ErrNotFound
	}
	return toDomainFarm(doc), nil
}

func (r *FarmRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete farm: %w", err)
	}
	if res.DeletedCount == 0 {
		return farm.ErrNotFound
	}
	return nil
}
