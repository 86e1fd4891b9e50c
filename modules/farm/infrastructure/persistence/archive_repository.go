package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/entities/archive"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type BlockArchiveRepository struct {
	collection *mongo.Collection
}

func NewBlockArchiveRepository(db *mongo.Database) archive.BlockArchiveRepository {
	return &BlockArchiveRepository{collection: db.Collection(CollectionBlockArchives)}
}

func (r *BlockArchiveRepository) GetByBlockID(ctx context.Context, blockID uuid.UUID) ([]archive.BlockArchive, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"tenantId": tenantID.String(),
		"$or": bson.A{
			bson.M{"virtualBlockId": blockID.String()},
			bson.M{"physicalBlockId": blockID.String()},
		},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find block archives: %w", err)
	}
	defer cursor.Close(ctx)

	var out []archive.BlockArchive
	for cursor.Next(ctx) {
		var doc blockArchiveDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode block archive: %w", err)
		}
		out = append(out, toDomainBlockArchive(doc))
	}
	return out, cursor.Err()
}

func (r *BlockArchiveRepository) Create(ctx context.Context, a archive.BlockArchive) (archive.BlockArchive, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return archive.BlockArchive{}, err
	}
	if a.TenantID != tenantID {
		return archive.BlockArchive{}, archive.ErrNotFound
	}
	doc := toBlockArchiveDoc(a, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return archive.BlockArchive{}, archive.ErrDuplicate
		}
		return archive.BlockArchive{}, fmt.Errorf("insert block archive: %w", err)
	}
	return toDomainBlockArchive(doc), nil
}

func (r *BlockArchiveRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}

type HarvestRepository struct {
	collection *mongo.Collection
}

func NewHarvestRepository(db *mongo.Database) archive.HarvestRepository {
	return &HarvestRepository{collection: db.Collection(CollectionBlockHarvests)}
}

func (r *HarvestRepository) GetByBlockID(ctx context.Context, blockID uuid.UUID) ([]archive.Harvest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"tenantId": tenantID.String(),
		"$or": bson.A{
			bson.M{"virtualBlockId": blockID.String()},
			bson.M{"physicalBlockId": blockID.String()},
		},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "harvestedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find harvests: %w", err)
	}
	defer cursor.Close(ctx)

	var out []archive.Harvest
	for cursor.Next(ctx) {
		var doc harvestDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode harvest: %w", err)
		}
		out = append(out, toDomainHarvest(doc))
	}
	return out, cursor.Err()
}

func (r *HarvestRepository) Create(ctx context.Context, h archive.Harvest) (archive.Harvest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return archive.Harvest{}, err
	}
	if h.TenantID != tenantID {
		return archive.Harvest{}, archive.ErrNotFound
	}
	doc := toHarvestDoc(h, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return archive.Harvest{}, archive.ErrDuplicate
		}
		return archive.Harvest{}, fmt.Errorf("insert harvest: %w", err)
	}
	return toDomainHarvest(doc), nil
}

func (r *HarvestRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}

type CropPriceRepository struct {
	collection *mongo.Collection
}

func NewCropPriceRepository(db *mongo.Database) archive.CropPriceRepository {
	return &CropPriceRepository{collection: db.Collection(CollectionCropPrices)}
}

func (r *CropPriceRepository) GetByCrop(ctx context.Context, crop string) ([]archive.CropPrice, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"tenantId": tenantID.String(), "crop": crop}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "effectiveAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find crop prices: %w", err)
	}
	defer cursor.Close(ctx)

	var out []archive.CropPrice
	for cursor.Next(ctx) {
		var doc cropPriceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode crop price: %w", err)
		}
		out = append(out, toDomainCropPrice(doc))
	}
	return out, cursor.Err()
}

func (r *CropPriceRepository) Create(ctx context.Context, p archive.CropPrice) (archive.CropPrice, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return archive.CropPrice{}, err
	}
	if p.TenantID != tenantID {
		return archive.CropPrice{}, archive.ErrNotFound
	}
	doc := toCropPriceDoc(p, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return archive.CropPrice{}, archive.ErrDuplicate
		}
		return archive.CropPrice{}, fmt.Errorf("insert crop price: %w", err)
	}
	return toDomainCropPrice(doc), nil
}

func (r *CropPriceRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID.String()})
}
