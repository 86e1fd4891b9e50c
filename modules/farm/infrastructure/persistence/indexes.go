package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// legacyIDIndex builds the per-tenant unique identity index for documents
// carried over from the legacy system. It is partial so that documents
// created through the API, which have no legacy id at all, stay out of it.
func legacyIDIndex(field string, extra ...string) mongo.IndexModel {
	keys := bson.D{{Key: "tenantId", Value: 1}}
	for _, k := range extra {
		keys = append(keys, bson.E{Key: k, Value: 1})
	}
	keys = append(keys, bson.E{Key: field, Value: 1})
	return mongo.IndexModel{
		Keys: keys,
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
	}
}

// EnsureIndexes creates the farm collection indexes. Safe to run repeatedly.
// The unique code and legacy id indexes are what make repeated migration
// runs idempotent at the storage level, even when the import ledger is gone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(CollectionFarms).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		legacyIDIndex("legacyId"),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(CollectionBlocks).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "blockCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// A planting cycle shares its parent's legacy code, so uniqueness
		// only holds within a category.
		legacyIDIndex("legacyBlockCode", "category"),
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "farmId", Value: 1}, {Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "parentBlockId", Value: 1}},
		},
	}); err != nil {
		return err
	}

	for _, name := range []string{CollectionCustomers, CollectionVehicles, CollectionPlantData} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			legacyIDIndex("legacyId"),
		}); err != nil {
			return err
		}
	}

	if _, err := db.Collection(CollectionOrders).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "customerId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}); err != nil {
		return err
	}

	if _, err := db.Collection(CollectionBlockArchives).Indexes().CreateMany(ctx, []mongo.IndexModel{
		legacyIDIndex("legacyId"),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(CollectionBlockHarvests).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "virtualBlockId", Value: 1}, {Key: "harvestedAt", Value: -1}},
		},
		legacyIDIndex("legacyId"),
	}); err != nil {
		return err
	}

	_, err := db.Collection(CollectionCropPrices).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "crop", Value: 1}, {Key: "effectiveAt", Value: -1}},
		},
		legacyIDIndex("legacyId"),
	})
	return err
}
