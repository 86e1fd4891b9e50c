package migration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

const CollectionImportLedger = "import_ledger"

// Ledger tracks which source rows have already been imported, giving every
// phase row-level resumability. A row is identified by phase + table +
// legacy id.
type Ledger interface {
	Seen(ctx context.Context, phase, table, legacyID string) (bool, error)
	Record(ctx context.Context, phase, table, legacyID string) error
}

type ledgerDoc struct {
	TenantID   string    `bson:"tenantId"`
	Phase      string    `bson:"phase"`
	Table      string    `bson:"table"`
	LegacyID   string    `bson:"legacyId"`
	ImportedAt time.Time `bson:"importedAt"`
}

type MongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{collection: db.Collection(CollectionImportLedger)}
}

// EnsureLedgerIndexes creates the unique row identity index. Safe to run
// repeatedly.
func EnsureLedgerIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionImportLedger).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "phase", Value: 1},
			{Key: "table", Value: 1},
			{Key: "legacyId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (l *MongoLedger) Seen(ctx context.Context, phase, table, legacyID string) (bool, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}
	n, err := l.collection.CountDocuments(ctx, bson.M{
		"tenantId": tenantID.String(),
		"phase":    phase,
		"table":    table,
		"legacyId": legacyID,
	})
	if err != nil {
		return false, fmt.Errorf("ledger lookup: %w", err)
	}
	return n > 0, nil
}

func (l *MongoLedger) Record(ctx context.Context, phase, table, legacyID string) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	_, err = l.collection.InsertOne(ctx, ledgerDoc{
		TenantID:   tenantID.String(),
		Phase:      phase,
		Table:      table,
		LegacyID:   legacyID,
		ImportedAt: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ledger record: %w", err)
	}
	return nil
}
