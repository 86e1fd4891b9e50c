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

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type BlockRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewBlockRepository(client *mongo.Client, db *mongo.Database) block.Repository {
	return &BlockRepository{
		client:     client,
		collection: db.Collection(CollectionBlocks),
	}
}

func (r *BlockRepository) GetPaginated(ctx context.Context, params *block.FindParams) ([]block.Block, int64, error) {
	if params == nil {
		params = &block.FindParams{}
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
	if params.FarmID != uuid.Nil {
		filter["farmId"] = params.FarmID.String()
	}
	if params.Category != "" {
		filter["category"] = string(params.Category)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count blocks: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "blockCode", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find blocks: %w", err)
	}
	defer cursor.Close(ctx)

	out, err := decodeBlocks(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BlockRepository) GetByID(ctx context.Context, id uuid.UUID) (block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return block.Block{}, err
	}
	var doc blockDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return block.Block{}, block.ErrNotFound
	}
	if err != nil {
		return block.Block{}, err
	}
	return toDomainBlock(doc), nil
}

func (r *BlockRepository) GetByLegacyCode(ctx context.Context, legacyCode string) (block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return block.Block{}, err
	}
	var doc blockDoc
	err = r.collection.FindOne(ctx, bson.M{"legacyBlockCode": legacyCode, "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return block.Block{}, block.ErrNotFound
	}
	if err != nil {
		return block.Block{}, err
	}
	return toDomainBlock(doc), nil
}

func (r *BlockRepository) GetPhysical(ctx context.Context) ([]block.Block, error) {
	return r.findByCategory(ctx, block.CategoryPhysical)
}

func (r *BlockRepository) GetVirtual(ctx context.Context) ([]block.Block, error) {
	return r.findByCategory(ctx, block.CategoryVirtual)
}

func (r *BlockRepository) findByCategory(ctx context.Context, category block.Category) ([]block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"tenantId": tenantID.String(), "category": string(category)}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "blockCode", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s blocks: %w", category, err)
	}
	defer cursor.Close(ctx)
	return decodeBlocks(ctx, cursor)
}

func (r *BlockRepository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"tenantId": tenantID.String(), "parentBlockId": parentID.String()}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "blockCode", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find child blocks: %w", err)
	}
	defer cursor.Close(ctx)
	return decodeBlocks(ctx, cursor)
}

func (r *BlockRepository) Create(ctx context.Context, b block.Block) (block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return block.Block{}, err
	}
	if b.TenantID() != tenantID {
		return block.Block{}, block.ErrNotFound
	}
	doc := toBlockDoc(b, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return block.Block{}, block.ErrCodeTaken
		}
		return block.Block{}, fmt.Errorf("insert block: %w", err)
	}
	return toDomainBlock(doc), nil
}

func (r *BlockRepository) Update(ctx context.Context, b block.Block) (block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return block.Block{}, err
	}
	doc := toBlockDoc(b, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return block.Block{}, block.ErrCodeTaken
		}
		return block.Block{}, fmt.Errorf("update block: %w", err)
	}
	if res.MatchedCount == 0 {
		return block.Block{}, block.ErrNotFound
	}
	return toDomainBlock(doc), nil
}

func (r *BlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if res.DeletedCount == 0 {
		return block.ErrNotFound
	}
	return nil
}

// CreatePlanting inserts the virtual child and replaces the parent inside one
// transaction so the child list, cycle counter and available area never drift
// from the inserted cycles.
func (r *BlockRepository) CreatePlanting(ctx context.Context, child block.Block, parent block.Block) (block.Block, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return block.Block{}, err
	}
	if !child.IsVirtual() {
		return block.Block{}, block.ErrNotVirtual
	}
	if !parent.IsPhysical() {
		return block.Block{}, block.ErrNotPhysical
	}

	now := time.Now().UTC()
	childDoc := toBlockDoc(child, now)
	parentDoc := toBlockDoc(parent, now)

	session, err := r.client.StartSession()
	if err != nil {
		return block.Block{}, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.InsertOne(sc, childDoc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, block.ErrCodeTaken
			}
			return nil, fmt.Errorf("insert planting: %w", err)
		}
		res, err := r.collection.ReplaceOne(sc, bson.M{"_id": parentDoc.ID, "tenantId": tenantID.String()}, parentDoc)
		if err != nil {
			return nil, fmt.Errorf("update parent block: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, block.ErrNotFound
		}
		return nil, nil
	})
	if err != nil {
		return block.Block{}, err
	}
	return toDomainBlock(childDoc), nil
}

// ClearPlanting persists a cleared child and the parent's returned area inside
// one transaction.
func (r *BlockRepository) ClearPlanting(ctx context.Context, child block.Block, parent block.Block) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	if !child.IsVirtual() {
		return block.ErrNotVirtual
	}
	if !parent.IsPhysical() {
		return block.ErrNotPhysical
	}

	now := time.Now().UTC()
	childDoc := toBlockDoc(child, now)
	parentDoc := toBlockDoc(parent, now)

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, doc := range []blockDoc{childDoc, parentDoc} {
			res, err := r.collection.ReplaceOne(sc, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
			if err != nil {
				return nil, fmt.Errorf("update block %s: %w", doc.BlockCode, err)
			}
			if res.MatchedCount == 0 {
				return nil, block.ErrNotFound
			}
		}
		return nil, nil
	})
	return err
}

func decodeBlocks(ctx context.Context, cursor *mongo.Cursor) ([]block.Block, error) {
	var out []block.Block
	for cursor.Next(ctx) {
		var doc blockDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode block: %w", err)
		}
		out = append(out, toDomainBlock(doc))
	}
	return out, cursor.Err()
}
