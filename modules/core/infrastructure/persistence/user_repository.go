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

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/aggregates/user"
	"github.com/fieldstone-hq/fieldstone/pkg/composables"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) user.Repository {
	return &UserRepository{collection: db.Collection(CollectionUsers)}
}

func (r *UserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params == nil {
		params = &user.FindParams{}
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
			bson.M{"email": bson.M{"$regex": params.Q, "$options": "i"}},
			bson.M{"firstName": bson.M{"$regex": params.Q, "$options": "i"}},
			bson.M{"lastName": bson.M{"$regex": params.Q, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var out []user.User
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, toDomainUser(doc))
	}
	return out, total, cursor.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, err
	}
	var doc userDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return toDomainUser(doc), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, err
	}
	var doc userDoc
	err = r.collection.FindOne(ctx, bson.M{"email": email, "tenantId": tenantID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return toDomainUser(doc), nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, err
	}
	if u.TenantID() != tenantID {
		return user.User{}, user.ErrNotFound
	}

	doc := toUserDoc(u, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return toDomainUser(doc), nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, err
	}

	doc := toUserDoc(u, time.Now().UTC())
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "tenantId": tenantID.String()}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return toDomainUser(doc), nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
