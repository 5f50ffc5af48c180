package mongo

import (
	"context"
	"log"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const badgeCollectionName = "badges"

// mongoBadgeRepository implements repository.BadgeRepository. Uniqueness
// per (userId, name) is enforced by index, same pattern as milestones.
type mongoBadgeRepository struct {
	collection *mongo.Collection
}

// NewMongoBadgeRepository creates a new instance backed by the badges
// collection.
func NewMongoBadgeRepository(db *mongo.Database) repository.BadgeRepository {
	return &mongoBadgeRepository{
		collection: db.Collection(badgeCollectionName),
	}
}

func (r *mongoBadgeRepository) InsertIfAbsent(ctx context.Context, b *domain.Badge) (bool, error) {
	b.ID = primitive.NewObjectID()
	if b.AwardedAt.IsZero() {
		b.AwardedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *mongoBadgeRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Badge, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().SetSort(bson.D{{Key: "awardedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	badges := []domain.Badge{}
	if err = cursor.All(ctx, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

// EnsureBadgeIndexes creates the uniqueness constraint for badge awards.
// Call once during application startup.
func EnsureBadgeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
