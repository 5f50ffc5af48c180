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

const milestoneCollectionName = "milestones"

// mongoMilestoneRepository implements repository.MilestoneRepository.
// The unique (userId, type, value) index turns the check-then-create
// duplicate guard into one atomic insert: a losing concurrent insert
// surfaces as a duplicate-key error and is reported as "already exists".
type mongoMilestoneRepository struct {
	collection *mongo.Collection
}

// NewMongoMilestoneRepository creates a new instance backed by the
// milestones collection.
func NewMongoMilestoneRepository(db *mongo.Database) repository.MilestoneRepository {
	return &mongoMilestoneRepository{
		collection: db.Collection(milestoneCollectionName),
	}
}

func (r *mongoMilestoneRepository) InsertIfAbsent(ctx context.Context, m *domain.Milestone) (bool, error) {
	m.ID = primitive.NewObjectID()
	if m.AchievedAt.IsZero() {
		m.AchievedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *mongoMilestoneRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Milestone, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().SetSort(bson.D{{Key: "achievedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	milestones := []domain.Milestone{}
	if err = cursor.All(ctx, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

// EnsureMilestoneIndexes creates the uniqueness constraint the
// insert-if-absent guard relies on. Call once during application startup.
func EnsureMilestoneIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "type", Value: 1},
				{Key: "value", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
