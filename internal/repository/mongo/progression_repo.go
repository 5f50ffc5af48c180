package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressionCollectionName = "progressions"

// mongoProgressionRepository implements repository.ProgressionRepository.
// All counter mutations go through findOneAndUpdate with $inc so that
// concurrent session completions for the same user cannot lose updates.
type mongoProgressionRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressionRepository creates a new instance backed by the
// progressions collection.
func NewMongoProgressionRepository(db *mongo.Database) repository.ProgressionRepository {
	return &mongoProgressionRepository{
		collection: db.Collection(progressionCollectionName),
	}
}

func (r *mongoProgressionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProgression, error) {
	var prog domain.UserProgression
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&prog)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &prog, nil
}

// AddXP increments the XP counter atomically, creating the progression
// document on first touch. Returns the post-increment document.
func (r *mongoProgressionRepository) AddXP(ctx context.Context, userID primitive.ObjectID, delta int) (*domain.UserProgression, error) {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$inc":         bson.M{"xp": delta},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var prog domain.UserProgression
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prog); err != nil {
		return nil, err
	}
	return &prog, nil
}

// AddLifetimeStats folds one session into the cumulative totals in a
// single atomic update. Returns the post-increment document.
func (r *mongoProgressionRepository) AddLifetimeStats(ctx context.Context, userID primitive.ObjectID, distance, calories float64) (*domain.UserProgression, error) {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$inc": bson.M{
			"stats.totalDistance": distance,
			"stats.totalCalories": calories,
			"stats.totalWorkouts": 1,
		},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var prog domain.UserProgression
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prog); err != nil {
		return nil, err
	}
	return &prog, nil
}

func (r *mongoProgressionRepository) SetStreak(ctx context.Context, userID primitive.ObjectID, streak int, lastActivity time.Time) error {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$set": bson.M{
			"streak":           streak,
			"lastActivityDate": lastActivity,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// EnsureProgressionIndexes creates the unique per-user index. Call once
// during application startup.
func EnsureProgressionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
