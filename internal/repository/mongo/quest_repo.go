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

const questCollectionName = "quests"

// mongoQuestRepository implements repository.QuestRepository.
type mongoQuestRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestRepository creates a new instance backed by the quests
// collection.
func NewMongoQuestRepository(db *mongo.Database) repository.QuestRepository {
	return &mongoQuestRepository{
		collection: db.Collection(questCollectionName),
	}
}

func (r *mongoQuestRepository) Create(ctx context.Context, q *domain.Quest) (primitive.ObjectID, error) {
	q.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = domain.QuestStatusActive
	}

	result, err := r.collection.InsertOne(ctx, q)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoQuestRepository) ListActiveByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error) {
	return r.list(ctx, bson.M{"userId": userID, "status": domain.QuestStatusActive})
}

func (r *mongoQuestRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *mongoQuestRepository) list(ctx context.Context, filter bson.M) ([]domain.Quest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quests := []domain.Quest{}
	if err = cursor.All(ctx, &quests); err != nil {
		return nil, err
	}
	return quests, nil
}

func (r *mongoQuestRepository) Update(ctx context.Context, q *domain.Quest) error {
	q.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": q.ID}, q)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExpireOverdue bulk-transitions every active quest whose end date has
// passed. Completed and expired quests are terminal and never match.
func (r *mongoQuestRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":  domain.QuestStatusActive,
		"endDate": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.QuestStatusExpired,
			"updatedAt": now,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureQuestIndexes creates indexes for the quests collection. Call once
// during application startup.
func EnsureQuestIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
