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

const goalCollectionName = "goals"

// mongoGoalRepository implements repository.GoalRepository.
type mongoGoalRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalRepository creates a new instance backed by the goals
// collection.
func NewMongoGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &mongoGoalRepository{
		collection: db.Collection(goalCollectionName),
	}
}

func (r *mongoGoalRepository) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	goal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	if goal.Status == "" {
		goal.Status = domain.GoalStatusActive
	}
	if goal.LinkedSessions == nil {
		goal.LinkedSessions = []string{}
	}

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoGoalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	var goal domain.Goal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *mongoGoalRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	var goal domain.Goal
	filter := bson.M{"userId": userID, "status": domain.GoalStatusActive}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// LinkSession adds the session id to linkedSessions, guarded by a $ne
// filter so the whole duplicate check is one atomic operation. The
// filter must carry the guard: a bare $addToSet next to a $set of
// updatedAt would report the document as modified even for a duplicate.
func (r *mongoGoalRepository) LinkSession(ctx context.Context, goalID primitive.ObjectID, sessionID string) (bool, error) {
	filter, update := linkSessionMutation(goalID, sessionID, time.Now().UTC())

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	// No match means the session was already linked, or the goal does not
	// exist; callers tell the two apart with the follow-up GetByID.
	return result.ModifiedCount > 0, nil
}

// linkSessionMutation builds the guarded link update: the filter only
// matches a goal that does not yet carry the session id.
func linkSessionMutation(goalID primitive.ObjectID, sessionID string, now time.Time) (filter, update bson.M) {
	filter = bson.M{
		"_id":            goalID,
		"linkedSessions": bson.M{"$ne": sessionID},
	}
	update = bson.M{
		"$addToSet": bson.M{"linkedSessions": sessionID},
		"$set":      bson.M{"updatedAt": now},
	}
	return filter, update
}

func (r *mongoGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	goal.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": goal.ID}, goal)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureGoalIndexes creates indexes for the goals collection. Call once
// during application startup.
func EnsureGoalIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
