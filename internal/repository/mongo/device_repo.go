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

const deviceCollectionName = "devices"

// mongoDeviceRepository implements repository.DeviceRepository.
type mongoDeviceRepository struct {
	collection *mongo.Collection
}

// NewMongoDeviceRepository creates a new instance backed by the devices
// collection.
func NewMongoDeviceRepository(db *mongo.Database) repository.DeviceRepository {
	return &mongoDeviceRepository{
		collection: db.Collection(deviceCollectionName),
	}
}

// Upsert registers or refreshes a device endpoint keyed by
// (userId, tokenHash). Re-registering the same token updates the ARN.
func (r *mongoDeviceRepository) Upsert(ctx context.Context, d *domain.Device) error {
	now := time.Now().UTC()
	filter := bson.M{"userId": d.UserID, "tokenHash": d.TokenHash}
	update := bson.M{
		"$set": bson.M{
			"platform":    d.Platform,
			"endpointArn": d.EndpointARN,
			"enabled":     d.Enabled,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *mongoDeviceRepository) ListEnabledByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Device, error) {
	filter := bson.M{"userId": userID, "enabled": true}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	devices := []domain.Device{}
	if err = cursor.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// EnsureDeviceIndexes creates the uniqueness constraint for device
// registrations. Call once during application startup.
func EnsureDeviceIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "tokenHash", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
