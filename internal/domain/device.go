package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device is a registered push endpoint for the deferred channel, unique
// per (userId, tokenHash).
type Device struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Platform    string             `bson:"platform" json:"platform"` // "android" | "ios"
	TokenHash   string             `bson:"tokenHash" json:"-"`
	EndpointARN string             `bson:"endpointArn" json:"-"`
	Enabled     bool               `bson:"enabled" json:"enabled"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
