package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Badge is a one-time per-session-performance achievement, unique per
// (userId, name). Subsequent qualifying sessions do not re-award it.
type Badge struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID     `bson:"userId" json:"userId"`
	Name        string                 `bson:"name" json:"name"`
	Type        string                 `bson:"type" json:"type"`
	Description string                 `bson:"description" json:"description"`
	AwardedAt   time.Time              `bson:"awardedAt" json:"awardedAt"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Notified    bool                   `bson:"notified" json:"notified"`
}

// BadgeCriterion keys a badge on a single numeric field of the session.
// Thresholds are inclusive.
type BadgeCriterion struct {
	Name        string
	Type        string
	Description string
	Threshold   float64
	Metric      func(SessionSummary) float64
}

// Met reports whether the session satisfies the criterion.
func (c BadgeCriterion) Met(s SessionSummary) bool {
	return c.Metric(s) >= c.Threshold
}

// BadgeCriteria is the fixed per-session award table.
var BadgeCriteria = []BadgeCriterion{
	{
		Name:        "Speed Demon",
		Type:        "speed",
		Description: "Average 30 km/h or faster over a full ride",
		Threshold:   30,
		Metric:      func(s SessionSummary) float64 { return s.AvgSpeed },
	},
	{
		Name:        "Endurance King",
		Type:        "distance",
		Description: "Ride 50 km or more in a single session",
		Threshold:   50,
		Metric:      func(s SessionSummary) float64 { return s.TotalDistance },
	},
	{
		Name:        "Power House",
		Type:        "power",
		Description: "Hold an average of 250 W or more",
		Threshold:   250,
		Metric:      func(s SessionSummary) float64 { return s.AvgPower },
	},
	{
		Name:        "Calorie Crusher",
		Type:        "calories",
		Description: "Burn 1000 kcal or more in one ride",
		Threshold:   1000,
		Metric:      func(s SessionSummary) float64 { return s.TotalCalories },
	},
}
