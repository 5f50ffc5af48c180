package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rank is a coarse grouping of levels.
type Rank string

const (
	RankNovice       Rank = "Novice"
	RankBeginner     Rank = "Beginner"
	RankIntermediate Rank = "Intermediate"
	RankAdvanced     Rank = "Advanced"
	RankExpert       Rank = "Expert"
	RankChampion     Rank = "Champion"
	RankLegend       Rank = "Legend"
)

// LifetimeStats are the cumulative ride totals milestone checks run against.
type LifetimeStats struct {
	TotalDistance float64 `bson:"totalDistance" json:"totalDistance"` // kilometers
	TotalCalories float64 `bson:"totalCalories" json:"totalCalories"`
	TotalWorkouts int     `bson:"totalWorkouts" json:"totalWorkouts"`
}

// UserProgression is the durable progress document for one user.
// XP, streak and lifetime stats are the stored state; level and rank are
// always derived from XP and never persisted.
type UserProgression struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	XP               int                `bson:"xp" json:"xp"`
	Streak           int                `bson:"streak" json:"streak"`
	LastActivityDate *time.Time         `bson:"lastActivityDate,omitempty" json:"lastActivityDate,omitempty"`
	Stats            LifetimeStats      `bson:"stats" json:"stats"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Level returns the level derived from the stored XP.
func (p *UserProgression) Level() int {
	return LevelForXP(p.XP)
}

// Rank returns the rank tier for the current level.
func (p *UserProgression) Rank() Rank {
	return RankForLevel(p.Level())
}

// LevelForXP derives a level from cumulative XP: floor(sqrt(xp/100)) + 1.
// Monotonic non-decreasing in xp; level 1 at xp 0.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(xp)/100.0)) + 1
}

// XPToNextLevel returns how much XP is still needed to reach the next level.
// Level L+1 begins at 100*L^2 XP.
func XPToNextLevel(xp int) int {
	level := LevelForXP(xp)
	next := 100 * level * level
	return next - xp
}

// RankForLevel maps a level onto the named rank tiers.
func RankForLevel(level int) Rank {
	switch {
	case level >= 50:
		return RankLegend
	case level >= 40:
		return RankChampion
	case level >= 30:
		return RankExpert
	case level >= 20:
		return RankAdvanced
	case level >= 10:
		return RankIntermediate
	case level >= 5:
		return RankBeginner
	default:
		return RankNovice
	}
}

// CalculateSessionXP computes the XP earned by one completed session.
// All terms are additive and the sum is floored to an integer at the end:
// base 50, 10 per km, 1 per minute, 1 per 10 kcal, plus tiered speed and
// power bonuses. The top speed tier starts at the Speed Demon badge
// threshold (30 km/h) so the two surfaces agree on what "fast" means.
func CalculateSessionXP(s SessionSummary) int {
	xp := 50.0
	xp += 10.0 * s.TotalDistance
	xp += s.DurationMinutes()
	xp += s.TotalCalories / 10.0

	switch {
	case s.AvgSpeed > 30:
		xp += 30
	case s.AvgSpeed > 25:
		xp += 20
	case s.AvgSpeed > 20:
		xp += 10
	}

	switch {
	case s.AvgPower > 200:
		xp += 40
	case s.AvgPower > 150:
		xp += 25
	case s.AvgPower > 100:
		xp += 15
	}

	return int(math.Floor(xp))
}
