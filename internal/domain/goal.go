package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalType determines which completion formula applies.
type GoalType string

const (
	GoalTypeWeightLoss  GoalType = "weight_loss"
	GoalTypeMuscleGain  GoalType = "muscle_gain"
	GoalTypeMaintenance GoalType = "maintenance"
	GoalTypeEndurance   GoalType = "endurance"
	GoalTypeGeneral     GoalType = "general_fitness"
)

// TracksWeight reports whether this goal type maintains a weight estimate.
func (t GoalType) TracksWeight() bool {
	return t == GoalTypeWeightLoss || t == GoalTypeMuscleGain
}

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// GoalCompletionMilestones are the completion percentages that trigger a
// goal_progress notification when crossed upward.
var GoalCompletionMilestones = []float64{25, 50, 75, 100}

// caloriesPerKg is the rough energy equivalent of one kilogram of body
// weight, used to estimate weight change from calories burned.
const caloriesPerKg = 7700.0

// ProgressData is the goal's cumulative contribution record.
type ProgressData struct {
	TotalDistance        float64   `bson:"totalDistance" json:"totalDistance"`
	TotalCalories        float64   `bson:"totalCalories" json:"totalCalories"`
	TotalWorkouts        int       `bson:"totalWorkouts" json:"totalWorkouts"`
	CompletionPercentage float64   `bson:"completionPercentage" json:"completionPercentage"`
	LastUpdated          time.Time `bson:"lastUpdated" json:"lastUpdated"`
}

// WeeklyBucket aggregates the sessions of one goal week. WeekNumber 0 is
// the week containing the goal's start date.
type WeeklyBucket struct {
	WeekNumber int     `bson:"weekNumber" json:"weekNumber"`
	Distance   float64 `bson:"distance" json:"distance"`
	Calories   float64 `bson:"calories" json:"calories"`
	Workouts   int     `bson:"workouts" json:"workouts"`
	AvgSpeed   float64 `bson:"avgSpeed" json:"avgSpeed"`
}

// WeightEntry is one point in the goal's weight history.
type WeightEntry struct {
	Date   time.Time `bson:"date" json:"date"`
	Weight float64   `bson:"weight" json:"weight"`
	Source string    `bson:"source" json:"source"` // "manual" or "estimated"
}

// Goal is a user's longer-term fitness objective.
type Goal struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Type           GoalType           `bson:"goalType" json:"goalType"`
	Status         GoalStatus         `bson:"status" json:"status"`
	StartDate      time.Time          `bson:"startDate" json:"startDate"`
	TargetDate     time.Time          `bson:"targetDate" json:"targetDate"`
	StartWeight    float64            `bson:"startWeight,omitempty" json:"startWeight,omitempty"`
	CurrentWeight  float64            `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"`
	TargetWeight   float64            `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	Progress       ProgressData       `bson:"progressData" json:"progressData"`
	WeeklyProgress []WeeklyBucket     `bson:"weeklyProgress" json:"weeklyProgress"`
	WeightHistory  []WeightEntry      `bson:"weightHistory" json:"weightHistory"`
	LinkedSessions []string           `bson:"linkedSessions" json:"linkedSessions"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WeekNumberFor returns the zero-based goal week containing t.
func (g *Goal) WeekNumberFor(t time.Time) int {
	if t.Before(g.StartDate) {
		return 0
	}
	return int(t.Sub(g.StartDate).Hours() / (24 * 7))
}

// timeProgress returns elapsed goal time as a percentage, clamped to 100.
func (g *Goal) timeProgress(now time.Time) float64 {
	totalDays := g.TargetDate.Sub(g.StartDate).Hours() / 24
	if totalDays <= 0 {
		return 100
	}
	daysPassed := now.Sub(g.StartDate).Hours() / 24
	return clampPercentage(daysPassed / totalDays * 100)
}

// weightProgress returns how much of the planned weight delta has been
// covered, as a percentage clamped to [0, 100]. A goal with no planned
// delta counts as fully covered on the weight axis.
func (g *Goal) weightProgress() float64 {
	planned := math.Abs(g.TargetWeight - g.StartWeight)
	if planned == 0 {
		return 100
	}
	remaining := math.Abs(g.TargetWeight - g.CurrentWeight)
	return clampPercentage((planned - remaining) / planned * 100)
}

// workoutProgress compares actual workouts against an expected pace of
// roughly one workout per two days, clamped to 100.
func (g *Goal) workoutProgress(now time.Time) float64 {
	daysPassed := now.Sub(g.StartDate).Hours() / 24
	expected := daysPassed / 2
	if expected < 1 {
		expected = 1
	}
	return clampPercentage(float64(g.Progress.TotalWorkouts) / expected * 100)
}

// RecomputeCompletion derives the completion percentage from the goal's
// current state. The result is always within [0, 100]. Recomputation is
// from scratch, so a data correction may legitimately move it backward.
func (g *Goal) RecomputeCompletion(now time.Time) float64 {
	tp := g.timeProgress(now)

	var pct float64
	switch g.Type {
	case GoalTypeWeightLoss, GoalTypeMuscleGain:
		pct = 0.7*g.weightProgress() + 0.3*tp
	case GoalTypeMaintenance:
		pct = 0.6*g.workoutProgress(now) + 0.4*tp
	default:
		pct = tp
	}
	return clampPercentage(pct)
}

// ApplyWeightEstimate converts calories burned into an estimated weight
// change and records it in the history. Only weight-tracking goal types
// maintain the estimate.
func (g *Goal) ApplyWeightEstimate(calories float64, at time.Time) {
	if !g.Type.TracksWeight() || calories <= 0 {
		return
	}
	g.CurrentWeight -= calories / caloriesPerKg
	g.WeightHistory = append(g.WeightHistory, WeightEntry{
		Date:   at,
		Weight: g.CurrentWeight,
		Source: "estimated",
	})
}

// UpsertWeeklyBucket folds one session into the bucket for its goal week,
// creating the bucket if the week has no sessions yet. The bucket keeps a
// running average of session speeds.
func (g *Goal) UpsertWeeklyBucket(s SessionSummary) {
	week := g.WeekNumberFor(s.EndTime)
	for i := range g.WeeklyProgress {
		b := &g.WeeklyProgress[i]
		if b.WeekNumber != week {
			continue
		}
		b.AvgSpeed = (b.AvgSpeed*float64(b.Workouts) + s.AvgSpeed) / float64(b.Workouts+1)
		b.Distance += s.TotalDistance
		b.Calories += s.TotalCalories
		b.Workouts++
		return
	}
	g.WeeklyProgress = append(g.WeeklyProgress, WeeklyBucket{
		WeekNumber: week,
		Distance:   s.TotalDistance,
		Calories:   s.TotalCalories,
		Workouts:   1,
		AvgSpeed:   s.AvgSpeed,
	})
}

func clampPercentage(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
