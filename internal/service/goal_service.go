package service

import (
	"context"
	"fmt"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalProgressSummary is the read model for one goal's progress view.
type GoalProgressSummary struct {
	Goal           *domain.Goal          `json:"goal"`
	Progress       domain.ProgressData   `json:"progress"`
	WeeklyProgress []domain.WeeklyBucket `json:"weeklyProgress"`
	WeightHistory  []domain.WeightEntry  `json:"weightHistory"`
	RecentSessions []string              `json:"recentSessions"`
	Statistics     GoalStatistics        `json:"statistics"`
}

// GoalStatistics are per-workout averages derived from the cumulative
// progress record.
type GoalStatistics struct {
	AvgDistancePerWorkout float64 `json:"avgDistancePerWorkout"`
	AvgCaloriesPerWorkout float64 `json:"avgCaloriesPerWorkout"`
	WorkoutsPerWeek       float64 `json:"workoutsPerWeek"`
}

// GoalService links sessions to goals and maintains cumulative, weekly
// and completion-percentage progress.
type GoalService interface {
	// UpdateGoalFromSession folds one session into the goal. A session
	// already linked to the goal contributes nothing (exactly-once
	// accounting). Crossing a completion milestone yields a notification
	// request per threshold crossed.
	UpdateGoalFromSession(ctx context.Context, goalID primitive.ObjectID, s domain.SessionSummary) (*domain.Goal, []domain.NotificationRequest, error)

	// GetGoalProgressSummary assembles the progress read model.
	GetGoalProgressSummary(ctx context.Context, goalID primitive.ObjectID) (*GoalProgressSummary, error)
}

type goalService struct {
	goalRepo repository.GoalRepository
	now      func() time.Time
}

// NewGoalService creates a new instance of goalService. A nil clock falls
// back to time.Now.
func NewGoalService(goalRepo repository.GoalRepository, now func() time.Time) GoalService {
	if now == nil {
		now = time.Now
	}
	return &goalService{goalRepo: goalRepo, now: now}
}

func (s *goalService) UpdateGoalFromSession(ctx context.Context, goalID primitive.ObjectID, summary domain.SessionSummary) (*domain.Goal, []domain.NotificationRequest, error) {
	// Linking first makes the duplicate-session guard atomic: whichever
	// submission wins the $addToSet gets to count the session.
	linked, err := s.goalRepo.LinkSession(ctx, goalID, summary.SessionID)
	if err != nil {
		return nil, nil, err
	}

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, nil, err
	}
	if !linked {
		// Already counted; nothing to recompute, nothing to notify.
		return goal, nil, nil
	}

	now := s.now().UTC()
	before := goal.Progress.CompletionPercentage

	goal.Progress.TotalDistance += summary.TotalDistance
	goal.Progress.TotalCalories += summary.TotalCalories
	goal.Progress.TotalWorkouts++

	goal.UpsertWeeklyBucket(summary)
	goal.ApplyWeightEstimate(summary.TotalCalories, now)

	goal.Progress.CompletionPercentage = goal.RecomputeCompletion(now)
	goal.Progress.LastUpdated = now

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, nil, err
	}

	return goal, completionCrossings(goal, before, goal.Progress.CompletionPercentage), nil
}

// completionCrossings emits one goal_progress request per milestone
// threshold newly crossed in this update. 100% is high priority, the
// rest medium.
func completionCrossings(goal *domain.Goal, before, after float64) []domain.NotificationRequest {
	var requests []domain.NotificationRequest
	for _, threshold := range domain.GoalCompletionMilestones {
		if before >= threshold || after < threshold {
			continue
		}

		priority := domain.PriorityMedium
		title := "Goal progress"
		message := fmt.Sprintf("Your %s goal is %d%% complete.", goal.Type, int(threshold))
		if threshold == 100 {
			priority = domain.PriorityHigh
			title = "Goal complete!"
			message = fmt.Sprintf("You completed your %s goal. Time to set the next one.", goal.Type)
		}

		requests = append(requests, domain.NotificationRequest{
			Type:     domain.NotificationGoalProgress,
			Title:    title,
			Message:  message,
			Priority: priority,
			Data: map[string]interface{}{
				"goalId":    goal.ID.Hex(),
				"threshold": threshold,
				"progress":  after,
			},
		})
	}
	return requests
}

func (s *goalService) GetGoalProgressSummary(ctx context.Context, goalID primitive.ObjectID) (*GoalProgressSummary, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	const recentLimit = 10
	recent := goal.LinkedSessions
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}

	stats := GoalStatistics{}
	if goal.Progress.TotalWorkouts > 0 {
		workouts := float64(goal.Progress.TotalWorkouts)
		stats.AvgDistancePerWorkout = goal.Progress.TotalDistance / workouts
		stats.AvgCaloriesPerWorkout = goal.Progress.TotalCalories / workouts
	}
	if weeks := s.now().UTC().Sub(goal.StartDate).Hours() / (24 * 7); weeks >= 1 {
		stats.WorkoutsPerWeek = float64(goal.Progress.TotalWorkouts) / weeks
	} else {
		stats.WorkoutsPerWeek = float64(goal.Progress.TotalWorkouts)
	}

	return &GoalProgressSummary{
		Goal:           goal,
		Progress:       goal.Progress,
		WeeklyProgress: goal.WeeklyProgress,
		WeightHistory:  goal.WeightHistory,
		RecentSessions: recent,
		Statistics:     stats,
	}, nil
}
