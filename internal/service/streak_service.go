package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// streakMilestones are the streak lengths that earn a notification when
// reached on an increase.
var streakMilestones = map[int]bool{7: true, 14: true, 30: true, 60: true, 100: true}

// StreakUpdate is the outcome of folding one activity date into the
// streak.
type StreakUpdate struct {
	Streak    int  `json:"streak"`
	Increased bool `json:"increased"`
	Broken    bool `json:"broken"`
}

// StreakService maintains the consecutive-day activity streak.
type StreakService interface {
	// UpdateStreak applies the day-granularity streak rules for one
	// activity date. The last activity date is always advanced, even
	// when the streak value does not change.
	UpdateStreak(ctx context.Context, userID primitive.ObjectID, activityDate time.Time) (*StreakUpdate, []domain.NotificationRequest, error)
}

type streakService struct {
	progressionRepo repository.ProgressionRepository
}

// NewStreakService creates a new instance of streakService.
func NewStreakService(progressionRepo repository.ProgressionRepository) StreakService {
	return &streakService{progressionRepo: progressionRepo}
}

func (s *streakService) UpdateStreak(ctx context.Context, userID primitive.ObjectID, activityDate time.Time) (*StreakUpdate, []domain.NotificationRequest, error) {
	prog, err := s.progressionRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	update := &StreakUpdate{}
	day := truncateToDay(activityDate)

	switch {
	case prog == nil || prog.LastActivityDate == nil:
		update.Streak = 1
		update.Increased = true
	default:
		gap := daysBetween(truncateToDay(*prog.LastActivityDate), day)
		switch {
		case gap <= 0:
			// Same calendar day (or an out-of-order replay): no change.
			update.Streak = prog.Streak
		case gap == 1:
			update.Streak = prog.Streak + 1
			update.Increased = true
		default:
			update.Streak = 1
			update.Broken = true
		}
	}

	if err := s.progressionRepo.SetStreak(ctx, userID, update.Streak, day); err != nil {
		return nil, nil, err
	}

	var requests []domain.NotificationRequest
	if update.Increased && streakMilestones[update.Streak] {
		requests = append(requests, domain.NotificationRequest{
			Type:     domain.NotificationStreakMilestone,
			Title:    "Streak milestone!",
			Message:  fmt.Sprintf("%d days in a row. Keep it rolling!", update.Streak),
			Priority: domain.PriorityMedium,
			Data:     map[string]interface{}{"streak": update.Streak},
		})
	}

	return update, requests, nil
}

// truncateToDay strips the time of day, normalizing to UTC midnight.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b, both at midnight.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
