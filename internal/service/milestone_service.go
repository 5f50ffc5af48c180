package service

import (
	"context"
	"fmt"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MilestoneService detects crossings of absolute lifetime thresholds and
// issues one-time awards.
type MilestoneService interface {
	// RecordSession folds the session into the user's lifetime totals,
	// then checks every threshold at or below the new totals. Awarding is
	// idempotent: re-running with the same totals creates nothing new.
	RecordSession(ctx context.Context, userID primitive.ObjectID, s domain.SessionSummary) ([]domain.Milestone, []domain.NotificationRequest, error)

	// CheckMilestones evaluates thresholds against the given cumulative
	// stats without touching the counters.
	CheckMilestones(ctx context.Context, userID primitive.ObjectID, stats domain.LifetimeStats) ([]domain.Milestone, []domain.NotificationRequest, error)
}

type milestoneService struct {
	milestoneRepo   repository.MilestoneRepository
	progressionRepo repository.ProgressionRepository
	now             func() time.Time
}

// NewMilestoneService creates a new instance of milestoneService. A nil
// clock falls back to time.Now.
func NewMilestoneService(milestoneRepo repository.MilestoneRepository, progressionRepo repository.ProgressionRepository, now func() time.Time) MilestoneService {
	if now == nil {
		now = time.Now
	}
	return &milestoneService{
		milestoneRepo:   milestoneRepo,
		progressionRepo: progressionRepo,
		now:             now,
	}
}

func (s *milestoneService) RecordSession(ctx context.Context, userID primitive.ObjectID, summary domain.SessionSummary) ([]domain.Milestone, []domain.NotificationRequest, error) {
	prog, err := s.progressionRepo.AddLifetimeStats(ctx, userID, summary.TotalDistance, summary.TotalCalories)
	if err != nil {
		return nil, nil, err
	}
	return s.CheckMilestones(ctx, userID, prog.Stats)
}

func (s *milestoneService) CheckMilestones(ctx context.Context, userID primitive.ObjectID, stats domain.LifetimeStats) ([]domain.Milestone, []domain.NotificationRequest, error) {
	var created []domain.Milestone
	var requests []domain.NotificationRequest

	for _, mType := range []domain.MilestoneType{domain.MilestoneDistance, domain.MilestoneWorkouts, domain.MilestoneCalories} {
		statValue := mType.StatValue(stats)

		for _, threshold := range domain.MilestoneThresholds[mType] {
			if float64(threshold) > statValue {
				// Thresholds are ascending; nothing further can match.
				break
			}

			milestone := &domain.Milestone{
				UserID:     userID,
				Type:       mType,
				Value:      threshold,
				Unit:       domain.MilestoneUnits[mType],
				AchievedAt: s.now().UTC(),
				XPReward:   domain.MilestoneXPReward(threshold),
			}

			// Insert-if-absent: the unique (userId, type, value) index
			// makes the existence check and the insert one atomic step,
			// so a concurrent completion cannot double-award.
			wasCreated, err := s.milestoneRepo.InsertIfAbsent(ctx, milestone)
			if err != nil {
				return created, requests, err
			}
			if !wasCreated {
				continue
			}

			if milestone.XPReward > 0 {
				if _, err := s.progressionRepo.AddXP(ctx, userID, milestone.XPReward); err != nil {
					return created, requests, err
				}
			}

			created = append(created, *milestone)
			requests = append(requests, domain.NotificationRequest{
				Type:     domain.NotificationMilestone,
				Title:    "Milestone achieved!",
				Message:  fmt.Sprintf("You passed %d %s lifetime. +%d XP!", milestone.Value, milestone.Unit, milestone.XPReward),
				Priority: domain.PriorityMedium,
				Data: map[string]interface{}{
					"milestoneType": string(mType),
					"value":         threshold,
					"xpReward":      milestone.XPReward,
				},
			})
		}
	}

	return created, requests, nil
}
