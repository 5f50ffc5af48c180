package service

import (
	"context"
	"fmt"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgeService detects per-session performance criteria and issues
// one-time badge awards.
type BadgeService interface {
	// CheckBadgeProgress evaluates the fixed criteria table against one
	// session. A badge the user already holds is never re-awarded.
	CheckBadgeProgress(ctx context.Context, userID primitive.ObjectID, s domain.SessionSummary) ([]domain.Badge, []domain.NotificationRequest, error)
}

type badgeService struct {
	badgeRepo repository.BadgeRepository
	now       func() time.Time
}

// NewBadgeService creates a new instance of badgeService. A nil clock
// falls back to time.Now.
func NewBadgeService(badgeRepo repository.BadgeRepository, now func() time.Time) BadgeService {
	if now == nil {
		now = time.Now
	}
	return &badgeService{badgeRepo: badgeRepo, now: now}
}

func (s *badgeService) CheckBadgeProgress(ctx context.Context, userID primitive.ObjectID, summary domain.SessionSummary) ([]domain.Badge, []domain.NotificationRequest, error) {
	var awarded []domain.Badge
	var requests []domain.NotificationRequest

	for _, criterion := range domain.BadgeCriteria {
		if !criterion.Met(summary) {
			continue
		}

		badge := &domain.Badge{
			UserID:      userID,
			Name:        criterion.Name,
			Type:        criterion.Type,
			Description: criterion.Description,
			AwardedAt:   s.now().UTC(),
			Metadata: map[string]interface{}{
				"sessionId": summary.SessionID,
				"value":     criterion.Metric(summary),
				"threshold": criterion.Threshold,
			},
		}

		// Unique (userId, name) index makes this a single atomic step.
		created, err := s.badgeRepo.InsertIfAbsent(ctx, badge)
		if err != nil {
			return awarded, requests, err
		}
		if !created {
			continue
		}

		awarded = append(awarded, *badge)
		requests = append(requests, domain.NotificationRequest{
			Type:     domain.NotificationBadgeUnlocked,
			Title:    "Badge unlocked!",
			Message:  fmt.Sprintf("%s: %s", badge.Name, badge.Description),
			Priority: domain.PriorityMedium,
			Data: map[string]interface{}{
				"badge":     badge.Name,
				"sessionId": summary.SessionID,
			},
		})
	}

	return awarded, requests, nil
}
