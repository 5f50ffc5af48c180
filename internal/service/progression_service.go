package service

import (
	"context"
	"fmt"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// XPAward is the outcome of crediting one session's XP.
type XPAward struct {
	XPEarned  int         `json:"xpEarned"`
	TotalXP   int         `json:"totalXP"`
	LeveledUp bool        `json:"leveledUp"`
	NewLevel  int         `json:"newLevel"`
	Rank      domain.Rank `json:"rank"`
}

// ProgressionService computes XP from session metrics and derives
// level and rank from the cumulative total.
type ProgressionService interface {
	// AwardXP credits the session's XP to the user and reports whether a
	// level boundary was crossed. A level-up yields one notification
	// request.
	AwardXP(ctx context.Context, userID primitive.ObjectID, s domain.SessionSummary) (*XPAward, []domain.NotificationRequest, error)
}

type progressionService struct {
	progressionRepo repository.ProgressionRepository
}

// NewProgressionService creates a new instance of progressionService.
func NewProgressionService(progressionRepo repository.ProgressionRepository) ProgressionService {
	return &progressionService{progressionRepo: progressionRepo}
}

func (s *progressionService) AwardXP(ctx context.Context, userID primitive.ObjectID, summary domain.SessionSummary) (*XPAward, []domain.NotificationRequest, error) {
	earned := domain.CalculateSessionXP(summary)

	// The atomic increment returns the post-award document, so the
	// before/after levels can be derived without a second read even when
	// completions for the same user interleave.
	prog, err := s.progressionRepo.AddXP(ctx, userID, earned)
	if err != nil {
		return nil, nil, err
	}

	prevLevel := domain.LevelForXP(prog.XP - earned)
	newLevel := domain.LevelForXP(prog.XP)

	award := &XPAward{
		XPEarned:  earned,
		TotalXP:   prog.XP,
		LeveledUp: newLevel > prevLevel,
		NewLevel:  newLevel,
		Rank:      domain.RankForLevel(newLevel),
	}

	var requests []domain.NotificationRequest
	if award.LeveledUp {
		requests = append(requests, domain.NotificationRequest{
			Type:     domain.NotificationLevelUp,
			Title:    "Level up!",
			Message:  fmt.Sprintf("You reached level %d. Rank: %s.", newLevel, award.Rank),
			Priority: domain.PriorityMedium,
			Data: map[string]interface{}{
				"level": newLevel,
				"rank":  string(award.Rank),
			},
		})
	}

	return award, requests, nil
}
