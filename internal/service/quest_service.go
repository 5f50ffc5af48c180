package service

import (
	"context"
	"fmt"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestService advances time-boxed quests from completed sessions and
// owns the active → completed / expired transitions.
type QuestService interface {
	// AdvanceFromSession adds the session's contribution to every active
	// quest whose metric matches. Progress clamps at the target; reaching
	// it completes the quest and pays out its XP reward.
	AdvanceFromSession(ctx context.Context, userID primitive.ObjectID, s domain.SessionSummary) ([]domain.Quest, []domain.NotificationRequest, error)

	// ListQuests returns all quests of a user, expiring overdue ones
	// first so callers never see a stale active state.
	ListQuests(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error)

	// ExpireOverdue transitions every overdue active quest to expired.
	ExpireOverdue(ctx context.Context) (int64, error)
}

type questService struct {
	questRepo       repository.QuestRepository
	progressionRepo repository.ProgressionRepository
	now             func() time.Time
}

// NewQuestService creates a new instance of questService. A nil clock
// falls back to time.Now.
func NewQuestService(questRepo repository.QuestRepository, progressionRepo repository.ProgressionRepository, now func() time.Time) QuestService {
	if now == nil {
		now = time.Now
	}
	return &questService{
		questRepo:       questRepo,
		progressionRepo: progressionRepo,
		now:             now,
	}
}

func (s *questService) AdvanceFromSession(ctx context.Context, userID primitive.ObjectID, summary domain.SessionSummary) ([]domain.Quest, []domain.NotificationRequest, error) {
	quests, err := s.questRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	var completed []domain.Quest
	var requests []domain.NotificationRequest

	for i := range quests {
		quest := &quests[i]

		// A quest whose window closed before this session never
		// completes off it; it expires instead.
		if quest.ExpireIfDue(now) {
			if err := s.questRepo.Update(ctx, quest); err != nil {
				return completed, requests, err
			}
			continue
		}

		delta := quest.ContributionFrom(summary)
		if delta <= 0 {
			continue
		}

		finished := quest.ApplyProgress(delta, now)
		if err := s.questRepo.Update(ctx, quest); err != nil {
			return completed, requests, err
		}
		if !finished {
			continue
		}

		if quest.Rewards.XP > 0 {
			if _, err := s.progressionRepo.AddXP(ctx, userID, quest.Rewards.XP); err != nil {
				return completed, requests, err
			}
		}

		completed = append(completed, *quest)
		requests = append(requests, domain.NotificationRequest{
			Type:     domain.NotificationQuestCompleted,
			Title:    "Quest completed!",
			Message:  fmt.Sprintf("%s. +%d XP!", quest.Title, quest.Rewards.XP),
			Priority: domain.PriorityMedium,
			Data: map[string]interface{}{
				"questId":  quest.ID.Hex(),
				"xpReward": quest.Rewards.XP,
			},
		})
	}

	return completed, requests, nil
}

func (s *questService) ListQuests(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error) {
	if _, err := s.questRepo.ExpireOverdue(ctx, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.questRepo.ListByUserID(ctx, userID)
}

func (s *questService) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.questRepo.ExpireOverdue(ctx, s.now().UTC())
}
