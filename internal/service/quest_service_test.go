package service

import (
	"context"
	"testing"
	"time"

	"sikadvoltz/progression/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func questFixture(userID primitive.ObjectID, metric domain.QuestMetric, current, target float64, endDate time.Time) *domain.Quest {
	return &domain.Quest{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		Title:    "Ride 100 km this week",
		Metric:   metric,
		Status:   domain.QuestStatusActive,
		Progress: domain.QuestProgress{Current: current, Target: target},
		EndDate:  endDate,
		Rewards:  domain.QuestRewards{XP: 150},
	}
}

func TestAdvanceFromSession_CompletesQuest(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	quest := questFixture(userID, domain.QuestMetricDistance, 90, 100, now.AddDate(0, 0, 3))
	questRepo := newFakeQuestRepo(quest)
	progressionRepo := newFakeProgressionRepo()
	svc := NewQuestService(questRepo, progressionRepo, fixedClock(now))

	session := domain.SessionSummary{SessionID: "s1", TotalDistance: 15, EndTime: now}

	completed, requests, err := svc.AdvanceFromSession(context.Background(), userID, session)
	require.NoError(t, err)

	require.Len(t, completed, 1)
	assert.Equal(t, domain.QuestStatusCompleted, completed[0].Status)
	assert.Equal(t, 100.0, completed[0].Progress.Current, "progress clamps at the target")

	require.Len(t, requests, 1)
	assert.Equal(t, domain.NotificationQuestCompleted, requests[0].Type)

	prog, err := progressionRepo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 150, prog.XP, "completion pays out the quest reward")
}

func TestAdvanceFromSession_PartialProgress(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	quest := questFixture(userID, domain.QuestMetricWorkouts, 1, 5, now.AddDate(0, 0, 3))
	questRepo := newFakeQuestRepo(quest)
	progressionRepo := newFakeProgressionRepo()
	svc := NewQuestService(questRepo, progressionRepo, fixedClock(now))

	session := domain.SessionSummary{SessionID: "s1", EndTime: now}

	completed, requests, err := svc.AdvanceFromSession(context.Background(), userID, session)
	require.NoError(t, err)

	assert.Empty(t, completed)
	assert.Empty(t, requests)
	assert.Equal(t, 2.0, questRepo.quests[quest.ID].Progress.Current)
	_, err = progressionRepo.GetByUserID(context.Background(), userID)
	assert.Error(t, err, "no XP credited before completion")
}

func TestAdvanceFromSession_OverdueQuestExpiresInsteadOfCompleting(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	quest := questFixture(userID, domain.QuestMetricDistance, 95, 100, now.AddDate(0, 0, -1))
	questRepo := newFakeQuestRepo(quest)
	progressionRepo := newFakeProgressionRepo()
	svc := NewQuestService(questRepo, progressionRepo, fixedClock(now))

	session := domain.SessionSummary{SessionID: "s1", TotalDistance: 50, EndTime: now}

	completed, requests, err := svc.AdvanceFromSession(context.Background(), userID, session)
	require.NoError(t, err)

	assert.Empty(t, completed)
	assert.Empty(t, requests)
	assert.Equal(t, domain.QuestStatusExpired, questRepo.quests[quest.ID].Status)
	assert.Equal(t, 95.0, questRepo.quests[quest.ID].Progress.Current)
}

func TestListQuests_ExpiresOverdueFirst(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	overdue := questFixture(userID, domain.QuestMetricDistance, 10, 100, now.AddDate(0, 0, -2))
	current := questFixture(userID, domain.QuestMetricWorkouts, 2, 5, now.AddDate(0, 0, 2))
	questRepo := newFakeQuestRepo(overdue, current)
	svc := NewQuestService(questRepo, newFakeProgressionRepo(), fixedClock(now))

	quests, err := svc.ListQuests(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, quests, 2)

	statuses := map[primitive.ObjectID]domain.QuestStatus{}
	for _, q := range quests {
		statuses[q.ID] = q.Status
	}
	assert.Equal(t, domain.QuestStatusExpired, statuses[overdue.ID])
	assert.Equal(t, domain.QuestStatusActive, statuses[current.ID])
}
