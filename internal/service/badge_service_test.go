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

func TestCheckBadgeProgress_SpeedBoundaryIsInclusive(t *testing.T) {
	repo := newFakeBadgeRepo()
	svc := NewBadgeService(repo, fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))
	userID := primitive.NewObjectID()

	session := domain.SessionSummary{
		SessionID: "s1",
		AvgSpeed:  30.0,
		EndTime:   time.Now(),
	}

	awarded, requests, err := svc.CheckBadgeProgress(context.Background(), userID, session)
	require.NoError(t, err)

	require.Len(t, awarded, 1)
	assert.Equal(t, "Speed Demon", awarded[0].Name)
	assert.Equal(t, "s1", awarded[0].Metadata["sessionId"])

	require.Len(t, requests, 1)
	assert.Equal(t, domain.NotificationBadgeUnlocked, requests[0].Type)
	assert.Equal(t, "Speed Demon: Average 30 km/h or faster over a full ride", requests[0].Message)
}

func TestCheckBadgeProgress_BelowThresholdAwardsNothing(t *testing.T) {
	repo := newFakeBadgeRepo()
	svc := NewBadgeService(repo, nil)
	userID := primitive.NewObjectID()

	session := domain.SessionSummary{
		SessionID: "s1",
		AvgSpeed:  29.9,
		AvgPower:  249.9,
		EndTime:   time.Now(),
	}

	awarded, requests, err := svc.CheckBadgeProgress(context.Background(), userID, session)
	require.NoError(t, err)
	assert.Empty(t, awarded)
	assert.Empty(t, requests)
}

func TestCheckBadgeProgress_NeverReawarded(t *testing.T) {
	repo := newFakeBadgeRepo()
	svc := NewBadgeService(repo, nil)
	userID := primitive.NewObjectID()

	session := domain.SessionSummary{SessionID: "s1", AvgSpeed: 32, EndTime: time.Now()}

	first, _, err := svc.CheckBadgeProgress(context.Background(), userID, session)
	require.NoError(t, err)
	require.Len(t, first, 1)

	session.SessionID = "s2"
	second, requests, err := svc.CheckBadgeProgress(context.Background(), userID, session)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Empty(t, requests)
}

func TestCheckBadgeProgress_MultipleCriteriaInOneSession(t *testing.T) {
	repo := newFakeBadgeRepo()
	svc := NewBadgeService(repo, nil)
	userID := primitive.NewObjectID()

	session := domain.SessionSummary{
		SessionID:     "epic",
		TotalDistance: 60,
		TotalCalories: 1500,
		AvgSpeed:      31,
		AvgPower:      260,
		EndTime:       time.Now(),
	}

	awarded, _, err := svc.CheckBadgeProgress(context.Background(), userID, session)
	require.NoError(t, err)

	names := make([]string, 0, len(awarded))
	for _, b := range awarded {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{"Speed Demon", "Endurance King", "Power House", "Calorie Crusher"}, names)
}
