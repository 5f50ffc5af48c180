package service

import (
	"context"
	"log"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pipeline component names used in CompletionResult.Failed.
const (
	componentGoal          = "goal"
	componentProgression   = "progression"
	componentStreak        = "streak"
	componentMilestones    = "milestones"
	componentBadges        = "badges"
	componentQuests        = "quests"
	componentNotifications = "notifications"
)

// CompletionResult aggregates everything one completed session produced.
// Failed maps a component name to its error message when that component
// could not run; the rest of the pipeline still completed.
type CompletionResult struct {
	XPEarned        int                   `json:"xpEarned"`
	TotalXP         int                   `json:"totalXP"`
	LeveledUp       bool                  `json:"leveledUp"`
	NewLevel        int                   `json:"newLevel"`
	Rank            domain.Rank           `json:"rank"`
	Streak          int                   `json:"streak"`
	Goal            *domain.Goal          `json:"goal,omitempty"`
	NewMilestones   []domain.Milestone    `json:"newMilestones"`
	NewBadges       []domain.Badge        `json:"newBadges"`
	CompletedQuests []domain.Quest        `json:"completedQuests"`
	Notifications   []domain.Notification `json:"notifications"`
	Failed          map[string]string     `json:"failed,omitempty"`
}

// AchievementSummary is the read model for a user's overall progress.
type AchievementSummary struct {
	XP            int                `json:"xp"`
	Level         int                `json:"level"`
	Rank          domain.Rank        `json:"rank"`
	XPToNextLevel int                `json:"xpToNextLevel"`
	Streak        int                `json:"streak"`
	Badges        []domain.Badge     `json:"badges"`
	Milestones    []domain.Milestone `json:"milestones"`
	Quests        []domain.Quest     `json:"quests"`
}

// CompletionService sequences the progression pipeline when a workout
// session ends. It holds no state of its own; every side effect is
// delegated.
type CompletionService interface {
	// OnSessionCompleted runs the full pipeline for one session. A
	// malformed summary aborts before any write; a failing component is
	// logged, recorded in the result, and does not stop the others:
	// a goal-update failure must never block the XP award.
	OnSessionCompleted(ctx context.Context, userID primitive.ObjectID, goalID *primitive.ObjectID, s domain.SessionSummary) (*CompletionResult, error)

	// GetAchievementSummary assembles the user's progress read model.
	GetAchievementSummary(ctx context.Context, userID primitive.ObjectID) (*AchievementSummary, error)
}

type completionService struct {
	goals         GoalService
	progression   ProgressionService
	streaks       StreakService
	milestones    MilestoneService
	badges        BadgeService
	quests        QuestService
	notifications NotificationService

	progressionRepo repository.ProgressionRepository
	milestoneRepo   repository.MilestoneRepository
	badgeRepo       repository.BadgeRepository

	logger *log.Logger
}

// NewCompletionService creates a new instance of completionService.
// A nil logger falls back to the default logger.
func NewCompletionService(
	goals GoalService,
	progression ProgressionService,
	streaks StreakService,
	milestones MilestoneService,
	badges BadgeService,
	quests QuestService,
	notifications NotificationService,
	progressionRepo repository.ProgressionRepository,
	milestoneRepo repository.MilestoneRepository,
	badgeRepo repository.BadgeRepository,
	logger *log.Logger,
) CompletionService {
	if logger == nil {
		logger = log.Default()
	}
	return &completionService{
		goals:           goals,
		progression:     progression,
		streaks:         streaks,
		milestones:      milestones,
		badges:          badges,
		quests:          quests,
		notifications:   notifications,
		progressionRepo: progressionRepo,
		milestoneRepo:   milestoneRepo,
		badgeRepo:       badgeRepo,
		logger:          logger,
	}
}

func (s *completionService) OnSessionCompleted(ctx context.Context, userID primitive.ObjectID, goalID *primitive.ObjectID, summary domain.SessionSummary) (*CompletionResult, error) {
	// The one validation gate: nothing is written for a bad summary.
	if err := summary.Validate(); err != nil {
		return nil, err
	}

	result := &CompletionResult{
		NewMilestones:   []domain.Milestone{},
		NewBadges:       []domain.Badge{},
		CompletedQuests: []domain.Quest{},
		Notifications:   []domain.Notification{},
		Failed:          map[string]string{},
	}
	var requests []domain.NotificationRequest

	// Goal first: its completion-percentage milestones must reflect this
	// session before any XP-based notifications fire.
	if goalID != nil {
		goal, goalRequests, err := s.goals.UpdateGoalFromSession(ctx, *goalID, summary)
		if err != nil {
			s.fail(result, componentGoal, err)
		} else {
			result.Goal = goal
			requests = append(requests, goalRequests...)
		}
	}

	award, xpRequests, err := s.progression.AwardXP(ctx, userID, summary)
	if err != nil {
		s.fail(result, componentProgression, err)
	} else {
		result.XPEarned = award.XPEarned
		result.TotalXP = award.TotalXP
		result.LeveledUp = award.LeveledUp
		result.NewLevel = award.NewLevel
		result.Rank = award.Rank
		requests = append(requests, xpRequests...)
	}

	streak, streakRequests, err := s.streaks.UpdateStreak(ctx, userID, summary.EndTime)
	if err != nil {
		s.fail(result, componentStreak, err)
	} else {
		result.Streak = streak.Streak
		requests = append(requests, streakRequests...)
	}

	milestones, milestoneRequests, err := s.milestones.RecordSession(ctx, userID, summary)
	if err != nil {
		s.fail(result, componentMilestones, err)
	}
	// A partial milestone failure may still have produced awards.
	result.NewMilestones = append(result.NewMilestones, milestones...)
	requests = append(requests, milestoneRequests...)

	badges, badgeRequests, err := s.badges.CheckBadgeProgress(ctx, userID, summary)
	if err != nil {
		s.fail(result, componentBadges, err)
	}
	result.NewBadges = append(result.NewBadges, badges...)
	requests = append(requests, badgeRequests...)

	completedQuests, questRequests, err := s.quests.AdvanceFromSession(ctx, userID, summary)
	if err != nil {
		s.fail(result, componentQuests, err)
	}
	result.CompletedQuests = append(result.CompletedQuests, completedQuests...)
	requests = append(requests, questRequests...)

	for _, req := range requests {
		n, err := s.notifications.Route(ctx, userID, req)
		if err != nil {
			s.fail(result, componentNotifications, err)
			continue
		}
		result.Notifications = append(result.Notifications, *n)
	}

	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

// fail records a component failure without interrupting the pipeline.
func (s *completionService) fail(result *CompletionResult, component string, err error) {
	s.logger.Printf("ERROR: session completion: %s component failed: %v", component, err)
	result.Failed[component] = err.Error()
}

func (s *completionService) GetAchievementSummary(ctx context.Context, userID primitive.ObjectID) (*AchievementSummary, error) {
	prog, err := s.progressionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	quests, err := s.quests.ListQuests(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := prog.Level()
	return &AchievementSummary{
		XP:            prog.XP,
		Level:         level,
		Rank:          prog.Rank(),
		XPToNextLevel: domain.XPToNextLevel(prog.XP),
		Streak:        prog.Streak,
		Badges:        badges,
		Milestones:    milestones,
		Quests:        quests,
	}, nil
}
