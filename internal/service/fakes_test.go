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

// In-memory stand-ins for the Mongo repositories. Each fake implements
// just enough of its interface contract (atomic upsert-on-first-touch,
// insert-if-absent) for the services to behave as they would in
// production.

type fakeProgressionRepo struct {
	progressions map[primitive.ObjectID]*domain.UserProgression
	addXPErr     error
	setStreakErr error
}

func newFakeProgressionRepo() *fakeProgressionRepo {
	return &fakeProgressionRepo{progressions: map[primitive.ObjectID]*domain.UserProgression{}}
}

func (r *fakeProgressionRepo) getOrCreate(userID primitive.ObjectID) *domain.UserProgression {
	if p, ok := r.progressions[userID]; ok {
		return p
	}
	p := &domain.UserProgression{ID: primitive.NewObjectID(), UserID: userID}
	r.progressions[userID] = p
	return p
}

func (r *fakeProgressionRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProgression, error) {
	p, ok := r.progressions[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProgressionRepo) AddXP(ctx context.Context, userID primitive.ObjectID, delta int) (*domain.UserProgression, error) {
	if r.addXPErr != nil {
		return nil, r.addXPErr
	}
	p := r.getOrCreate(userID)
	p.XP += delta
	copied := *p
	return &copied, nil
}

func (r *fakeProgressionRepo) AddLifetimeStats(ctx context.Context, userID primitive.ObjectID, distance, calories float64) (*domain.UserProgression, error) {
	p := r.getOrCreate(userID)
	p.Stats.TotalDistance += distance
	p.Stats.TotalCalories += calories
	p.Stats.TotalWorkouts++
	copied := *p
	return &copied, nil
}

func (r *fakeProgressionRepo) SetStreak(ctx context.Context, userID primitive.ObjectID, streak int, lastActivity time.Time) error {
	if r.setStreakErr != nil {
		return r.setStreakErr
	}
	p := r.getOrCreate(userID)
	p.Streak = streak
	p.LastActivityDate = &lastActivity
	return nil
}

type fakeGoalRepo struct {
	goals   map[primitive.ObjectID]*domain.Goal
	linkErr error
}

func newFakeGoalRepo(goals ...*domain.Goal) *fakeGoalRepo {
	r := &fakeGoalRepo{goals: map[primitive.ObjectID]*domain.Goal{}}
	for _, g := range goals {
		r.goals[g.ID] = g
	}
	return r
}

func (r *fakeGoalRepo) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	goal.ID = primitive.NewObjectID()
	r.goals[goal.ID] = goal
	return goal.ID, nil
}

func (r *fakeGoalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGoalRepo) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	for _, g := range r.goals {
		if g.UserID == userID && g.Status == domain.GoalStatusActive {
			copied := *g
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeGoalRepo) LinkSession(ctx context.Context, goalID primitive.ObjectID, sessionID string) (bool, error) {
	if r.linkErr != nil {
		return false, r.linkErr
	}
	g, ok := r.goals[goalID]
	if !ok {
		// Indistinguishable from "already linked" at this level; the
		// follow-up GetByID surfaces the missing goal.
		return false, nil
	}
	for _, existing := range g.LinkedSessions {
		if existing == sessionID {
			return false, nil
		}
	}
	g.LinkedSessions = append(g.LinkedSessions, sessionID)
	return true, nil
}

func (r *fakeGoalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	if _, ok := r.goals[goal.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *goal
	// Linked sessions are owned by LinkSession, not Update.
	copied.LinkedSessions = r.goals[goal.ID].LinkedSessions
	r.goals[goal.ID] = &copied
	return nil
}

type fakeMilestoneRepo struct {
	milestones map[string]domain.Milestone
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{milestones: map[string]domain.Milestone{}}
}

func milestoneKey(m *domain.Milestone) string {
	return fmt.Sprintf("%s|%s|%d", m.UserID.Hex(), m.Type, m.Value)
}

func (r *fakeMilestoneRepo) InsertIfAbsent(ctx context.Context, m *domain.Milestone) (bool, error) {
	key := milestoneKey(m)
	if _, ok := r.milestones[key]; ok {
		return false, nil
	}
	m.ID = primitive.NewObjectID()
	r.milestones[key] = *m
	return true, nil
}

func (r *fakeMilestoneRepo) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Milestone, error) {
	var out []domain.Milestone
	for _, m := range r.milestones {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeBadgeRepo struct {
	badges map[string]domain.Badge
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{badges: map[string]domain.Badge{}}
}

func (r *fakeBadgeRepo) InsertIfAbsent(ctx context.Context, b *domain.Badge) (bool, error) {
	key := b.UserID.Hex() + "|" + b.Name
	if _, ok := r.badges[key]; ok {
		return false, nil
	}
	b.ID = primitive.NewObjectID()
	r.badges[key] = *b
	return true, nil
}

func (r *fakeBadgeRepo) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Badge, error) {
	var out []domain.Badge
	for _, b := range r.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeQuestRepo struct {
	quests map[primitive.ObjectID]*domain.Quest
}

func newFakeQuestRepo(quests ...*domain.Quest) *fakeQuestRepo {
	r := &fakeQuestRepo{quests: map[primitive.ObjectID]*domain.Quest{}}
	for _, q := range quests {
		if q.ID.IsZero() {
			q.ID = primitive.NewObjectID()
		}
		r.quests[q.ID] = q
	}
	return r
}

func (r *fakeQuestRepo) Create(ctx context.Context, q *domain.Quest) (primitive.ObjectID, error) {
	q.ID = primitive.NewObjectID()
	r.quests[q.ID] = q
	return q.ID, nil
}

func (r *fakeQuestRepo) ListActiveByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error) {
	var out []domain.Quest
	for _, q := range r.quests {
		if q.UserID == userID && q.Status == domain.QuestStatusActive {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fakeQuestRepo) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Quest, error) {
	var out []domain.Quest
	for _, q := range r.quests {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fakeQuestRepo) Update(ctx context.Context, q *domain.Quest) error {
	if _, ok := r.quests[q.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *q
	r.quests[q.ID] = &copied
	return nil
}

func (r *fakeQuestRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, q := range r.quests {
		if q.ExpireIfDue(now) {
			n++
		}
	}
	return n, nil
}

type fakeNotificationRepo struct {
	notifications map[string]*domain.Notification
	createErr     error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[string]*domain.Notification{}}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *n
	r.notifications[n.ID] = &copied
	return nil
}

func (r *fakeNotificationRepo) MarkDelivered(ctx context.Context, id string, channel domain.NotificationChannel) error {
	n, ok := r.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.DeliveredVia = channel
	return nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string, userID primitive.ObjectID) error {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, notif := range r.notifications {
		if notif.UserID == userID && !notif.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) ListByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, notif := range r.notifications {
		if notif.UserID == userID {
			out = append(out, *notif)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, notif := range r.notifications {
		if notif.Read && notif.CreatedAt.Before(cutoff) {
			delete(r.notifications, id)
			n++
		}
	}
	return n, nil
}

// Delivery-channel fakes.

type fakePresence struct {
	online bool
	err    error
}

func (p *fakePresence) IsConnected(ctx context.Context, userID string) (bool, error) {
	return p.online, p.err
}

type fakeLive struct {
	err  error
	sent []interface{}
}

func (l *fakeLive) Send(userID string, payload interface{}) error {
	if l.err != nil {
		return l.err
	}
	l.sent = append(l.sent, payload)
	return nil
}

type fakePush struct {
	err  error
	sent []*domain.Notification
}

func (p *fakePush) Send(ctx context.Context, userID primitive.ObjectID, n *domain.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	return nil
}

var errBoom = errors.New("boom")

// fixedClock returns a clock pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
