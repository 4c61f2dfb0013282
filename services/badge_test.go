package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"debatehub/models"
	"debatehub/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgeEnv(t *testing.T) (*memstore.Store, *BadgeEngine) {
	t.Helper()
	ms := memstore.New()
	engine := NewBadgeEngine(ms.Users(), ms.Debates(), NewNotifier(ms.Notifications()), nil, quietLogger())
	require.NoError(t, ms.InsertUser(context.Background(), &models.User{
		Username:  "alice",
		Badges:    []models.BadgeAward{},
		CreatedAt: time.Now(),
	}))
	return ms, engine
}

func insertDebates(t *testing.T, ms *memstore.Store, owner, category string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, ms.Insert(context.Background(), &models.Debate{
			ID:               fmt.Sprintf("%s-%s-%d", owner, category, i),
			Title:            "t",
			Category:         category,
			Owner:            owner,
			PeopleInFavor:    []string{owner},
			ModerationStatus: models.ModerationApproved,
		}))
	}
}

func TestEvaluateAwardsFirstCommentOnce(t *testing.T) {
	ms, engine := newBadgeEnv(t)
	ctx := context.Background()

	require.NoError(t, ms.IncrementActivity(ctx, "alice", map[string]float64{"activity.interactions.comments": 1}))

	awarded, err := engine.Evaluate(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "comment1", awarded[0].BadgeID)

	// Re-evaluation without new activity awards nothing more.
	awarded, err = engine.Evaluate(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, awarded)

	user, err := ms.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, user.Badges, 1)
	assert.InDelta(t, 5.0, user.Activity.Score, 0.001) // xp granted exactly once
}

func TestEvaluateWalksTiersInOrder(t *testing.T) {
	ms, engine := newBadgeEnv(t)
	ctx := context.Background()

	insertDebates(t, ms, "alice", "science", 10)

	awarded, err := engine.Evaluate(ctx, "alice")
	require.NoError(t, err)

	var ids []string
	for _, a := range awarded {
		ids = append(ids, a.BadgeID)
	}
	// All reached creation tiers land in one pass, in table order.
	assert.Equal(t, []string{"create1", "create5", "create10", "vote1", "vote10", "catScience"}, ids)
}

func TestEvaluateCategoryBadge(t *testing.T) {
	ms, engine := newBadgeEnv(t)
	ctx := context.Background()

	insertDebates(t, ms, "alice", "politics", 5)
	insertDebates(t, ms, "alice", "science", 4)

	awarded, err := engine.Evaluate(ctx, "alice")
	require.NoError(t, err)

	user, err := ms.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, user.HasBadge("catPolitics"))
	assert.False(t, user.HasBadge("catScience"))
	assert.NotEmpty(t, awarded)
}

func TestEvaluateReactionTiers(t *testing.T) {
	ms, engine := newBadgeEnv(t)
	ctx := context.Background()

	require.NoError(t, ms.IncrementActivity(ctx, "alice", map[string]float64{
		"activity.interactions.likes":    7,
		"activity.interactions.dislikes": 3,
	}))

	_, err := engine.Evaluate(ctx, "alice")
	require.NoError(t, err)

	user, err := ms.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, user.HasBadge("react1"))
	assert.True(t, user.HasBadge("react10"))
	assert.False(t, user.HasBadge("react20"))
}

func TestEvaluateUnknownUserIsNoOp(t *testing.T) {
	_, engine := newBadgeEnv(t)
	awarded, err := engine.Evaluate(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestEvaluateNotifiesAwards(t *testing.T) {
	ms, engine := newBadgeEnv(t)
	ctx := context.Background()

	require.NoError(t, ms.IncrementActivity(ctx, "alice", map[string]float64{"activity.interactions.comments": 1}))
	_, err := engine.Evaluate(ctx, "alice")
	require.NoError(t, err)

	notifications, err := ms.ListNotificationsByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "First Comment")
}

func TestEvaluateBroadcastsEvents(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	require.NoError(t, ms.InsertUser(ctx, &models.User{Username: "alice", Badges: []models.BadgeAward{}}))
	require.NoError(t, ms.IncrementActivity(ctx, "alice", map[string]float64{"activity.interactions.comments": 1}))

	var events []models.GamificationEvent
	engine := NewBadgeEngine(ms.Users(), ms.Debates(), NewNotifier(ms.Notifications()), func(e models.GamificationEvent) {
		events = append(events, e)
	}, quietLogger())

	_, err := engine.Evaluate(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "badge_awarded", events[0].Type)
	assert.Equal(t, "comment1", events[0].BadgeID)
	assert.InDelta(t, 5.0, events[0].XP, 0.001)
}

func TestDefinitionsReturnsCopy(t *testing.T) {
	defs := Definitions()
	require.NotEmpty(t, defs)
	defs[0].ID = "mutated"
	assert.NotEqual(t, "mutated", Definitions()[0].ID)
}
