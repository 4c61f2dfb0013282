package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"debatehub/models"
	"debatehub/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModerator returns a fixed result, switchable per test step.
type stubModerator struct {
	result ModerationResult
}

func (m *stubModerator) Moderate(ctx context.Context, text string) ModerationResult {
	return m.result
}

func acceptAll() *stubModerator {
	return &stubModerator{result: ModerationResult{Decision: DecisionAccept, FlaggedCategories: []string{}}}
}

// failingNotifier always errors, to prove side effects never fail the
// primary mutation.
type failingNotifier struct{}

func (failingNotifier) Create(ctx context.Context, username, message, debateID string) error {
	return errors.New("notification channel down")
}

type testEnv struct {
	store     *memstore.Store
	moderator *stubModerator
	svc       *DebateService
	badges    *BadgeEngine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ms := memstore.New()
	log := quietLogger()
	moderator := acceptAll()
	notifier := NewNotifier(ms.Notifications())
	ledger := NewActivityLedger(ms.Users())
	badges := NewBadgeEngine(ms.Users(), ms.Debates(), notifier, nil, log)
	svc := NewDebateService(ms.Debates(), ms.Categories(), ms.CensoredContent(), moderator, ledger, notifier, badges, log)

	ctx := context.Background()
	require.NoError(t, ms.InsertCategory(ctx, &models.Category{ID: "science", Name: "Science"}))
	require.NoError(t, ms.InsertCategory(ctx, &models.Category{ID: "politics", Name: "Politics"}))
	for _, u := range []string{"alice", "bob", "carol", "dave"} {
		require.NoError(t, ms.InsertUser(ctx, &models.User{
			Username:  u,
			Badges:    []models.BadgeAward{},
			CreatedAt: time.Now(),
		}))
	}
	return &testEnv{store: ms, moderator: moderator, svc: svc, badges: badges}
}

func (e *testEnv) createDebate(t *testing.T, owner string) *models.Debate {
	t.Helper()
	debate, _, err := e.svc.Create(context.Background(), CreateDebateRequest{
		Title:    "Should labs edit genomes?",
		Body:     "Gene editing in humans raises hard questions.",
		Category: "science",
		Username: owner,
	})
	require.NoError(t, err)
	return debate
}

func TestCreateDebateOwnerVotesAndFollows(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")

	assert.Equal(t, models.ModerationApproved, debate.ModerationStatus)
	assert.Equal(t, []string{"alice"}, debate.PeopleInFavor)
	assert.Equal(t, []string{"alice"}, debate.Followers)
	// The owner's implicit vote contributes membership only.
	assert.Equal(t, 0, debate.Popularity)

	user, err := env.store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Activity.Created)
	assert.Equal(t, 1, user.Activity.Tags["science"])
	assert.True(t, user.HasBadge("create1"))
}

func TestCreateDebateUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Create(context.Background(), CreateDebateRequest{
		Title: "t", Body: "b", Category: "nope", Username: "alice",
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateDebateRejectedIsNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	env.moderator.result = ModerationResult{Decision: DecisionReject, Reason: "hate", FlaggedCategories: []string{"hate"}}

	_, _, err := env.svc.Create(context.Background(), CreateDebateRequest{
		Title: "t", Body: "b", Category: "science", Username: "alice",
	})
	var rejected *ModerationRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "hate", rejected.Reason)

	debates, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, debates)
}

func TestCreateDebateFlaggedIsCensoredAndAudited(t *testing.T) {
	env := newTestEnv(t)
	env.moderator.result = ModerationResult{Decision: DecisionFlag, Reason: "vulgar", FlaggedCategories: []string{"profanity"}}

	debate, _, err := env.svc.Create(context.Background(), CreateDebateRequest{
		Title: "t", Body: "b", Category: "science", Username: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ModerationCensored, debate.ModerationStatus)
	assert.Equal(t, "vulgar", debate.ModerationReason)

	audit := env.store.Censored()
	require.Len(t, audit, 1)
	assert.Equal(t, "DEBATE", audit[0].Type)
	assert.Equal(t, "alice", audit[0].Username)
}

func TestVoteExclusivityAndPopularity(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	// Popularity starts at zero; the owner's implicit vote adds none.
	require.Equal(t, 0, debate.Popularity)

	d, _, err := env.svc.Vote(ctx, debate.ID, "bob", models.VoteInFavor)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, d.PeopleInFavor)
	assert.Equal(t, 2, d.Popularity)

	// Switching sides removes bob from InFavor: net popularity -2 +1.
	d, _, err = env.svc.Vote(ctx, debate.ID, "bob", models.VoteAgainst)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice"}, d.PeopleInFavor)
	assert.ElementsMatch(t, []string{"bob"}, d.PeopleAgainst)
	assert.Equal(t, 1, d.Popularity)

	// Re-voting the same side is a no-op.
	d, _, err = env.svc.Vote(ctx, debate.ID, "bob", models.VoteAgainst)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Popularity)

	// Withdrawing removes the vote and its popularity.
	d, _, err = env.svc.Vote(ctx, debate.ID, "bob", models.VoteNone)
	require.NoError(t, err)
	assert.Empty(t, d.PeopleAgainst)
	assert.Equal(t, 0, d.Popularity)

	// Withdrawing with no standing vote is a no-op.
	d, _, err = env.svc.Vote(ctx, debate.ID, "bob", models.VoteNone)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Popularity)
}

func TestCommentRequiresVote(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")

	_, _, err := env.svc.AddComment(context.Background(), debate.ID, CommentRequest{
		Username: "bob", Text: "I have thoughts.",
	})
	assert.ErrorIs(t, err, ErrMustVote)
}

func TestCommentCapturesPositionAtSubmission(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	_, _, err := env.svc.Vote(ctx, debate.ID, "bob", models.VoteAgainst)
	require.NoError(t, err)

	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{
		Username: "bob", Text: "I disagree.",
	})
	require.NoError(t, err)
	assert.False(t, comment.Position)
	assert.NotEmpty(t, comment.ID)

	// Switching sides later does not rewrite the stored position.
	_, _, err = env.svc.Vote(ctx, debate.ID, "bob", models.VoteInFavor)
	require.NoError(t, err)
	d, err := env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.False(t, d.Comments[0].Position)
}

func TestCommentBumpsPopularityAndLedger(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	_, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Opening argument."})
	require.NoError(t, err)

	d, err := env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Popularity)

	user, err := env.store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Activity.Interactions.Comments)
	assert.True(t, user.HasBadge("comment1"))
}

func TestFlaggedCommentIsPersistedCensoredAndFiltered(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	env.moderator.result = ModerationResult{Decision: DecisionFlag, Reason: "mild insult", FlaggedCategories: []string{"insult"}}
	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "You fool."})
	require.NoError(t, err)
	assert.Equal(t, models.ModerationCensored, comment.ModerationStatus)

	// Flagged content still counts toward popularity.
	d, err := env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Popularity)

	// Default fetch filters it, showCensored reveals it.
	view, _, err := env.svc.Get(ctx, debate.ID, false, "")
	require.NoError(t, err)
	assert.Empty(t, view.Comments)

	view, _, err = env.svc.Get(ctx, debate.ID, true, "")
	require.NoError(t, err)
	assert.Len(t, view.Comments, 1)

	audit := env.store.Censored()
	require.Len(t, audit, 1)
	assert.Equal(t, "COMMENT", audit[0].Type)
	assert.Equal(t, debate.ID, audit[0].DebateID)
}

func TestRejectedCommentIsFullNoOp(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	env.moderator.result = ModerationResult{Decision: DecisionReject, Reason: "threat", FlaggedCategories: []string{"threat"}}
	_, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "threatening text"})
	var rejected *ModerationRejectedError
	require.ErrorAs(t, err, &rejected)

	d, err := env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Comments)
	assert.Equal(t, 0, d.Popularity)

	user, err := env.store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, user.Activity.Interactions.Comments)
}

func TestReplySingleLevelNesting(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Top level."})
	require.NoError(t, err)

	reply, _, err := env.svc.AddReply(ctx, debate.ID, comment.ID, CommentRequest{Username: "alice", Text: "A reply."})
	require.NoError(t, err)
	assert.Equal(t, comment.ID, reply.ParentID)

	_, _, err = env.svc.AddReply(ctx, debate.ID, reply.ID, CommentRequest{Username: "alice", Text: "Reply to reply."})
	assert.ErrorIs(t, err, ErrReplyDepth)

	_, _, err = env.svc.AddReply(ctx, debate.ID, "missing", CommentRequest{Username: "alice", Text: "x"})
	assert.ErrorIs(t, err, ErrCommentNotFound)

	user, err := env.store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Activity.Interactions.Replies)
	assert.Equal(t, 2, user.Activity.Interactions.Comments)
}

func TestCommentNotificationFanoutDeduped(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	require.NoError(t, env.svc.Follow(ctx, debate.ID, "bob"))
	require.NoError(t, env.svc.Follow(ctx, debate.ID, "carol"))

	_, _, err := env.svc.Vote(ctx, debate.ID, "dave", models.VoteInFavor)
	require.NoError(t, err)
	_, _, err = env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "dave", Text: "Interesting point."})
	require.NoError(t, err)

	// alice is both owner and follower but gets exactly one notification.
	for username, want := range map[string]int{"alice": 1, "bob": 1, "carol": 1} {
		list, err := env.store.ListNotificationsByUser(ctx, username)
		require.NoError(t, err)
		assert.Len(t, list, want, "notifications for %s", username)
	}
}

func TestReplyDoesNotFanOutNotifications(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	require.NoError(t, env.svc.Follow(ctx, debate.ID, "bob"))
	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Top."})
	require.NoError(t, err)

	before, err := env.store.ListNotificationsByUser(ctx, "bob")
	require.NoError(t, err)

	_, _, err = env.svc.AddReply(ctx, debate.ID, comment.ID, CommentRequest{Username: "alice", Text: "Reply."})
	require.NoError(t, err)

	after, err := env.store.ListNotificationsByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestFailingNotifierDoesNotFailMutation(t *testing.T) {
	env := newTestEnv(t)
	log := quietLogger()
	ledger := NewActivityLedger(env.store.Users())
	badges := NewBadgeEngine(env.store.Users(), env.store.Debates(), failingNotifier{}, nil, log)
	svc := NewDebateService(env.store.Debates(), env.store.Categories(), env.store.CensoredContent(), acceptAll(), ledger, failingNotifier{}, badges, log)

	ctx := context.Background()
	debate, _, err := svc.Create(ctx, CreateDebateRequest{
		Title: "t", Body: "b", Category: "science", Username: "alice",
	})
	require.NoError(t, err)

	comment, effects, err := svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Still works."})
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.NotEmpty(t, effects.Failed())

	d, err := env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.Len(t, d.Comments, 1)
}

func TestReactExclusivityAndConsistency(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "React to me."})
	require.NoError(t, err)

	c, _, err := env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionLike, MethodAdd)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Likes)
	assert.Equal(t, []string{"bob"}, c.PeopleInFavor)

	// Repeating the same reaction is a full no-op.
	c, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionLike, MethodAdd)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Likes)

	// Adding a dislike withdraws the like.
	c, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionDislike, MethodAdd)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Likes)
	assert.Equal(t, 1, c.Dislikes)
	assert.Empty(t, c.PeopleInFavor)

	// Removing a reaction that is not there is a no-op, not an underflow.
	c, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionLike, MethodRemove)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Likes)
	assert.Equal(t, 1, c.Dislikes)

	c, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionDislike, MethodRemove)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dislikes)
	assert.Empty(t, c.PeopleAgainst)
}

func TestReactLedgerOnlyOnActualChange(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "React."})
	require.NoError(t, err)

	_, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionLike, MethodAdd)
	require.NoError(t, err)
	_, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionLike, MethodAdd)
	require.NoError(t, err)
	_, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionDislike, MethodRemove)
	require.NoError(t, err)

	user, err := env.store.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Activity.Interactions.Likes)
	assert.Equal(t, 0, user.Activity.Interactions.Dislikes)
	// Score: the like (+1) plus the react1 badge xp (+5).
	assert.InDelta(t, 6.0, user.Activity.Score, 0.001)
}

func TestReactSwitchWithdrawsOppositeFromLedger(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	comment, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Switch on me."})
	require.NoError(t, err)

	_, _, err = env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionDislike, MethodAdd)
	require.NoError(t, err)
	c, _, err := env.svc.React(ctx, debate.ID, comment.ID, "bob", ReactionLike, MethodAdd)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Likes)
	assert.Equal(t, 0, c.Dislikes)

	// The withdrawn dislike leaves no residue in the user's counters or
	// score: 1 like given, react1 badge xp 5, like weight 1.
	user, err := env.store.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Activity.Interactions.Likes)
	assert.Equal(t, 0, user.Activity.Interactions.Dislikes)
	assert.InDelta(t, 6.0, user.Activity.Score, 0.001)
}

func TestFollowUnfollowIdempotent(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	require.NoError(t, env.svc.Follow(ctx, debate.ID, "bob"))
	require.NoError(t, env.svc.Follow(ctx, debate.ID, "bob"))

	d, err := env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, d.Followers)

	require.NoError(t, env.svc.Unfollow(ctx, debate.ID, "bob"))
	require.NoError(t, env.svc.Unfollow(ctx, debate.ID, "bob"))

	d, err = env.store.Get(ctx, debate.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, d.Followers)

	assert.ErrorIs(t, env.svc.Follow(ctx, "missing", "bob"), ErrDebateNotFound)
}

func TestGetAttachesBestArgumentAndCountsView(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	first, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Weak point."})
	require.NoError(t, err)
	second, _, err := env.svc.AddComment(ctx, debate.ID, CommentRequest{Username: "alice", Text: "Strong point."})
	require.NoError(t, err)
	_ = first

	_, _, err = env.svc.React(ctx, debate.ID, second.ID, "bob", ReactionLike, MethodAdd)
	require.NoError(t, err)

	view, _, err := env.svc.Get(ctx, debate.ID, false, "carol")
	require.NoError(t, err)
	require.NotNil(t, view.BestArgument)
	assert.Equal(t, second.ID, view.BestArgument.ID)

	user, err := env.store.GetUser(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Activity.Views)
}

func TestUpdateAndDeleteDebate(t *testing.T) {
	env := newTestEnv(t)
	debate := env.createDebate(t, "alice")
	ctx := context.Background()

	title := "Revised title"
	category := "politics"
	updated, err := env.svc.Update(ctx, debate.ID, UpdateDebateRequest{Title: &title, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Revised title", updated.Title)
	assert.Equal(t, "politics", updated.Category)

	bad := "nope"
	_, err = env.svc.Update(ctx, debate.ID, UpdateDebateRequest{Category: &bad})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	require.NoError(t, env.svc.Delete(ctx, debate.ID))
	assert.ErrorIs(t, env.svc.Delete(ctx, debate.ID), ErrDebateNotFound)
}

func TestListByCategorySortModes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		d, _, err := env.svc.Create(ctx, CreateDebateRequest{
			Title: title, Body: "body", Category: "science", Username: "alice",
		})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	// third gets the most votes, second gets a comment.
	_, _, err := env.svc.Vote(ctx, ids[2], "bob", models.VoteInFavor)
	require.NoError(t, err)
	_, _, err = env.svc.AddComment(ctx, ids[1], CommentRequest{Username: "alice", Text: "Only comment."})
	require.NoError(t, err)

	active, err := env.svc.ListByCategory(ctx, "science", "active", "", false)
	require.NoError(t, err)
	assert.Equal(t, "second", active[0].Title)

	popular, err := env.svc.ListByCategory(ctx, "science", "popular", "", false)
	require.NoError(t, err)
	assert.Equal(t, "third", popular[0].Title)

	_, err = env.svc.ListByCategory(ctx, "missing", "active", "", false)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestSearchAndPopular(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, title := range []string{"Climate change policy", "Space exploration", "Climate adaptation"} {
		d, _, err := env.svc.Create(ctx, CreateDebateRequest{
			Title: title, Body: "body", Category: "science", Username: "alice",
		})
		require.NoError(t, err)
		if i == 1 {
			_, _, err = env.svc.Vote(ctx, d.ID, "bob", models.VoteInFavor)
			require.NoError(t, err)
		}
	}

	found, err := env.svc.Search(ctx, "climate", false)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = env.svc.Search(ctx, "", false)
	assert.ErrorIs(t, err, ErrValidation)

	top, err := env.svc.Popular(ctx, false)
	require.NoError(t, err)
	require.NotEmpty(t, top)
	assert.Equal(t, "Space exploration", top[0].Title)
}
