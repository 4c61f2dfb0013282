package services

import (
	"context"

	"debatehub/store"
)

// Activity field paths used for atomic increments.
const (
	fieldDebatesCreated = "activity.created"
	fieldViews          = "activity.views"
	fieldComments       = "activity.interactions.comments"
	fieldReplies        = "activity.interactions.replies"
	fieldLikes          = "activity.interactions.likes"
	fieldDislikes       = "activity.interactions.dislikes"
	fieldScore          = "activity.score"
)

// Score weights per interaction.
const (
	scoreDebateCreated = 5
	scoreComment       = 3
	scoreLike          = 1
	scoreDislike       = 0.5
)

func tagField(category string) string {
	return "activity.tags." + category
}

// ActivityLedger issues per-user counter increments. It never reads
// counters back; the user aggregate owns them.
type ActivityLedger interface {
	DebateCreated(ctx context.Context, username, category string) error
	CommentPosted(ctx context.Context, username, category string) error
	ReplyPosted(ctx context.Context, username, category string) error
	// ReactionChanged records a like/dislike being given (added=true) or
	// withdrawn. Callers only report reactions that actually changed the
	// comment's reactor sets, so counters and score stay consistent.
	ReactionChanged(ctx context.Context, username, action string, added bool) error
	ViewRecorded(ctx context.Context, username string) error
}

type userLedger struct {
	users store.UserStore
}

// NewActivityLedger builds the ledger over the user store's atomic
// field-path increments.
func NewActivityLedger(users store.UserStore) ActivityLedger {
	return &userLedger{users: users}
}

func (l *userLedger) DebateCreated(ctx context.Context, username, category string) error {
	fields := map[string]float64{
		fieldDebatesCreated: 1,
		fieldScore:          scoreDebateCreated,
	}
	if category != "" {
		fields[tagField(category)] = 1
	}
	return l.users.IncrementActivity(ctx, username, fields)
}

func (l *userLedger) CommentPosted(ctx context.Context, username, category string) error {
	fields := map[string]float64{
		fieldComments: 1,
		fieldScore:    scoreComment,
	}
	if category != "" {
		fields[tagField(category)] = 1
	}
	return l.users.IncrementActivity(ctx, username, fields)
}

func (l *userLedger) ReplyPosted(ctx context.Context, username, category string) error {
	fields := map[string]float64{
		fieldComments: 1,
		fieldReplies:  1,
		fieldScore:    scoreComment,
	}
	if category != "" {
		fields[tagField(category)] = 1
	}
	return l.users.IncrementActivity(ctx, username, fields)
}

func (l *userLedger) ReactionChanged(ctx context.Context, username, action string, added bool) error {
	sign := float64(1)
	if !added {
		sign = -1
	}
	fields := map[string]float64{}
	switch action {
	case ReactionLike:
		fields[fieldLikes] = sign
		fields[fieldScore] = sign * scoreLike
	case ReactionDislike:
		fields[fieldDislikes] = sign
		fields[fieldScore] = sign * scoreDislike
	default:
		return validationErrorf("unknown reaction action %q", action)
	}
	return l.users.IncrementActivity(ctx, username, fields)
}

func (l *userLedger) ViewRecorded(ctx context.Context, username string) error {
	return l.users.IncrementActivity(ctx, username, map[string]float64{fieldViews: 1})
}
