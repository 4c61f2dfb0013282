// Package store defines the persistence contract consumed by the debate
// pipeline. The document store is the single source of truth; it provides
// per-document atomicity for the primitives below (set-add, set-remove,
// numeric increment, per-comment replace) but composed read-modify-write
// sequences are not transactional across calls.
package store

import (
	"context"
	"errors"

	"debatehub/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Username-set fields of a debate document.
const (
	FieldInFavor   = "peopleInFavor"
	FieldAgainst   = "peopleAgainst"
	FieldFollowers = "followers"
)

// SetDelta describes commutative membership changes to one username-set
// field. Additions and removals are modeled as set union/difference, so
// they are safe under concurrent application regardless of ordering.
type SetDelta struct {
	Field  string
	Add    []string
	Remove []string
}

// DebateSort orders category listings.
type DebateSort string

const (
	SortActive  DebateSort = "active" // most comments first
	SortPopular DebateSort = "popular"
	SortRecent  DebateSort = "recent"
	SortAncient DebateSort = "ancient"
)

// DebateStore persists debate aggregates.
type DebateStore interface {
	Insert(ctx context.Context, d *models.Debate) error
	Get(ctx context.Context, id string) (*models.Debate, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Debate, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Debate, error)
	TopByPopularity(ctx context.Context, limit int64, approvedOnly bool) ([]*models.Debate, error)

	// ApplyDeltas applies set-membership changes and a popularity delta
	// in a single document update.
	ApplyDeltas(ctx context.Context, id string, deltas []SetDelta, popularityDelta int) error
	// AppendComment appends to the comment sequence (insertion order is
	// never reordered in storage) and bumps popularity atomically.
	AppendComment(ctx context.Context, id string, c models.Comment, popularityDelta int) error
	// UpdateComment replaces the single comment matching c.ID in place,
	// leaving the rest of the comment sequence untouched.
	UpdateComment(ctx context.Context, id string, c models.Comment) error
	// SetFields patches top-level debate fields (the explicit edit path).
	SetFields(ctx context.Context, id string, fields map[string]interface{}) error

	CountByOwner(ctx context.Context, username string) (int64, error)
	CountByOwnerAndCategory(ctx context.Context, username, category string) (int64, error)
	// CountVotesBy counts debates where username holds a vote in either set.
	CountVotesBy(ctx context.Context, username string) (int64, error)
}

// UserStore persists users and their activity ledger.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	Get(ctx context.Context, username string) (*models.User, error)
	// IncrementActivity atomically increments counters addressed by field
	// path (e.g. "activity.interactions.comments", "activity.score",
	// "activity.tags.<category>").
	IncrementActivity(ctx context.Context, username string, fields map[string]float64) error
	// AwardBadge appends the award and adds xp to the score only if the
	// badge id is not already owned. Returns false when it was. The check
	// and the write are a single conditional update, so concurrent
	// evaluations cannot double-award.
	AwardBadge(ctx context.Context, username string, award models.BadgeAward, xp float64) (bool, error)
}

// CategoryStore persists debate categories.
type CategoryStore interface {
	Insert(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, username string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// CensoredStore is the audit sink for flagged content.
type CensoredStore interface {
	Insert(ctx context.Context, c *models.CensoredContent) error
}
