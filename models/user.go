package models

import "time"

// Interactions holds per-user interaction counters.
type Interactions struct {
	Comments int `bson:"comments" json:"comments"`
	Replies  int `bson:"replies" json:"replies"`
	Likes    int `bson:"likes" json:"likes"`
	Dislikes int `bson:"dislikes" json:"dislikes"`
}

// Activity is the per-user activity ledger: cumulative counters and a
// score that drives ranking and badge evaluation. The debate service only
// issues increments against it; it never reads-then-writes counters.
type Activity struct {
	Created      int            `bson:"created" json:"created"` // debates created
	Views        int            `bson:"views" json:"views"`
	Interactions Interactions   `bson:"interactions" json:"interactions"`
	Tags         map[string]int `bson:"tags,omitempty" json:"tags,omitempty"` // per-category debate tallies
	Score        float64        `bson:"score" json:"score"`
}

// BadgeAward records one earned badge. A badge id appears at most once
// per user.
type BadgeAward struct {
	BadgeID   string    `bson:"badgeId" json:"badgeId"`
	AwardedAt time.Time `bson:"awardedAt" json:"awardedAt"`
}

// User is the owner of the activity ledger and badge set. Profile CRUD
// lives outside this service; the fields here are what the debate
// pipeline and badge engine consume.
type User struct {
	Username  string       `bson:"username" json:"username"`
	Email     string       `bson:"email,omitempty" json:"email,omitempty"`
	AvatarID  string       `bson:"avatarId,omitempty" json:"avatarId,omitempty"`
	Interests []string     `bson:"interests,omitempty" json:"interests,omitempty"`
	Activity  Activity     `bson:"activity" json:"activity"`
	Badges    []BadgeAward `bson:"badges" json:"badges"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// HasBadge reports whether the user already owns the badge id.
func (u *User) HasBadge(id string) bool {
	for _, b := range u.Badges {
		if b.BadgeID == id {
			return true
		}
	}
	return false
}

// ReactionsCount is the combined likes and dislikes the user has given.
func (u *User) ReactionsCount() int {
	return u.Activity.Interactions.Likes + u.Activity.Interactions.Dislikes
}
