package models

import "time"

// Moderation statuses shared by debates and comments.
const (
	ModerationPending  = "PENDING"
	ModerationApproved = "APPROVED"
	ModerationCensored = "CENSORED"
	ModerationDeleted  = "DELETED"
)

// VoteTarget is the stance a user takes on a debate.
type VoteTarget string

const (
	VoteInFavor VoteTarget = "InFavor"
	VoteAgainst VoteTarget = "Against"
	VoteNone    VoteTarget = "None"
)

// Comment is an argument posted inside a debate. A reply references its
// parent through ParentID; only one level of nesting is allowed, so a
// reply's parent is always a top-level comment.
type Comment struct {
	ID               string    `bson:"idComment" json:"idComment"`
	ParentID         string    `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Username         string    `bson:"username" json:"username"`
	Text             string    `bson:"argument" json:"argument"`
	Position         bool      `bson:"position" json:"position"`
	Likes            int       `bson:"likes" json:"likes"`
	Dislikes         int       `bson:"dislikes" json:"dislikes"`
	PeopleInFavor    []string  `bson:"peopleInFavor" json:"peopleInFavor"`
	PeopleAgainst    []string  `bson:"peopleAgainst" json:"peopleAgainst"`
	Refs             []string  `bson:"refs" json:"refs"`
	Image            string    `bson:"image,omitempty" json:"image,omitempty"`
	ModerationStatus string    `bson:"moderationStatus" json:"moderationStatus"`
	ModerationReason string    `bson:"moderationReason,omitempty" json:"moderationReason,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

// Debate is the aggregate root: it owns its comments, vote sets, followers
// and popularity score. All mutations funnel through the debate service.
type Debate struct {
	ID               string    `bson:"_id" json:"idDebate"`
	Title            string    `bson:"nameDebate" json:"nameDebate"`
	Body             string    `bson:"argument" json:"argument"`
	Category         string    `bson:"category" json:"category"`
	Owner            string    `bson:"username" json:"username"`
	Image            string    `bson:"image,omitempty" json:"image,omitempty"`
	Refs             []string  `bson:"refs" json:"refs"`
	Comments         []Comment `bson:"comments" json:"comments"`
	Popularity       int       `bson:"popularity" json:"popularity"`
	PeopleInFavor    []string  `bson:"peopleInFavor" json:"peopleInFavor"`
	PeopleAgainst    []string  `bson:"peopleAgainst" json:"peopleAgainst"`
	Followers        []string  `bson:"followers" json:"followers"`
	ModerationStatus string    `bson:"moderationStatus" json:"moderationStatus"`
	ModerationReason string    `bson:"moderationReason,omitempty" json:"moderationReason,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

// UserVote reports which vote set currently holds username. A username is
// a member of at most one of the two sets at any time.
func (d *Debate) UserVote(username string) VoteTarget {
	for _, u := range d.PeopleInFavor {
		if u == username {
			return VoteInFavor
		}
	}
	for _, u := range d.PeopleAgainst {
		if u == username {
			return VoteAgainst
		}
	}
	return VoteNone
}

// FindComment returns the comment with the given id, or nil.
func (d *Debate) FindComment(id string) *Comment {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			return &d.Comments[i]
		}
	}
	return nil
}

// BestArgument returns the most-liked comment, or nil if there are none.
func (d *Debate) BestArgument() *Comment {
	var best *Comment
	for i := range d.Comments {
		if best == nil || d.Comments[i].Likes > best.Likes {
			best = &d.Comments[i]
		}
	}
	return best
}

// ApprovedComments returns the comments visible in a default fetch, with
// censored ones filtered out. Storage order is preserved.
func (d *Debate) ApprovedComments() []Comment {
	approved := make([]Comment, 0, len(d.Comments))
	for _, c := range d.Comments {
		if c.ModerationStatus == ModerationApproved {
			approved = append(approved, c)
		}
	}
	return approved
}

// CensoredContent is the audit record written when the moderation gate
// flags user-submitted text. The flagged entity is still persisted (with
// CENSORED status); this keeps the original text for review.
type CensoredContent struct {
	ID         string    `bson:"_id" json:"id"`
	Type       string    `bson:"type" json:"type"` // "DEBATE" or "COMMENT"
	ContentID  string    `bson:"contentId" json:"contentId"`
	DebateID   string    `bson:"debateId,omitempty" json:"debateId,omitempty"`
	Content    string    `bson:"originalContent" json:"originalContent"`
	Username   string    `bson:"username" json:"username"`
	Reason     string    `bson:"reason" json:"reason"`
	Categories []string  `bson:"categories" json:"categories"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// Category groups debates by topic.
type Category struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}
