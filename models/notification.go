package models

import "time"

// Notification is a message delivered to a user's inbox, optionally
// pointing at the debate that triggered it.
type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Message   string    `bson:"message" json:"message"`
	DebateID  string    `bson:"debateId,omitempty" json:"debateId,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
