package services

import (
	"context"
	"time"

	"debatehub/models"
	"debatehub/store"

	"github.com/google/uuid"
)

// Notifier delivers user notifications. Creation is fire-and-forget from
// the mutation's point of view; failures are recorded as effects, never
// propagated.
type Notifier interface {
	Create(ctx context.Context, username, message, debateID string) error
}

type storeNotifier struct {
	notifications store.NotificationStore
}

// NewNotifier builds a store-backed notifier.
func NewNotifier(notifications store.NotificationStore) Notifier {
	return &storeNotifier{notifications: notifications}
}

func (n *storeNotifier) Create(ctx context.Context, username, message, debateID string) error {
	return n.notifications.Insert(ctx, &models.Notification{
		ID:        uuid.NewString(),
		Username:  username,
		Message:   message,
		DebateID:  debateID,
		CreatedAt: time.Now(),
	})
}
