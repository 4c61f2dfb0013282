package memstore

import (
	"context"

	"debatehub/models"
	"debatehub/store"
)

// Debates exposes the store through the DebateStore interface.
func (s *Store) Debates() store.DebateStore { return s }

// Users exposes the store through the UserStore interface.
func (s *Store) Users() store.UserStore { return userStore{s} }

// Categories exposes the store through the CategoryStore interface.
func (s *Store) Categories() store.CategoryStore { return categoryStore{s} }

// Notifications exposes the store through the NotificationStore interface.
func (s *Store) Notifications() store.NotificationStore { return notificationStore{s} }

// CensoredContent exposes the store through the CensoredStore interface.
func (s *Store) CensoredContent() store.CensoredStore { return censoredStore{s} }

type userStore struct{ s *Store }

func (u userStore) Insert(ctx context.Context, user *models.User) error {
	return u.s.InsertUser(ctx, user)
}

func (u userStore) Get(ctx context.Context, username string) (*models.User, error) {
	return u.s.GetUser(ctx, username)
}

func (u userStore) IncrementActivity(ctx context.Context, username string, fields map[string]float64) error {
	return u.s.IncrementActivity(ctx, username, fields)
}

func (u userStore) AwardBadge(ctx context.Context, username string, award models.BadgeAward, xp float64) (bool, error) {
	return u.s.AwardBadge(ctx, username, award, xp)
}

type categoryStore struct{ s *Store }

func (c categoryStore) Insert(ctx context.Context, cat *models.Category) error {
	return c.s.InsertCategory(ctx, cat)
}

func (c categoryStore) Get(ctx context.Context, id string) (*models.Category, error) {
	return c.s.GetCategory(ctx, id)
}

func (c categoryStore) List(ctx context.Context) ([]*models.Category, error) {
	return c.s.ListCategories(ctx)
}

type notificationStore struct{ s *Store }

func (n notificationStore) Insert(ctx context.Context, notif *models.Notification) error {
	return n.s.InsertNotification(ctx, notif)
}

func (n notificationStore) ListByUser(ctx context.Context, username string) ([]*models.Notification, error) {
	return n.s.ListNotificationsByUser(ctx, username)
}

func (n notificationStore) MarkRead(ctx context.Context, id string) error {
	return n.s.MarkNotificationRead(ctx, id)
}

type censoredStore struct{ s *Store }

func (c censoredStore) Insert(ctx context.Context, record *models.CensoredContent) error {
	return c.s.InsertCensored(ctx, record)
}
