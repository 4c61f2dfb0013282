// Package memstore is an in-memory implementation of the store
// interfaces, used in tests and local development.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"debatehub/models"
	"debatehub/store"

	"github.com/google/uuid"
)

// Store keeps every collection in process memory behind one mutex. Each
// store method is atomic, matching the per-document atomicity the real
// document store provides.
type Store struct {
	mu            sync.RWMutex
	debates       map[string]*models.Debate
	debateOrder   []string
	users         map[string]*models.User
	categories    map[string]*models.Category
	notifications map[string]*models.Notification
	notifOrder    []string
	censored      []*models.CensoredContent
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		debates:       make(map[string]*models.Debate),
		users:         make(map[string]*models.User),
		categories:    make(map[string]*models.Category),
		notifications: make(map[string]*models.Notification),
	}
}

func copyDebate(d *models.Debate) *models.Debate {
	cp := *d
	cp.Refs = append([]string(nil), d.Refs...)
	cp.PeopleInFavor = append([]string(nil), d.PeopleInFavor...)
	cp.PeopleAgainst = append([]string(nil), d.PeopleAgainst...)
	cp.Followers = append([]string(nil), d.Followers...)
	cp.Comments = make([]models.Comment, len(d.Comments))
	for i, c := range d.Comments {
		cc := c
		cc.Refs = append([]string(nil), c.Refs...)
		cc.PeopleInFavor = append([]string(nil), c.PeopleInFavor...)
		cc.PeopleAgainst = append([]string(nil), c.PeopleAgainst...)
		cp.Comments[i] = cc
	}
	return &cp
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func addToSet(set []string, values []string) []string {
	for _, v := range values {
		if !contains(set, v) {
			set = append(set, v)
		}
	}
	return set
}

func removeFromSet(set []string, values []string) []string {
	out := set[:0]
	for _, s := range set {
		if !contains(values, s) {
			out = append(out, s)
		}
	}
	return out
}

// === DebateStore ===

func (s *Store) Insert(ctx context.Context, d *models.Debate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debates[d.ID] = copyDebate(d)
	s.debateOrder = append(s.debateOrder, d.ID)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Debate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.debates[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyDebate(d), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debates[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.debates, id)
	for i, did := range s.debateOrder {
		if did == id {
			s.debateOrder = append(s.debateOrder[:i], s.debateOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*models.Debate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Debate, 0, len(s.debateOrder))
	for _, id := range s.debateOrder {
		out = append(out, copyDebate(s.debates[id]))
	}
	return out, nil
}

func (s *Store) ListByCategory(ctx context.Context, category string) ([]*models.Debate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Debate
	for _, id := range s.debateOrder {
		if d := s.debates[id]; d.Category == category {
			out = append(out, copyDebate(d))
		}
	}
	return out, nil
}

func (s *Store) TopByPopularity(ctx context.Context, limit int64, approvedOnly bool) ([]*models.Debate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Debate
	for _, id := range s.debateOrder {
		d := s.debates[id]
		if approvedOnly && d.ModerationStatus != models.ModerationApproved {
			continue
		}
		out = append(out, copyDebate(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ApplyDeltas(ctx context.Context, id string, deltas []store.SetDelta, popularityDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, delta := range deltas {
		var set *[]string
		switch delta.Field {
		case store.FieldInFavor:
			set = &d.PeopleInFavor
		case store.FieldAgainst:
			set = &d.PeopleAgainst
		case store.FieldFollowers:
			set = &d.Followers
		default:
			continue
		}
		*set = removeFromSet(*set, delta.Remove)
		*set = addToSet(*set, delta.Add)
	}
	d.Popularity += popularityDelta
	return nil
}

func (s *Store) AppendComment(ctx context.Context, id string, c models.Comment, popularityDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return store.ErrNotFound
	}
	d.Comments = append(d.Comments, c)
	d.Popularity += popularityDelta
	return nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return store.ErrNotFound
	}
	for i := range d.Comments {
		if d.Comments[i].ID == c.ID {
			d.Comments[i] = c
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SetFields(ctx context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return store.ErrNotFound
	}
	for field, value := range fields {
		switch field {
		case "nameDebate":
			d.Title = value.(string)
		case "argument":
			d.Body = value.(string)
		case "category":
			d.Category = value.(string)
		case "image":
			d.Image = value.(string)
		case "refs":
			d.Refs = append([]string(nil), value.([]string)...)
		}
	}
	return nil
}

func (s *Store) CountByOwner(ctx context.Context, username string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.debates {
		if d.Owner == username {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountByOwnerAndCategory(ctx context.Context, username, category string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.debates {
		if d.Owner == username && d.Category == category {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountVotesBy(ctx context.Context, username string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.debates {
		if contains(d.PeopleInFavor, username) || contains(d.PeopleAgainst, username) {
			n++
		}
	}
	return n, nil
}

// === UserStore ===

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	cp.Badges = append([]models.BadgeAward(nil), u.Badges...)
	if cp.Activity.Tags != nil {
		tags := make(map[string]int, len(u.Activity.Tags))
		for k, v := range u.Activity.Tags {
			tags[k] = v
		}
		cp.Activity.Tags = tags
	}
	s.users[u.Username] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	cp.Badges = append([]models.BadgeAward(nil), u.Badges...)
	return &cp, nil
}

func (s *Store) IncrementActivity(ctx context.Context, username string, fields map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return store.ErrNotFound
	}
	for field, delta := range fields {
		switch field {
		case "activity.created":
			u.Activity.Created += int(delta)
		case "activity.views":
			u.Activity.Views += int(delta)
		case "activity.interactions.comments":
			u.Activity.Interactions.Comments += int(delta)
		case "activity.interactions.replies":
			u.Activity.Interactions.Replies += int(delta)
		case "activity.interactions.likes":
			u.Activity.Interactions.Likes += int(delta)
		case "activity.interactions.dislikes":
			u.Activity.Interactions.Dislikes += int(delta)
		case "activity.score":
			u.Activity.Score += delta
		default:
			if tag, ok := tagCategory(field); ok {
				if u.Activity.Tags == nil {
					u.Activity.Tags = make(map[string]int)
				}
				u.Activity.Tags[tag] += int(delta)
			}
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func tagCategory(field string) (string, bool) {
	const prefix = "activity.tags."
	if len(field) > len(prefix) && field[:len(prefix)] == prefix {
		return field[len(prefix):], true
	}
	return "", false
}

func (s *Store) AwardBadge(ctx context.Context, username string, award models.BadgeAward, xp float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return false, store.ErrNotFound
	}
	for _, b := range u.Badges {
		if b.BadgeID == award.BadgeID {
			return false, nil
		}
	}
	u.Badges = append(u.Badges, award)
	u.Activity.Score += xp
	u.UpdatedAt = time.Now()
	return true, nil
}

// === CategoryStore ===

func (s *Store) InsertCategory(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// === NotificationStore ===

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cp := *n
	s.notifications[n.ID] = &cp
	s.notifOrder = append(s.notifOrder, n.ID)
	return nil
}

func (s *Store) ListNotificationsByUser(ctx context.Context, username string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, id := range s.notifOrder {
		if n := s.notifications[id]; n.Username == username {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	n.Read = true
	return nil
}

// === CensoredStore ===

func (s *Store) InsertCensored(ctx context.Context, c *models.CensoredContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	cp.Categories = append([]string(nil), c.Categories...)
	s.censored = append(s.censored, &cp)
	return nil
}

// Censored returns a snapshot of the audit records, oldest first.
func (s *Store) Censored() []*models.CensoredContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CensoredContent, 0, len(s.censored))
	for _, c := range s.censored {
		cp := *c
		out = append(out, &cp)
	}
	return out
}
