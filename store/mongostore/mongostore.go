// Package mongostore implements the store interfaces on MongoDB. The
// commutative set operations map to $addToSet/$pull, counter bumps to
// $inc, and comment replacement to a positional array update, so each
// store call is one atomic document update.
package mongostore

import (
	"context"
	"errors"
	"time"

	"debatehub/models"
	"debatehub/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stores bundles the collection-backed implementations.
type Stores struct {
	Debates       store.DebateStore
	Users         store.UserStore
	Categories    store.CategoryStore
	Notifications store.NotificationStore
	Censored      store.CensoredStore
}

// New wires every store to its collection in db.
func New(db *mongo.Database) *Stores {
	return &Stores{
		Debates:       &debateStore{col: db.Collection("debates")},
		Users:         &userStore{col: db.Collection("users")},
		Categories:    &categoryStore{col: db.Collection("categories")},
		Notifications: &notificationStore{col: db.Collection("notifications")},
		Censored:      &censoredStore{col: db.Collection("censoredContent")},
	}
}

type debateStore struct {
	col *mongo.Collection
}

func (s *debateStore) Insert(ctx context.Context, d *models.Debate) error {
	_, err := s.col.InsertOne(ctx, d)
	return err
}

func (s *debateStore) Get(ctx context.Context, id string) (*models.Debate, error) {
	var d models.Debate
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *debateStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *debateStore) List(ctx context.Context) ([]*models.Debate, error) {
	return s.find(ctx, bson.M{}, nil)
}

func (s *debateStore) ListByCategory(ctx context.Context, category string) ([]*models.Debate, error) {
	return s.find(ctx, bson.M{"category": category}, nil)
}

func (s *debateStore) TopByPopularity(ctx context.Context, limit int64, approvedOnly bool) ([]*models.Debate, error) {
	filter := bson.M{}
	if approvedOnly {
		filter["moderationStatus"] = models.ModerationApproved
	}
	opts := options.Find().SetSort(bson.D{{Key: "popularity", Value: -1}}).SetLimit(limit)
	return s.find(ctx, filter, opts)
}

func (s *debateStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Debate, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.col.Find(ctx, filter, opts)
	} else {
		cursor, err = s.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var debates []*models.Debate
	if err := cursor.All(ctx, &debates); err != nil {
		return nil, err
	}
	return debates, nil
}

func (s *debateStore) ApplyDeltas(ctx context.Context, id string, deltas []store.SetDelta, popularityDelta int) error {
	addToSet := bson.M{}
	pull := bson.M{}
	for _, d := range deltas {
		if len(d.Add) > 0 {
			addToSet[d.Field] = bson.M{"$each": d.Add}
		}
		if len(d.Remove) > 0 {
			pull[d.Field] = bson.M{"$in": d.Remove}
		}
	}

	update := bson.M{}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}
	if popularityDelta != 0 {
		update["$inc"] = bson.M{"popularity": popularityDelta}
	}
	if len(update) == 0 {
		return nil
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *debateStore) AppendComment(ctx context.Context, id string, c models.Comment, popularityDelta int) error {
	update := bson.M{"$push": bson.M{"comments": c}}
	if popularityDelta != 0 {
		update["$inc"] = bson.M{"popularity": popularityDelta}
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *debateStore) UpdateComment(ctx context.Context, id string, c models.Comment) error {
	// Positional update: only the matching array element is replaced, so
	// concurrent reactions on other comments cannot be lost.
	filter := bson.M{"_id": id, "comments.idComment": c.ID}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"comments.$": c}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *debateStore) SetFields(ctx context.Context, id string, fields map[string]interface{}) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *debateStore) CountByOwner(ctx context.Context, username string) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"username": username})
}

func (s *debateStore) CountByOwnerAndCategory(ctx context.Context, username, category string) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"username": username, "category": category})
}

func (s *debateStore) CountVotesBy(ctx context.Context, username string) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"peopleInFavor": username},
		bson.M{"peopleAgainst": username},
	}}
	return s.col.CountDocuments(ctx, filter)
}

type userStore struct {
	col *mongo.Collection
}

func (s *userStore) Insert(ctx context.Context, u *models.User) error {
	_, err := s.col.InsertOne(ctx, u)
	return err
}

func (s *userStore) Get(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userStore) IncrementActivity(ctx context.Context, username string, fields map[string]float64) error {
	inc := bson.M{}
	for field, delta := range fields {
		inc[field] = delta
	}
	update := bson.M{"$inc": inc, "$set": bson.M{"updatedAt": time.Now()}}
	res, err := s.col.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *userStore) AwardBadge(ctx context.Context, username string, award models.BadgeAward, xp float64) (bool, error) {
	// The $ne guard makes award-or-skip a single conditional update, so
	// concurrent evaluations for the same user cannot double-award.
	filter := bson.M{"username": username, "badges.badgeId": bson.M{"$ne": award.BadgeID}}
	update := bson.M{
		"$push": bson.M{"badges": award},
		"$inc":  bson.M{"activity.score": xp},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}
	n, err := s.col.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, store.ErrNotFound
	}
	return false, nil
}

type categoryStore struct {
	col *mongo.Collection
}

func (s *categoryStore) Insert(ctx context.Context, c *models.Category) error {
	_, err := s.col.InsertOne(ctx, c)
	return err
}

func (s *categoryStore) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *categoryStore) List(ctx context.Context) ([]*models.Category, error) {
	cursor, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type notificationStore struct {
	col *mongo.Collection
}

func (s *notificationStore) Insert(ctx context.Context, n *models.Notification) error {
	_, err := s.col.InsertOne(ctx, n)
	return err
}

func (s *notificationStore) ListByUser(ctx context.Context, username string) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type censoredStore struct {
	col *mongo.Collection
}

func (s *censoredStore) Insert(ctx context.Context, c *models.CensoredContent) error {
	_, err := s.col.InsertOne(ctx, c)
	return err
}
