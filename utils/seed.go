package utils

import (
	"context"
	"errors"

	"debatehub/models"
	"debatehub/store"

	"github.com/sirupsen/logrus"
)

var defaultCategories = []models.Category{
	{ID: "philosophy", Name: "Philosophy", Description: "Ethics, metaphysics and the big questions"},
	{ID: "religion", Name: "Religion", Description: "Faith, belief systems and theology"},
	{ID: "science", Name: "Science", Description: "Research, discoveries and scientific method"},
	{ID: "sports", Name: "Sports", Description: "Teams, athletes and competition"},
	{ID: "pop-culture", Name: "Pop Culture", Description: "Movies, music, trends and entertainment"},
	{ID: "history", Name: "History", Description: "Past events and their interpretation"},
	{ID: "economics", Name: "Economics", Description: "Markets, policy and money"},
	{ID: "social", Name: "Social", Description: "Society, relationships and social issues"},
	{ID: "technology", Name: "Technology", Description: "Software, gadgets and the digital world"},
	{ID: "politics", Name: "Politics", Description: "Government, elections and public policy"},
}

// SeedCategories inserts the default category catalogue, skipping the
// ones already present.
func SeedCategories(ctx context.Context, categories store.CategoryStore, log *logrus.Logger) {
	for i := range defaultCategories {
		c := defaultCategories[i]
		if _, err := categories.Get(ctx, c.ID); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			log.WithError(err).WithField("category", c.ID).Warn("failed to check category")
			continue
		}
		if err := categories.Insert(ctx, &c); err != nil {
			log.WithError(err).WithField("category", c.ID).Warn("failed to seed category")
		}
	}
}
