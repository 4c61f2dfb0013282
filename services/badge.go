package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"debatehub/models"
	"debatehub/store"

	"github.com/sirupsen/logrus"
)

// badgeDefinitions is the fixed rule table, loaded once and never
// mutated. Evaluation walks it in order, which decides which badge lands
// first when several become eligible in the same call.
var badgeDefinitions = []models.BadgeDefinition{
	// Debate creation tiers
	{ID: "create1", Name: "Idea Starter", Description: "You created your first debate.", XP: 5, Metric: models.MetricDebatesCreated, Threshold: 1},
	{ID: "create5", Name: "Content Builder", Description: "You have created 5 debates.", XP: 6, Metric: models.MetricDebatesCreated, Threshold: 5},
	{ID: "create10", Name: "Active Forum", Description: "You created 10 debates.", XP: 7, Metric: models.MetricDebatesCreated, Threshold: 10},
	{ID: "create20", Name: "Influential Voice", Description: "You created 20 debates.", XP: 8, Metric: models.MetricDebatesCreated, Threshold: 20},
	// Voting tiers
	{ID: "vote1", Name: "Responsible Voter", Description: "You cast your first vote.", XP: 5, Metric: models.MetricVotesCast, Threshold: 1},
	{ID: "vote10", Name: "Consistent Critic", Description: "You have voted in 10 debates.", XP: 6, Metric: models.MetricVotesCast, Threshold: 10},
	{ID: "vote50", Name: "Fair Balance", Description: "You reached 50 votes in debates.", XP: 7, Metric: models.MetricVotesCast, Threshold: 50},
	{ID: "vote100", Name: "Vote Master", Description: "You have voted 100 times.", XP: 8, Metric: models.MetricVotesCast, Threshold: 100},
	// Comments and replies
	{ID: "comment1", Name: "First Comment", Description: "You posted your first comment.", XP: 5, Metric: models.MetricComments, Threshold: 1},
	{ID: "comment10", Name: "Regular Conversationalist", Description: "You left 10 comments.", XP: 6, Metric: models.MetricComments, Threshold: 10},
	{ID: "reply10", Name: "Dialogist", Description: "You replied to 10 comments.", XP: 7, Metric: models.MetricReplies, Threshold: 10},
	{ID: "reply20", Name: "Seasoned Interlocutor", Description: "You replied to 20 comments.", XP: 8, Metric: models.MetricReplies, Threshold: 20},
	// Reactions
	{ID: "react1", Name: "Personal Opinion", Description: "You gave your first like or dislike.", XP: 5, Metric: models.MetricReactions, Threshold: 1},
	{ID: "react10", Name: "Firm Support", Description: "You have given 10 reactions.", XP: 6, Metric: models.MetricReactions, Threshold: 10},
	{ID: "react20", Name: "Avid Reactor", Description: "You reached 20 reactions.", XP: 7, Metric: models.MetricReactions, Threshold: 20},
	// Category themes
	{ID: "catPhilosophy", Name: "Philosopher", Description: "You published 5 debates in Philosophy.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "philosophy", Threshold: 5},
	{ID: "catReligion", Name: "Theologian", Description: "You published 5 debates in Religion.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "religion", Threshold: 5},
	{ID: "catScience", Name: "Researcher", Description: "You published 5 debates in Science.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "science", Threshold: 5},
	{ID: "catSports", Name: "Sports Champion", Description: "You published 5 debates in Sports.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "sports", Threshold: 5},
	{ID: "catPopCulture", Name: "Culture Critic", Description: "You published 5 debates in Pop Culture.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "pop-culture", Threshold: 5},
	{ID: "catHistory", Name: "Chronicler", Description: "You published 5 debates in History.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "history", Threshold: 5},
	{ID: "catEconomics", Name: "Economist", Description: "You published 5 debates in Economics.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "economics", Threshold: 5},
	{ID: "catSocial", Name: "Social Activist", Description: "You published 5 debates in Social.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "social", Threshold: 5},
	{ID: "catTechnology", Name: "Tech Visionary", Description: "You published 5 debates in Technology.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "technology", Threshold: 5},
	{ID: "catPolitics", Name: "Digital Politician", Description: "You published 5 debates in Politics.", XP: 9, Metric: models.MetricDebatesByCategory, Category: "politics", Threshold: 5},
}

// BadgeEngine evaluates the rule table against a user's activity metrics
// and awards badges exactly once each.
type BadgeEngine struct {
	users     store.UserStore
	debates   store.DebateStore
	notifier  Notifier
	broadcast func(models.GamificationEvent)
	log       *logrus.Logger
}

// NewBadgeEngine wires the engine. broadcast may be nil.
func NewBadgeEngine(users store.UserStore, debates store.DebateStore, notifier Notifier, broadcast func(models.GamificationEvent), log *logrus.Logger) *BadgeEngine {
	return &BadgeEngine{
		users:     users,
		debates:   debates,
		notifier:  notifier,
		broadcast: broadcast,
		log:       log,
	}
}

// Definitions returns a copy of the rule table, in evaluation order.
func Definitions() []models.BadgeDefinition {
	defs := make([]models.BadgeDefinition, len(badgeDefinitions))
	copy(defs, badgeDefinitions)
	return defs
}

// Evaluate loads the user's counters and owned badges and awards every
// rule that newly qualifies, in table order. Re-invocation without new
// activity changes nothing; concurrent invocations are kept from
// double-awarding by the store's conditional award.
func (e *BadgeEngine) Evaluate(ctx context.Context, username string) ([]models.BadgeAward, error) {
	user, err := e.users.Get(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	// Counts derived from the debate collection are computed lazily and
	// at most once per call.
	var debatesCount, votesCount int64
	debatesCounted, votesCounted := false, false

	var awarded []models.BadgeAward
	for _, def := range badgeDefinitions {
		if user.HasBadge(def.ID) {
			continue
		}

		var meets bool
		switch def.Metric {
		case models.MetricDebatesCreated:
			if !debatesCounted {
				if debatesCount, err = e.debates.CountByOwner(ctx, username); err != nil {
					return awarded, err
				}
				debatesCounted = true
			}
			meets = debatesCount >= def.Threshold
		case models.MetricVotesCast:
			if !votesCounted {
				if votesCount, err = e.debates.CountVotesBy(ctx, username); err != nil {
					return awarded, err
				}
				votesCounted = true
			}
			meets = votesCount >= def.Threshold
		case models.MetricComments:
			meets = int64(user.Activity.Interactions.Comments) >= def.Threshold
		case models.MetricReplies:
			meets = int64(user.Activity.Interactions.Replies) >= def.Threshold
		case models.MetricReactions:
			meets = int64(user.ReactionsCount()) >= def.Threshold
		case models.MetricDebatesByCategory:
			n, err := e.debates.CountByOwnerAndCategory(ctx, username, def.Category)
			if err != nil {
				return awarded, err
			}
			meets = n >= def.Threshold
		default:
			e.log.WithField("badgeId", def.ID).Warn("unknown badge metric")
		}
		if !meets {
			continue
		}

		award := models.BadgeAward{BadgeID: def.ID, AwardedAt: time.Now()}
		ok, err := e.users.AwardBadge(ctx, username, award, def.XP)
		if err != nil {
			return awarded, fmt.Errorf("failed to award badge %s: %w", def.ID, err)
		}
		if !ok {
			// Lost the race to a concurrent evaluation.
			continue
		}
		awarded = append(awarded, award)

		e.log.WithFields(logrus.Fields{
			"badgeId":  def.ID,
			"badge":    def.Name,
			"username": username,
		}).Info("badge awarded")

		message := fmt.Sprintf("You earned the %q badge! %s", def.Name, def.Description)
		if err := e.notifier.Create(ctx, username, message, ""); err != nil {
			e.log.WithError(err).WithField("badgeId", def.ID).Warn("failed to notify badge award")
		}

		if e.broadcast != nil {
			e.broadcast(models.GamificationEvent{
				Type:      "badge_awarded",
				Username:  username,
				BadgeID:   def.ID,
				BadgeName: def.Name,
				XP:        def.XP,
				Timestamp: time.Now(),
			})
		}
	}
	return awarded, nil
}
