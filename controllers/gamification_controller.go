package controllers

import (
	"errors"
	"net/http"

	"debatehub/services"
	"debatehub/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GamificationController exposes badge definitions, per-user awards and
// activity counters.
type GamificationController struct {
	users  store.UserStore
	badges *services.BadgeEngine
	log    *logrus.Logger
}

func NewGamificationController(users store.UserStore, badges *services.BadgeEngine, log *logrus.Logger) *GamificationController {
	return &GamificationController{users: users, badges: badges, log: log}
}

// ListBadgeDefinitions handles GET /badges
func (gc *GamificationController) ListBadgeDefinitions(c *gin.Context) {
	c.JSON(http.StatusOK, services.Definitions())
}

// GetUserProfile handles GET /users/:username/profile
func (gc *GamificationController) GetUserProfile(c *gin.Context) {
	user, err := gc.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		respondError(c, gc.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// EvaluateBadges handles POST /users/:username/badges/evaluate. Badge
// evaluation runs after every mutation anyway; this endpoint lets a
// client force a re-check.
func (gc *GamificationController) EvaluateBadges(c *gin.Context) {
	awarded, err := gc.badges.Evaluate(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, gc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"awarded": awarded})
}
