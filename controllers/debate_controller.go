package controllers

import (
	"errors"
	"net/http"

	"debatehub/models"
	"debatehub/services"
	"debatehub/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DebateController exposes the debate mutation protocol over HTTP.
type DebateController struct {
	svc     *services.DebateService
	limiter *services.RateLimiter
	log     *logrus.Logger
}

func NewDebateController(svc *services.DebateService, limiter *services.RateLimiter, log *logrus.Logger) *DebateController {
	return &DebateController{svc: svc, limiter: limiter, log: log}
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var rejected *services.ModerationRejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Content rejected by moderation",
			"reason":            rejected.Reason,
			"flaggedCategories": rejected.Categories,
		})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMustVote):
		c.JSON(http.StatusForbidden, gin.H{"error": "You must vote on the debate before commenting"})
	case errors.Is(err, services.ErrReplyDepth):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Replies to replies are not allowed"})
	case errors.Is(err, services.ErrDebateNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func showCensored(c *gin.Context) bool {
	return c.Query("showCensored") == "true"
}

// CreateDebate handles POST /debates
func (dc *DebateController) CreateDebate(c *gin.Context) {
	var req services.CreateDebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	debate, _, err := dc.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusCreated, debate)
}

// GetDebate handles GET /debates/:id
func (dc *DebateController) GetDebate(c *gin.Context) {
	view, _, err := dc.svc.Get(c.Request.Context(), c.Param("id"), showCensored(c), c.Query("viewer"))
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateDebate handles PUT /debates/:id
func (dc *DebateController) UpdateDebate(c *gin.Context) {
	var req services.UpdateDebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	debate, err := dc.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, debate)
}

// DeleteDebate handles DELETE /debates/:id
func (dc *DebateController) DeleteDebate(c *gin.Context) {
	if err := dc.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Debate deleted"})
}

// VoteRequest is the body of POST /debates/:id/vote
type VoteRequest struct {
	Username string `json:"username" binding:"required"`
	Target   string `json:"target" binding:"required"`
}

// Vote handles POST /debates/:id/vote
func (dc *DebateController) Vote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	debate, _, err := dc.svc.Vote(c.Request.Context(), c.Param("id"), req.Username, models.VoteTarget(req.Target))
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, debate)
}

// AddComment handles POST /debates/:id/comments
func (dc *DebateController) AddComment(c *gin.Context) {
	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	comment, _, err := dc.svc.AddComment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// AddReply handles POST /debates/:id/comments/:commentId/replies
func (dc *DebateController) AddReply(c *gin.Context) {
	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	comment, _, err := dc.svc.AddReply(c.Request.Context(), c.Param("id"), c.Param("commentId"), req)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ReactRequest is the body of POST /debates/:id/comments/:commentId/react
type ReactRequest struct {
	Username string `json:"username" binding:"required"`
	Action   string `json:"action" binding:"required"`
	Method   string `json:"method" binding:"required"`
}

// React handles POST /debates/:id/comments/:commentId/react
func (dc *DebateController) React(c *gin.Context) {
	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !dc.limiter.Allow(c.Request.Context(), req.Username, "react") {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many reactions, slow down"})
		return
	}

	comment, _, err := dc.svc.React(c.Request.Context(), c.Param("id"), c.Param("commentId"), req.Username, req.Action, req.Method)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// FollowRequest is the body of the follow/unfollow endpoints.
type FollowRequest struct {
	Username string `json:"username" binding:"required"`
}

// Follow handles POST /debates/:id/follow
func (dc *DebateController) Follow(c *gin.Context) {
	dc.updateFollow(c, true)
}

// Unfollow handles POST /debates/:id/unfollow
func (dc *DebateController) Unfollow(c *gin.Context) {
	dc.updateFollow(c, false)
}

func (dc *DebateController) updateFollow(c *gin.Context, follow bool) {
	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !dc.limiter.Allow(c.Request.Context(), req.Username, "follow") {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many follow changes, slow down"})
		return
	}

	var err error
	if follow {
		err = dc.svc.Follow(c.Request.Context(), c.Param("id"), req.Username)
	} else {
		err = dc.svc.Unfollow(c.Request.Context(), c.Param("id"), req.Username)
	}
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Followers updated"})
}

// ListByCategory handles GET /categories/:id/debates?sort=&search=
func (dc *DebateController) ListByCategory(c *gin.Context) {
	sortMode := store.DebateSort(c.DefaultQuery("sort", string(store.SortActive)))
	debates, err := dc.svc.ListByCategory(c.Request.Context(), c.Param("id"), sortMode, c.Query("search"), showCensored(c))
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, debates)
}

// Search handles GET /debates/search?q=
func (dc *DebateController) Search(c *gin.Context) {
	debates, err := dc.svc.Search(c.Request.Context(), c.Query("q"), showCensored(c))
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, debates)
}

// Popular handles GET /debates/popular
func (dc *DebateController) Popular(c *gin.Context) {
	debates, err := dc.svc.Popular(c.Request.Context(), showCensored(c))
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, debates)
}
