package controllers

import (
	"net/http"
	"time"

	"debatehub/models"
	"debatehub/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserController handles user registration. Authentication is delegated
// to the identity provider in front of this service; here a user is just
// a username plus its activity ledger.
type UserController struct {
	users store.UserStore
	log   *logrus.Logger
}

func NewUserController(users store.UserStore, log *logrus.Logger) *UserController {
	return &UserController{users: users, log: log}
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Username  string   `json:"username" binding:"required"`
	Email     string   `json:"email"`
	AvatarID  string   `json:"avatarId"`
	Interests []string `json:"interests"`
}

// CreateUser handles POST /users
func (uc *UserController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	now := time.Now()
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		AvatarID:  req.AvatarID,
		Interests: req.Interests,
		Badges:    []models.BadgeAward{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.users.Insert(c.Request.Context(), user); err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
