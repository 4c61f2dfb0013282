package routes

import (
	"debatehub/controllers"
	"debatehub/websocket"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Debates       *controllers.DebateController
	Categories    *controllers.CategoryController
	Notifications *controllers.NotificationController
	Gamification  *controllers.GamificationController
	Users         *controllers.UserController
	Hub           *websocket.Hub
}

// Setup registers all routes on the engine.
func Setup(router *gin.Engine, ctrl Controllers) {
	debates := router.Group("/debates")
	{
		debates.POST("", ctrl.Debates.CreateDebate)
		debates.GET("/search", ctrl.Debates.Search)
		debates.GET("/popular", ctrl.Debates.Popular)
		debates.GET("/:id", ctrl.Debates.GetDebate)
		debates.PUT("/:id", ctrl.Debates.UpdateDebate)
		debates.DELETE("/:id", ctrl.Debates.DeleteDebate)
		debates.POST("/:id/vote", ctrl.Debates.Vote)
		debates.POST("/:id/follow", ctrl.Debates.Follow)
		debates.POST("/:id/unfollow", ctrl.Debates.Unfollow)
		debates.POST("/:id/comments", ctrl.Debates.AddComment)
		debates.POST("/:id/comments/:commentId/replies", ctrl.Debates.AddReply)
		debates.POST("/:id/comments/:commentId/react", ctrl.Debates.React)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", ctrl.Categories.ListCategories)
		categories.GET("/:id", ctrl.Categories.GetCategory)
		categories.GET("/:id/debates", ctrl.Debates.ListByCategory)
	}

	users := router.Group("/users")
	{
		users.POST("", ctrl.Users.CreateUser)
		users.GET("/:username/profile", ctrl.Gamification.GetUserProfile)
		users.GET("/:username/notifications", ctrl.Notifications.ListNotifications)
		users.POST("/:username/badges/evaluate", ctrl.Gamification.EvaluateBadges)
	}

	router.PUT("/notifications/:id/read", ctrl.Notifications.MarkRead)
	router.GET("/badges", ctrl.Gamification.ListBadgeDefinitions)
	router.GET("/ws/gamification", ctrl.Hub.Handler)
}
