package main

import (
	"context"
	"strconv"
	"time"

	"debatehub/config"
	"debatehub/controllers"
	"debatehub/db"
	"debatehub/routes"
	"debatehub/services"
	"debatehub/store/mongostore"
	"debatehub/utils"
	"debatehub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.ConnectMongoDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Info("Connected to MongoDB")

	redisClient, err := db.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, rate limiting disabled")
		redisClient = nil
	}

	stores := mongostore.New(database)

	ctx := context.Background()
	utils.SeedCategories(ctx, stores.Categories, log)

	moderator, err := services.NewGeminiModerator(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Fatalf("Failed to create moderator: %v", err)
	}

	hub := websocket.NewHub(log)
	notifier := services.NewNotifier(stores.Notifications)
	ledger := services.NewActivityLedger(stores.Users)
	badges := services.NewBadgeEngine(stores.Users, stores.Debates, notifier, hub.Broadcast, log)
	debateSvc := services.NewDebateService(stores.Debates, stores.Categories, stores.Censored, moderator, ledger, notifier, badges, log)
	limiter := services.NewRateLimiter(redisClient, time.Second, log)

	router := setupRouter(cfg, routes.Controllers{
		Debates:       controllers.NewDebateController(debateSvc, limiter, log),
		Categories:    controllers.NewCategoryController(stores.Categories, log),
		Notifications: controllers.NewNotificationController(stores.Notifications, log),
		Gamification:  controllers.NewGamificationController(stores.Users, badges, log),
		Users:         controllers.NewUserController(stores.Users, log),
		Hub:           hub,
	})

	port := strconv.Itoa(cfg.Server.Port)
	log.Infof("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, ctrl routes.Controllers) *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	origins := cfg.Server.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	routes.Setup(router, ctrl)
	return router
}
