package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"epicmail-service/internal/auth"
	"epicmail-service/internal/config"
	"epicmail-service/internal/db"
	"epicmail-service/internal/handlers"
	"epicmail-service/internal/middleware"
	"epicmail-service/internal/observability"
	"epicmail-service/internal/rabbitmq"
	"epicmail-service/internal/repositories"
	"epicmail-service/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, cfg.AMQP.RoutingKey, cfg.App.Name, cfg.App.Environment)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	groupMessageRepo := repositories.NewGroupMessageRepo(database)

	authHandler := handlers.NewAuthHandler(userRepo, issuer, audit)
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, audit)
	groupHandler := handlers.NewGroupHandler(groupRepo, groupMessageRepo, userRepo, audit)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(issuer)

	api.POST("/messages", authMiddleware, messageHandler.CreateMessage)
	api.GET("/messages", authMiddleware, messageHandler.ListReceived)
	api.GET("/messages/sent", authMiddleware, messageHandler.ListSent)
	api.GET("/messages/unread", authMiddleware, messageHandler.ListUnread)
	api.GET("/messages/:message_id", authMiddleware, messageHandler.GetMessage)
	api.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)

	api.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	api.GET("/groups", authMiddleware, groupHandler.ListGroups)
	api.PATCH("/groups/:group_id/name", authMiddleware, groupHandler.RenameGroup)
	api.DELETE("/groups/:group_id", authMiddleware, groupHandler.DeleteGroup)
	api.POST("/groups/:group_id/users", authMiddleware, groupHandler.AddMember)
	api.POST("/groups/:group_id/messages", authMiddleware, groupHandler.PostGroupMessage)
	api.GET("/groups/:group_id/messages", authMiddleware, groupHandler.GetGroupMessages)

	handlers.RegisterDebugRoutes(router, audit, cfg.App.Debug)

	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
