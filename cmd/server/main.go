package main

import (
	"context"
	"net/http"
	"time"

	"mentorlink/backend/internal/api/handler"
	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config, logger *zap.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect PostgreSQL", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to connect Redis", zap.Error(err))
	}

	err = db.AutoMigrate(
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	logger.Info("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, rdb := setupDependencies(cfg, logger)
	s := storage.NewStorageService(db, rdb)

	hub := chathub.NewManagerService(s, logger)
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, []byte(cfg.JWTSecret), logger)

	r.GET("/token", h.GetToken)
	r.GET("/ws", h.ServeWebSocket)

	authed := r.Group("/", h.AuthRequired())
	authed.GET("/conversations", h.ListConversations)
	authed.POST("/conversations", h.CreateConversation)
	authed.GET("/conversations/:id/messages", h.ListMessages)
	authed.POST("/messages", h.CreateMessage)

	server := &http.Server{
		Addr:           cfg.ServerAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logger.Info("starting mentorlink messaging service", zap.String("addr", cfg.ServerAddr))
	logger.Fatal("server stopped", zap.Error(server.ListenAndServe()))
}
