package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopsafety/quiz-service/internal/cache"
	"github.com/shopsafety/quiz-service/internal/config"
	"github.com/shopsafety/quiz-service/internal/events"
	"github.com/shopsafety/quiz-service/internal/handlers"
	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories/postgres"
	"github.com/shopsafety/quiz-service/internal/services"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/shopsafety/quiz-service/internal/validator"
	"github.com/shopsafety/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Cohort{},
		&models.User{},
		&models.Test{},
		&models.Question{},
		&models.Attempt{},
		&models.FailedQuestion{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var catalog services.CatalogCache
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without catalog cache", "error", err)
	} else {
		defer redisClient.Close()
		catalog = cache.NewTestCatalogCache(redisClient, logger, 5*time.Minute)
	}

	var publisher events.EventPublisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.EventsTopic,
			Logger:       utils.ToSlogLogger(logger),
		})
		if err != nil {
			log.Fatalf("failed to create event publisher: %v", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	repo := postgres.NewRepository(db)
	manager := services.NewManager(services.ManagerConfig{
		Repo:      repo,
		Logger:    logger,
		Validator: validator.New(),
		Publisher: publisher,
		Catalog:   catalog,
		JWTSecret: cfg.JWTSecret,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(manager, logger, cfg.JWTSecret)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
