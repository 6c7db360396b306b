package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradefetcher-api/internal/config"
	"github.com/noah-isme/gradefetcher-api/internal/database"
	"github.com/noah-isme/gradefetcher-api/internal/grader"
	"github.com/noah-isme/gradefetcher-api/internal/handler"
	"github.com/noah-isme/gradefetcher-api/internal/middleware"
	"github.com/noah-isme/gradefetcher-api/internal/models"
	"github.com/noah-isme/gradefetcher-api/internal/publisher"
	"github.com/noah-isme/gradefetcher-api/internal/repository"
	"github.com/noah-isme/gradefetcher-api/internal/router"
	"github.com/noah-isme/gradefetcher-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.GraderBlock{}, &models.GradeResult{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	gradePublisher := publisher.NewNoop()
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		gradePublisher = publisher.NewNATS(natsConn, cfg.GradeSubject, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	blockRepo := repository.NewBlockRepository(db)
	resultRepo := repository.NewGradeResultRepository(db)

	fetchClient := grader.NewClient(grader.Options{
		Proxies:      cfg.Proxies(),
		AuthTimeout:  cfg.AuthTimeout,
		FetchTimeout: cfg.FetchTimeout,
		Logger:       logger,
	})

	blockService := service.NewBlockService(blockRepo, validate, logger)
	gradeService := service.NewGradeService(blockRepo, resultRepo, fetchClient, redisClient, cfg.GradeCacheTTL, gradePublisher, logger)

	blockHandler := handler.NewBlockHandler(blockService, logger)
	gradeHandler := handler.NewGradeHandler(gradeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		BlockHandler:  blockHandler,
		GradeHandler:  gradeHandler,
		JWTMiddleware: middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
