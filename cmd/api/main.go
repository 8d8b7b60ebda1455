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
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/config"
	"github.com/noah-isme/tulis-go-api/internal/database"
	"github.com/noah-isme/tulis-go-api/internal/handler"
	"github.com/noah-isme/tulis-go-api/internal/middleware"
	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/internal/router"
	"github.com/noah-isme/tulis-go-api/internal/service"
	"github.com/noah-isme/tulis-go-api/internal/worker"
	"github.com/noah-isme/tulis-go-api/pkg/ai"
	cloud "github.com/noah-isme/tulis-go-api/pkg/cloudinary"
	"github.com/noah-isme/tulis-go-api/pkg/tts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Submission{},
		&models.Mistake{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Draft{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	grader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create grader: %v", err)
	}

	synthesizer, err := tts.NewCloudflareSynthesizer(tts.CloudflareConfig{
		AccountID: cfg.NarrationAccountID,
		APIToken:  cfg.NarrationAPIToken,
		Timeout:   cfg.NarrationTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create synthesizer: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	mistakeRepo := repository.NewMistakeRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, validate, logger)
	statsService := service.NewStatsService(statsRepo, redisClient, cfg.StatsCacheTTL, logger)
	achievementService := service.NewAchievementService(achievementRepo, natsConn, logger)
	gradingService := service.NewGradingService(submissionRepo, grader, achievementService, statsService, cfg.GradingTimeout, logger)

	dispatcher := worker.NewDispatcher(gradingService, cfg.GradingWorkers, cfg.GradingQueueSize, logger)

	narrationService := service.NewNarrationService(questionRepo, synthesizer, uploader,
		cfg.NarrationMaxAttempts, cfg.NarrationRetryDelay, cfg.NarrationTimeout, logger)
	questionService := service.NewQuestionService(questionRepo, draftRepo, narrationService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, draftRepo, dispatcher, validate, logger)
	mistakeService := service.NewMistakeService(mistakeRepo)
	seedService := service.NewSeedService(questionRepo, achievementRepo, cfg.SeedToken, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	questionHandler := handler.NewQuestionHandler(questionService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	mistakeHandler := handler.NewMistakeHandler(mistakeService, logger)
	statsHandler := handler.NewStatsHandler(statsService, achievementService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	sweeper := worker.NewSweeper(submissionRepo, dispatcher, cfg.GradingSweepInterval, cfg.GradingSweepMinAge, logger)
	sweeper.Start(workerCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		QuestionHandler:   questionHandler,
		SubmissionHandler: submissionHandler,
		MistakeHandler:    mistakeHandler,
		StatsHandler:      statsHandler,
		SeedHandler:       seedHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, dispatcher, stopWorkers)
}

func waitForShutdown(app *fiber.App, dispatcher *worker.Dispatcher, stopWorkers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	stopWorkers()
	dispatcher.Wait()

	log.Println("server stopped")
}
