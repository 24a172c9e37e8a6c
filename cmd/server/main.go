package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
	config "github.com/solodevhq/megaphone/configs"
	"github.com/solodevhq/megaphone/internal/api/handlers"
	"github.com/solodevhq/megaphone/internal/api/middleware"
	job "github.com/solodevhq/megaphone/internal/jobs"
	"github.com/solodevhq/megaphone/internal/platform"
	"github.com/solodevhq/megaphone/internal/publisher"
	"github.com/solodevhq/megaphone/internal/queue"
	"github.com/solodevhq/megaphone/internal/repository"
	"github.com/solodevhq/megaphone/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewSocialPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	appRepo := repository.NewAppRepository(db)

	registry := platform.NewRegistry(
		platform.NewTwitterAdapter(),
		platform.NewRedditAdapter(cfg.RedditUserAgent),
		platform.NewDiscordAdapter(),
		platform.NewTiktokAdapter(),
		platform.NewYoutubeAdapter(),
	)

	orchestrator := publisher.NewOrchestrator(registry, time.Duration(cfg.PlatformTimeoutSec)*time.Second)
	aggregator := publisher.NewAggregator(registry)

	mediaService := service.NewMediaService(*cfg)
	postService := service.NewPostService(postRepo, appRepo, mediaService)
	accountService := service.NewAccountService(socialAccountRepo, appRepo, commentRepo)

	var sentimentService service.SentimentService
	if cfg.OpenAIKey != "" {
		sentimentService, err = service.NewSentimentService(*cfg)
		if err != nil {
			log.Printf("Warning: sentiment classification disabled: %v", err)
		}
	}

	publishJob := job.NewPublishJob(cfg, postRepo, socialAccountRepo, orchestrator)
	commentSyncJob := job.NewCommentSyncJob(cfg, socialAccountRepo, commentRepo, aggregator, sentimentService)
	refreshTokenJob := job.NewTokenRefreshJob(cfg, socialAccountRepo)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	rateLimit := middleware.NewRateLimitMiddleware(rdb, 60, time.Minute)

	cronHandler := handlers.NewCronHandler(cfg, publishJob, commentSyncJob)
	cronGroup := app.Group("/cron", rateLimit.RateLimit("cron"))
	cronGroup.Get("/publish-scheduled-posts", cronHandler.PublishScheduledPosts)
	cronGroup.Get("/sync-comments", cronHandler.SyncComments)

	api := app.Group("/api")
	api.Use(rateLimit.RateLimit("api"))
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	account := handlers.NewAccountHandler(accountService)
	api.Get("/accounts", account.ListAccounts)
	api.Post("/accounts/remove", account.RemoveAccount)
	api.Get("/comments", account.ListComments)

	// queue
	queueW := queue.NewQueue(publishJob)

	c := cron.New()
	c.AddFunc("@every 00h05m00s", func() {
		if _, err := publishJob.Run(context.Background()); err != nil {
			log.Printf("Scheduled publish run failed: %v", err)
		}
	})
	c.AddFunc("@every 00h15m00s", func() {
		if _, err := commentSyncJob.Run(context.Background()); err != nil {
			log.Printf("Comment sync run failed: %v", err)
		}
	})
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
