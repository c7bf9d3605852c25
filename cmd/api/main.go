package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/ashu2906-design/habit-flow/internal/adapters/cache"
	adapterHTTP "github.com/ashu2906-design/habit-flow/internal/adapters/handler/http"
	"github.com/ashu2906-design/habit-flow/internal/adapters/notifier"
	"github.com/ashu2906-design/habit-flow/internal/adapters/repository"
	"github.com/ashu2906-design/habit-flow/internal/core/domain"
	"github.com/ashu2906-design/habit-flow/internal/core/scheduler"
	"github.com/ashu2906-design/habit-flow/internal/core/services"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")

	serverPort := envOr("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	redisClient, err := cache.NewRedisClient(
		envOr("REDIS_HOST", "localhost"),
		envOr("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	if err != nil {
		log.Printf("Redis unavailable, habit list caching disabled: %v", err)
		redisClient = nil
	}

	clock := domain.NewSystemClock()

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	if redisClient != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient)
	}
	userRepo := repository.NewPostgresUserRepository(db)
	logRepo := repository.NewPostgresHabitLogRepository(db)
	streakRepo := repository.NewPostgresStreakRepository(db)
	insightRepo := repository.NewPostgresInsightRepository(db)
	pairingRepo := repository.NewPostgresAccountabilityRepository(db)

	var notify domain.Notifier
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		amqpNotifier, err := notifier.NewAMQPNotifier(amqpURL)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpNotifier.Close()
		notify = amqpNotifier
		log.Println("RabbitMQ notifier connected.")
	} else {
		notify = notifier.NewLogNotifier()
		log.Println("AMQP_URL not set, notifications go to the process log.")
	}

	tokenService := services.NewTokenService(jwtSecret, envOr("JWT_ISSUER", "habit-flow"), 24*time.Hour, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	streakService := services.NewStreakService(streakRepo, logRepo, habitRepo, userRepo, clock)
	insightService := services.NewInsightService(habitRepo, logRepo, insightRepo, clock)
	difficultyService := services.NewDifficultyService(habitRepo, logRepo, clock)
	habitService := services.NewHabitService(habitRepo, streakRepo, clock)
	logService := services.NewLogService(logRepo, habitRepo, userRepo, streakService, notify, clock)
	analyticsService := services.NewAnalyticsService(habitRepo, logRepo, streakRepo, clock)
	socialService := services.NewSocialService(pairingRepo, userRepo, habitRepo, streakRepo, clock)

	sched := scheduler.New(userRepo, habitRepo, logRepo, streakService, insightService, notify, clock)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	sched.Start(schedCtx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService, difficultyService),
		LogHandler:       adapterHTTP.NewLogHandler(logService),
		StreakHandler:    adapterHTTP.NewStreakHandler(streakService),
		InsightHandler:   adapterHTTP.NewInsightHandler(insightService),
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(analyticsService),
		SocialHandler:    adapterHTTP.NewSocialHandler(socialService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            redisClient,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("HabitFlow API running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	schedCancel()
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
