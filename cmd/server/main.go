package main

import (
	"context"
	"ctchen222/Simple-Blog/internal/api/controller"
	apirepository "ctchen222/Simple-Blog/internal/api/repository"
	"ctchen222/Simple-Blog/internal/api/service"
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/config"
	"ctchen222/Simple-Blog/internal/db"
	"ctchen222/Simple-Blog/internal/logger"
	"ctchen222/Simple-Blog/internal/repository"
	"ctchen222/Simple-Blog/internal/server"
	"ctchen222/Simple-Blog/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry before the logger so the slog bridge picks up the provider.
	shutdown, err := telemetry.InitOtel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(cfg.SlogLevel(), cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize SQLite DB
	DB, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open sqlite db: %v", err)
	}
	defer DB.Close()
	if err := db.InitializeDB(ctx, DB); err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}

	// Redis is optional and only backs auth throttling.
	rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}
	var loginAttempts, registerAttempts repository.AttemptRepository
	if rdb != nil {
		defer rdb.Close()
		loginAttempts = repository.NewAttemptRepository(rdb, "login")
		registerAttempts = repository.NewAttemptRepository(rdb, "register")
		slog.Info("Auth throttling enabled", "limit", cfg.AuthRateLimit, "window", cfg.AuthRateWindow)
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), auth.SessionTTL)

	// Create repositories
	userRepo := apirepository.NewUserRepository(DB)
	postRepo := apirepository.NewPostRepository(DB)

	// Create services
	userService := service.NewUserService(userRepo, tokens)
	postService := service.NewPostService(postRepo, time.Now)

	// Create the Gin-based server
	srv, err := server.NewServer(server.Options{
		Tokens:           tokens,
		Users:            controller.NewUserController(userService, tokens),
		Posts:            controller.NewPostController(postService),
		LoginAttempts:    loginAttempts,
		RegisterAttempts: registerAttempts,
		AttemptLimit:     cfg.AuthRateLimit,
		AttemptWindow:    cfg.AuthRateWindow,
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server started", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exiting")
}
