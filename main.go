package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/audiostream-go/admin"
	"github.com/user/audiostream-go/audio"
	"github.com/user/audiostream-go/auth"
	"github.com/user/audiostream-go/background"
	"github.com/user/audiostream-go/categories"
	"github.com/user/audiostream-go/config"
	"github.com/user/audiostream-go/db"
	"github.com/user/audiostream-go/logger"
	"github.com/user/audiostream-go/subscriptions"
	"github.com/user/audiostream-go/users"
)

// @title AudioStream Pro API
// @version 1.0
// @description Audio streaming platform with subscription tiers and an admin console.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Server.Environment, cfg.Server.LogLevel, "audiostream")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		appLog.Error("failed to create database pool", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		appLog.Error("failed to run migrations", logger.Error(err))
		os.Exit(1)
	}

	// Stores.
	userStore := auth.NewPgxUserStore(pool)
	subStore := subscriptions.NewPgxStore(pool)
	profileStore := users.NewPgxStore(pool)
	audioStore := audio.NewPgxStore(pool)
	categoryStore := categories.NewPgxStore(pool)
	adminStore := admin.NewPgxStore(pool)

	// Credential strategies are tried in order; the first match wins.
	var strategies []auth.CredentialStrategy
	if cfg.Auth.DemoLogins {
		strategies = append(strategies, auth.NewDemoStrategy())
	}
	strategies = append(strategies, auth.NewDatabaseStrategy(userStore, subStore, appLog))

	// Services and handlers.
	authService := auth.NewService(strategies, userStore, subStore, *cfg.Auth, appLog)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(profileStore, audioStore)
	userHandlers := users.NewHandlers(userService)

	audioService := audio.NewService(audioStore)
	audioHandlers := audio.NewHandlers(audioService)

	categoryService := categories.NewService(categoryStore)
	categoryHandlers := categories.NewHandlers(categoryService)

	subHandlers := subscriptions.NewHandlers(subStore)

	adminService := admin.NewService(adminStore, audioStore, categoryService, *cfg.Stats)
	adminHandlers := admin.NewHandlers(adminService)

	// Background workers.
	workerStopChan := make(chan struct{})
	var workerWg sync.WaitGroup
	background.StartDownloadResetWorker(background.NewPgxResetStore(pool), appLog, workerStopChan, &workerWg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefreshToken())
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Auth))
		r.Get("/me", userHandlers.HandleGetProfile())
		r.Put("/me", userHandlers.HandleUpdateProfile())
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", categoryHandlers.HandleList())
		r.Get("/plans", subHandlers.HandleListPlans())

		r.Route("/audio", func(r chi.Router) {
			r.Get("/", audioHandlers.HandleList())

			r.With(auth.OptionalAuth(cfg.Auth)).Post("/{id}/play", audioHandlers.HandlePlay())

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(cfg.Auth))
				r.Post("/{id}/download", audioHandlers.HandleDownload())
				r.Post("/{id}/like", audioHandlers.HandleLike())
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.Auth))
			r.Get("/audio", userHandlers.HandleRecentAudio())
			r.Get("/stats", userHandlers.HandleStats())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.Auth))
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Get("/stats", adminHandlers.HandleStats())
			r.Get("/activity", adminHandlers.HandleActivity())
			r.Get("/users", adminHandlers.HandleListUsers())
			r.Patch("/users/{id}", adminHandlers.HandleUpdateUser())
			r.Post("/upload", adminHandlers.HandleUpload())
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info("server starting", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(workerStopChan)
	workerWg.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("server shutdown failed", logger.Error(err))
		os.Exit(1)
	}
	appLog.Info("server stopped gracefully")
}
