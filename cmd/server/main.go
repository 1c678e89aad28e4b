// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aurelle/aurelle-backend/internal/cache"
	"github.com/aurelle/aurelle-backend/internal/config"
	"github.com/aurelle/aurelle-backend/internal/database"
	"github.com/aurelle/aurelle-backend/internal/i18n"
	"github.com/aurelle/aurelle-backend/internal/router"
	"github.com/aurelle/aurelle-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Seed the default admin account
	if err := database.SeedInitialData(db); err != nil {
		log.Fatal("Failed to seed initial data:", err)
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.LocalesPath); err != nil {
		log.Fatal("Failed to initialize i18n:", err)
	}

	deps := buildDependencies(cfg)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(db, cfg, deps)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if deps.CatalogCache != nil {
		deps.CatalogCache.Close()
	}

	log.Println("Server exited")
}

// buildDependencies connects the optional external clients. In development
// any of them may be absent; the affected feature is disabled rather than
// refusing to start. Production requires the payment gateway.
func buildDependencies(cfg *config.Config) router.Dependencies {
	deps := router.Dependencies{}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if catalogCache, err := cache.NewCatalog(cfg.Redis); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, catalog cache disabled")
	} else {
		deps.CatalogCache = catalogCache
	}

	if cfg.Razorpay.KeyID != "" {
		deps.Gateway = services.NewRazorpayGateway(cfg.Razorpay)
	} else if cfg.Environment == "production" {
		log.Fatal("Razorpay credentials are required in production")
	} else {
		logrus.Warn("Razorpay not configured, checkout disabled")
	}

	if cfg.Firebase.ProjectID != "" {
		pusher, err := services.NewFCMPusher(ctx, cfg.Firebase)
		if err != nil {
			logrus.WithError(err).Warn("FCM unavailable, push notifications disabled")
		} else {
			deps.Pusher = pusher
		}
	}

	if cfg.Google.ClientID != "" {
		verifier, err := services.NewGoogleVerifier(ctx, cfg.Google)
		if err != nil {
			logrus.WithError(err).Warn("Google OIDC unavailable, google sign-in disabled")
		} else {
			deps.GoogleVerifier = verifier
		}
	}

	return deps
}
