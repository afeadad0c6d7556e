package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/safatanc/tourism-core/injector"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := infrastructures.LoadConfig()
	infrastructures.ConfigureLogger(cfg)

	app, err := injector.InitializeApplication()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Fiber configuration
	config := fiber.Config{
		ReadTimeout:  time.Second * 60,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: pkg.ErrorResponse,
	}

	router := fiber.New(config)
	router.Use(recover.New())

	// Add CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:        300,
	}))

	app.RegisterRoutes(router)

	go func() {
		if err := router.Listen(":" + cfg.APP_PORT); err != nil {
			logrus.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := router.ShutdownWithContext(ctx); err != nil {
		logrus.Errorf("Failed to shut down server: %v", err)
	}
	if err := app.Shutdown(ctx); err != nil {
		logrus.Errorf("Failed to drain post-commit jobs: %v", err)
	}
}
