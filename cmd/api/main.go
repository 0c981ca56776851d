package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicfix/civicfix-api/internal/config"
	"github.com/civicfix/civicfix-api/internal/middleware"
	"github.com/civicfix/civicfix-api/internal/pkg/database"
	"github.com/civicfix/civicfix-api/internal/pkg/response"
	"github.com/civicfix/civicfix-api/internal/routes"
)

func main() {
	// Load config
	cfg := config.Load()

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer db.Close()

	// Viewport queries depend on the 2dsphere index; refuse to start without it
	if err := db.EnsureReportIndexes(context.Background()); err != nil {
		log.Fatal("Failed to ensure report indexes:", err)
	}

	// Setup Gin
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.FrontendURL))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Register all routes
	routes.SetupRoutes(router, db.Database, cfg)

	// config server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	// start the server
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
