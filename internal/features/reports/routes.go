package reports

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicfix/civicfix-api/internal/config"
	"github.com/civicfix/civicfix-api/internal/middleware"
	"github.com/civicfix/civicfix-api/internal/pkg/cloudinary"
	"github.com/civicfix/civicfix-api/internal/pkg/logger"
	"github.com/civicfix/civicfix-api/internal/pkg/ratelimit"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config) {
	repo := NewRepository(db)
	classifier := NewHTTPClassifier(cfg.ClassifierURL)

	var objects ObjectStore
	cld, err := cloudinary.NewService(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret, cfg.CloudFolder)
	if err != nil {
		// Image-bearing submissions will fail with a storage error until
		// credentials are configured; text-only reports still work.
		log.Printf("Failed to initialize cloudinary service for reports: %v", err)
	} else {
		objects = cld
	}

	svc := NewService(repo, NewAllocator(repo), classifier, objects, logger.New(logger.INFO))
	handler := NewHandler(svc)

	// Public submission endpoint gets per-IP rate limiting
	limiter := ratelimit.New(30, time.Minute)
	limiter.StartCleanup(5 * time.Minute)

	reports := router.Group("/reports")
	{
		reports.POST("", ratelimit.Middleware(limiter), handler.CreateReport)
		reports.GET("", handler.ListReports)
		reports.GET("/:id", handler.GetReport)
		reports.PATCH("/:id/status", middleware.Auth(), handler.UpdateStatus)
	}
}
