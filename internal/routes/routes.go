package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicfix/civicfix-api/internal/config"
	"github.com/civicfix/civicfix-api/internal/features/issues"
	"github.com/civicfix/civicfix-api/internal/features/reports"
)

func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config) {
	// API v1 group
	api := router.Group("/api/v1")

	reports.RegisterRoutes(api, db, cfg)
	issues.RegisterRoutes(api, db)
}
