package issues

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database) {
	repo := NewRepository(db)
	handler := NewHandler(repo)

	router.GET("/issues", handler.QueryIssues)
}
