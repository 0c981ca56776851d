package issues

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicfix/civicfix-api/internal/pkg/response"
	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

// Finder is implemented by Repository
type Finder interface {
	FindWithin(ctx context.Context, query *ViewportQuery) ([]Feature, error)
}

type Handler struct {
	finder Finder
}

func NewHandler(finder Finder) *Handler {
	return &Handler{finder: finder}
}

// @Summary Query reports in a viewport
// @Description Returns reports within the bbox as a GeoJSON FeatureCollection
// @Tags issues
// @Produce json
// @Param bbox query string true "minLon,minLat,maxLon,maxLat"
// @Param category query []string false "Category filter (repeatable)"
// @Param status query []string false "Status filter (repeatable)"
// @Param since query string false "RFC3339 timestamp"
// @Success 200 {object} FeatureCollection
// @Failure 400 {object} response.ErrorResponse
// @Router /issues [get]
func (h *Handler) QueryIssues(c *gin.Context) {
	query, err := ParseViewportQuery(
		c.Query("bbox"),
		c.QueryArray("category"),
		c.QueryArray("status"),
		c.Query("since"),
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrBadRequest) {
			response.BadRequest(c, err.Error(), "INVALID_BBOX")
			return
		}
		response.BadRequest(c, "Invalid query", "INVALID_QUERY")
		return
	}

	features, err := h.finder.FindWithin(c.Request.Context(), query)
	if err != nil {
		response.DatabaseError(c, "Failed to query reports")
		return
	}

	// Live viewport data; intermediate caches must not serve it
	response.NoStore(c)
	c.JSON(http.StatusOK, NewFeatureCollection(features))
}
