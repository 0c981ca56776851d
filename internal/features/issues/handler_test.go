package issues

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicfix/civicfix-api/internal/features/reports"
)

// fakeFinder filters an in-memory report set with the query's own semantics,
// standing in for the mongo-backed repository
type fakeFinder struct {
	reports []*reports.Report
	err     error
}

func (f *fakeFinder) FindWithin(ctx context.Context, query *ViewportQuery) ([]Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	var features []Feature
	for _, r := range f.reports {
		if query.Matches(r) {
			features = append(features, FeatureFromReport(r))
		}
	}
	return features, nil
}

func newIssuesRouter(finder Finder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/issues", NewHandler(finder).QueryIssues)
	return router
}

func getIssues(router *gin.Engine, query string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/issues?"+query, nil))
	return w
}

func calgaryReports() []*reports.Report {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	return []*reports.Report{
		testReport("AbCd1234", "road", "Submitted", -114.07, 51.05, now),
		testReport("EfGh5678", "water", "Assigned", -114.05, 51.04, now.Add(-72*time.Hour)),
		testReport("IjKl9012", "road", "Resolved", -110.0, 51.05, now), // outside viewport
	}
}

func TestQueryIssuesReturnsFeatureCollection(t *testing.T) {
	router := newIssuesRouter(&fakeFinder{reports: calgaryReports()})

	w := getIssues(router, "bbox=-114.2,50.9,-113.9,51.2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	ids := []string{fc.Features[0].ID, fc.Features[1].ID}
	assert.Contains(t, ids, "AbCd1234")
	assert.Contains(t, ids, "EfGh5678")
	assert.NotContains(t, ids, "IjKl9012")
}

func TestQueryIssuesAppliesFilters(t *testing.T) {
	router := newIssuesRouter(&fakeFinder{reports: calgaryReports()})

	w := getIssues(router, "bbox=-114.2,50.9,-113.9,51.2&category=road")
	require.Equal(t, http.StatusOK, w.Code)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "AbCd1234", fc.Features[0].ID)

	w = getIssues(router, "bbox=-114.2,50.9,-113.9,51.2&status=Assigned")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "EfGh5678", fc.Features[0].ID)

	w = getIssues(router, "bbox=-114.2,50.9,-113.9,51.2&since=2026-08-19T00:00:00Z")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "AbCd1234", fc.Features[0].ID)
}

func TestQueryIssuesEmptyViewport(t *testing.T) {
	router := newIssuesRouter(&fakeFinder{reports: calgaryReports()})

	// A viewport over the ocean: valid query, zero matches
	w := getIssues(router, "bbox=-40,10,-30,20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"features":[]`)
}

func TestQueryIssuesMissingBBox(t *testing.T) {
	router := newIssuesRouter(&fakeFinder{})

	w := getIssues(router, "category=road")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_BBOX", body.Code)
}

func TestQueryIssuesMalformedBBox(t *testing.T) {
	router := newIssuesRouter(&fakeFinder{})

	for _, bbox := range []string{"1,2,3", "a,b,c,d", "-113.9,50.9,-114.2,51.2"} {
		w := getIssues(router, "bbox="+bbox)
		assert.Equal(t, http.StatusBadRequest, w.Code, "bbox=%s", bbox)
	}
}

func TestQueryIssuesStoreFailure(t *testing.T) {
	router := newIssuesRouter(&fakeFinder{err: errors.New("connection reset")})

	w := getIssues(router, "bbox=-114.2,50.9,-113.9,51.2")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DATABASE_ERROR", body.Code)
}
