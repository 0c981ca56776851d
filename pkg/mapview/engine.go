package mapview

import (
	"context"
	"sync"
)

// Viewport is the map's currently visible rectangle plus its zoom level
type Viewport struct {
	BBox [4]float64 // minLon, minLat, maxLon, maxLat
	Zoom float64
}

// FetchFunc loads the points visible in a viewport, typically by calling the
// issues query endpoint with the viewport's bbox.
type FetchFunc func(ctx context.Context, vp Viewport) ([]Point, error)

// Engine keeps a clustered view of the map in sync with viewport changes.
// SetViewport is meant to be called once movement settles, not per frame.
// Each call supersedes any in-flight fetch: the older context is cancelled
// and a late result whose sequence number is no longer current is discarded,
// so the rendered state always reflects the last requested viewport.
type Engine struct {
	fetch FetchFunc

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	viewport Viewport
	clusters []Cluster
	singles  []Point
}

func NewEngine(fetch FetchFunc) *Engine {
	return &Engine{fetch: fetch}
}

// SetViewport issues a fetch for the new viewport. Returns the sequence
// number assigned to the request.
func (e *Engine) SetViewport(ctx context.Context, vp Viewport) uint64 {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	if e.cancel != nil {
		e.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.viewport = vp
	e.mu.Unlock()

	go func() {
		defer cancel()
		points, err := e.fetch(fetchCtx, vp)
		if err != nil {
			// Cancelled or failed fetch; the previous view stays up
			return
		}
		e.apply(seq, points, vp.Zoom)
	}()

	return seq
}

// apply installs a fetch result unless a newer viewport was requested since
func (e *Engine) apply(seq uint64, points []Point, zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		// Last request wins; drop the stale result
		return
	}
	e.clusters, e.singles = ClusterPoints(points, zoom)
}

// Snapshot returns the current render-ready clusters and single points
func (e *Engine) Snapshot() ([]Cluster, []Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clusters := make([]Cluster, len(e.clusters))
	copy(clusters, e.clusters)
	singles := make([]Point, len(e.singles))
	copy(singles, e.singles)
	return clusters, singles
}

// Viewport returns the last requested viewport
func (e *Engine) Viewport() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// ExpandCluster computes the zoom the view should animate to when the user
// selects a cluster, centered on the cluster's location.
func (e *Engine) ExpandCluster(c Cluster) (lon, lat, zoom float64) {
	e.mu.Lock()
	currentZoom := e.viewport.Zoom
	e.mu.Unlock()
	return c.Lon, c.Lat, ExpansionZoom(c, currentZoom)
}
