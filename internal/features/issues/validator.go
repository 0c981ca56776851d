package issues

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/civicfix/civicfix-api/internal/pkg/validator"
	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

// ParseBBox parses "minLon,minLat,maxLon,maxLat". Longitude wrap-around is
// not supported: minLon must be strictly less than maxLon.
func ParseBBox(raw string) (BBox, error) {
	var bbox BBox

	if strings.TrimSpace(raw) == "" {
		return bbox, fmt.Errorf("%w: bbox required", apperrors.ErrBadRequest)
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return bbox, fmt.Errorf("%w: bbox must be minLon,minLat,maxLon,maxLat", apperrors.ErrBadRequest)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return bbox, fmt.Errorf("%w: bbox value %q is not a number", apperrors.ErrBadRequest, part)
		}
		bbox[i] = v
	}

	if !validator.IsValidLongitude(bbox.MinLon()) || !validator.IsValidLongitude(bbox.MaxLon()) {
		return bbox, fmt.Errorf("%w: bbox longitude out of range", apperrors.ErrBadRequest)
	}
	if !validator.IsValidLatitude(bbox.MinLat()) || !validator.IsValidLatitude(bbox.MaxLat()) {
		return bbox, fmt.Errorf("%w: bbox latitude out of range", apperrors.ErrBadRequest)
	}
	if bbox.MinLon() >= bbox.MaxLon() {
		return bbox, fmt.Errorf("%w: bbox minLon must be less than maxLon", apperrors.ErrBadRequest)
	}
	if bbox.MinLat() >= bbox.MaxLat() {
		return bbox, fmt.Errorf("%w: bbox minLat must be less than maxLat", apperrors.ErrBadRequest)
	}

	return bbox, nil
}

// ParseViewportQuery builds a ViewportQuery from raw query parameters.
// category and status are repeatable; since is RFC3339.
func ParseViewportQuery(rawBBox string, categories, statuses []string, rawSince string) (*ViewportQuery, error) {
	bbox, err := ParseBBox(rawBBox)
	if err != nil {
		return nil, err
	}

	query := &ViewportQuery{
		BBox:       bbox,
		Categories: cleanSet(categories),
		Statuses:   cleanSet(statuses),
	}

	if strings.TrimSpace(rawSince) != "" {
		since, err := time.Parse(time.RFC3339, rawSince)
		if err != nil {
			return nil, fmt.Errorf("%w: since must be an RFC3339 timestamp", apperrors.ErrBadRequest)
		}
		query.Since = &since
	}

	return query, nil
}

func cleanSet(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
