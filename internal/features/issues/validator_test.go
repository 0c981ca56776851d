package issues

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

func TestParseBBox(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    BBox
		wantErr string
	}{
		{
			name: "valid",
			raw:  "-114.2,50.9,-113.9,51.2",
			want: BBox{-114.2, 50.9, -113.9, 51.2},
		},
		{
			name: "whitespace tolerated",
			raw:  " -114.2 , 50.9 , -113.9 , 51.2 ",
			want: BBox{-114.2, 50.9, -113.9, 51.2},
		},
		{name: "empty", raw: "", wantErr: "bbox required"},
		{name: "too few parts", raw: "-114.2,50.9,-113.9", wantErr: "minLon,minLat,maxLon,maxLat"},
		{name: "too many parts", raw: "-114.2,50.9,-113.9,51.2,0", wantErr: "minLon,minLat,maxLon,maxLat"},
		{name: "non-numeric", raw: "-114.2,abc,-113.9,51.2", wantErr: "not a number"},
		{name: "longitude out of range", raw: "-190,50.9,-113.9,51.2", wantErr: "longitude out of range"},
		{name: "latitude out of range", raw: "-114.2,50.9,-113.9,95", wantErr: "latitude out of range"},
		{name: "inverted longitudes", raw: "-113.9,50.9,-114.2,51.2", wantErr: "minLon must be less than maxLon"},
		{name: "inverted latitudes", raw: "-114.2,51.2,-113.9,50.9", wantErr: "minLat must be less than maxLat"},
		{name: "degenerate box", raw: "-114.2,50.9,-114.2,51.2", wantErr: "minLon must be less than maxLon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bbox, err := ParseBBox(tt.raw)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, apperrors.ErrBadRequest)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bbox)
		})
	}
}

func TestParseViewportQuery(t *testing.T) {
	t.Run("full query", func(t *testing.T) {
		q, err := ParseViewportQuery(
			"-114.2,50.9,-113.9,51.2",
			[]string{"road", " water ", ""},
			[]string{"Submitted"},
			"2026-08-20T12:00:00Z",
		)
		require.NoError(t, err)
		assert.Equal(t, BBox{-114.2, 50.9, -113.9, 51.2}, q.BBox)
		assert.Equal(t, []string{"road", "water"}, q.Categories)
		assert.Equal(t, []string{"Submitted"}, q.Statuses)
		require.NotNil(t, q.Since)
		assert.Equal(t, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC), q.Since.UTC())
	})

	t.Run("bbox only", func(t *testing.T) {
		q, err := ParseViewportQuery("-114.2,50.9,-113.9,51.2", nil, nil, "")
		require.NoError(t, err)
		assert.Empty(t, q.Categories)
		assert.Empty(t, q.Statuses)
		assert.Nil(t, q.Since)
	})

	t.Run("bad since", func(t *testing.T) {
		_, err := ParseViewportQuery("-114.2,50.9,-113.9,51.2", nil, nil, "yesterday")
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
		assert.Contains(t, err.Error(), "RFC3339")
	})

	t.Run("missing bbox", func(t *testing.T) {
		_, err := ParseViewportQuery("", []string{"road"}, nil, "")
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}
