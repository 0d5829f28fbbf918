//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.mapbox.com/geocoding/v5/mapbox.places",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Port Arthur, TX")
	require.NoError(t, err)

	assert.InDelta(t, 29.88, result.Lat, 0.2, "lat should be near Port Arthur")
	assert.InDelta(t, -93.93, result.Lon, 0.2, "lon should be near Port Arthur")
	assert.Contains(t, result.FormattedAddress, "Port Arthur")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	// Galveston, TX coordinates
	result, err := c.ReverseGeocode(context.Background(), 29.3013, -94.7977)
	require.NoError(t, err)

	assert.NotEmpty(t, result.FormattedAddress)
	assert.NotEmpty(t, result.PlaceName)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_ForwardGeocode_WaterBody(t *testing.T) {
	c := smokeClient(t)

	// Offshore incident locations may or may not resolve; the client must not error.
	_, err := c.ForwardGeocode(context.Background(), "Gulf of Mexico, LA")
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	// First call: cache miss -> real API call.
	r1, err := cached.ForwardGeocode(context.Background(), "Houston, TX")
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Houston")

	// Second call: cache hit -> no API call.
	r2, err := cached.ForwardGeocode(context.Background(), "Houston, TX")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
