package mapbox

import (
	"context"
	"fmt"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/lru"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Incident
// datasets repeat the same location text many times, so most lookups hit.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   lru.New[string, domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	key := "fwd:" + query
	if result, ok := c.lookup(key, "forward"); ok {
		return result, nil
	}
	result, err := c.inner.ForwardGeocode(ctx, query)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.FormattedAddress != "" {
		c.cache.Put(key, result)
	}
	return result, nil
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", lat, lon)
	if result, ok := c.lookup(key, "reverse"); ok {
		return result, nil
	}
	result, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	if result.FormattedAddress != "" {
		c.cache.Put(key, result)
	}
	return result, nil
}

func (c *CachedGeocoder) lookup(key, method string) (domain.GeocodingResult, bool) {
	result, ok := c.cache.Get(key)
	if ok {
		c.metrics.GeocodeCache.WithLabelValues(method, "hit").Inc()
	} else {
		c.metrics.GeocodeCache.WithLabelValues(method, "miss").Inc()
	}
	return result, ok
}
