package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/example/bidngo-client/internal/models"
)

// Client resolves free-text addresses against an external geocoding HTTP
// service. Lookups are cached because address strings repeat heavily while
// a user refines a search.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	cache    *Cache
}

func NewClient(endpoint string, cacheTTL time.Duration) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		cache:    NewCache(cacheTTL),
	}
}

// Geocode resolves an address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (models.Place, error) {
	if p, ok := c.cache.Get(address); ok {
		return p, nil
	}
	u := fmt.Sprintf("%s/geocode?q=%s", c.Endpoint, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return models.Place{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.Place{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Place{}, fmt.Errorf("geocode %q: status %d", address, resp.StatusCode)
	}
	var out struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Address string  `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Place{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	p := models.Place{Lat: out.Lat, Lng: out.Lng, Address: out.Address}
	if p.Address == "" {
		p.Address = address
	}
	c.cache.Set(address, p)
	return p, nil
}

// StraightLine returns the haversine distance in meters.
func StraightLine(from, to models.Place) float64 {
	const R = 6371000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180.0 }
	dLat := toRad(to.Lat - from.Lat)
	dLng := toRad(to.Lng - from.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(from.Lat))*math.Cos(toRad(to.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EstimateSeconds is the offline fallback when no routing service is
// reachable: straight-line distance over a default speed.
func EstimateSeconds(from, to models.Place, speedMps float64) float64 {
	if speedMps <= 0 {
		speedMps = 8.0 // ~28.8 km/h default city speed
	}
	return StraightLine(from, to) / speedMps
}
