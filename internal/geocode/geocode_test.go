package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/bidngo-client/internal/models"
)

func TestStraightLineZero(t *testing.T) {
	p := models.Place{Lat: 10, Lng: 20}
	if d := StraightLine(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestEstimateSecondsDefaultSpeed(t *testing.T) {
	a := models.Place{Lat: 0, Lng: 0}
	b := models.Place{Lat: 0, Lng: 1} // ~111 km along the equator
	s := EstimateSeconds(a, b, 0)
	if s <= 0 {
		t.Fatalf("expected positive estimate, got %f", s)
	}
	faster := EstimateSeconds(a, b, 30)
	if faster >= s {
		t.Fatalf("higher speed must shorten the estimate: %f >= %f", faster, s)
	}
}

func TestGeocodeCachesLookups(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if q := r.URL.Query().Get("q"); q != "central station" {
			t.Errorf("unexpected query %q", q)
		}
		w.Write([]byte(`{"lat":1.5,"lng":2.5,"address":"Central Station"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	ctx := context.Background()

	p, err := c.Geocode(ctx, "central station")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if p.Lat != 1.5 || p.Lng != 2.5 || p.Address != "Central Station" {
		t.Fatalf("unexpected place: %+v", p)
	}

	if _, err := c.Geocode(ctx, "central station"); err != nil {
		t.Fatalf("cached geocode: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 HTTP hit, got %d", hits)
	}
}

func TestGeocodeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	if _, err := c.Geocode(context.Background(), "anywhere"); err == nil {
		t.Fatal("expected error on non-200")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	c.Set("a", models.Place{Lat: 1})
	if _, ok := c.Get("a"); !ok {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry served")
	}
}
