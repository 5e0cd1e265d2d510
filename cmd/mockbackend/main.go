package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/example/bidngo-client/internal/backendtest"
	"github.com/example/bidngo-client/internal/models"
)

// mockbackend serves the in-process fake backend standalone so the CLI can
// be exercised without the real platform. It seeds one driver, one
// passenger, and one trip.
func main() {
	var addr string
	flag.StringVar(&addr, "addr", ":21001", "address to listen on")
	flag.Parse()

	srv := backendtest.NewServer()
	driverID := srv.SeedUser("driver@example.com", "secret123", models.RoleDriver)
	srv.SeedUser("rider@example.com", "secret123", models.RolePassenger)
	trip := srv.SeedTrip(models.Trip{
		DriverUserID: driverID,
		OriginLat:    40.7128, OriginLng: -74.0060, OriginAddr: "New York, NY",
		DestLat: 42.3601, DestLng: -71.0589, DestAddr: "Boston, MA",
		Seats: 3, BasePrice: 45,
	})

	log.Printf("mock backend on %s (seeded trip %d; driver@example.com / rider@example.com, password secret123)", addr, trip.ID)
	log.Printf("note: the feed is served on this same port at /ws, set BIDNGO_WS_URL accordingly")
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatal(err)
	}
}
