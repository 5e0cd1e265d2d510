// Package backendtest is an in-process fake of the BidNGo backend: the REST
// routes the client consumes plus the WebSocket bid feed. The test suite
// drives it through httptest; cmd/mockbackend serves it standalone for local
// CLI development. It implements just enough behavior to exercise the
// client, not the real bidding rules.
package backendtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/example/bidngo-client/internal/models"
)

const tokenSecret = "backendtest-secret"

type userRecord struct {
	models.User
	Password string
}

type Server struct {
	router *mux.Router
	feed   *feedRegistry

	mu       sync.Mutex
	users    map[string]*userRecord // by email
	trips    map[int64]*models.Trip
	bids     map[int64]*models.Bid
	bookings map[int64]*models.Booking
	profiles map[int64]*models.DriverProfile
	nextID   int64
	requests []string
}

func NewServer() *Server {
	s := &Server{
		router:   mux.NewRouter(),
		feed:     newFeedRegistry(),
		users:    make(map[string]*userRecord),
		trips:    make(map[int64]*models.Trip),
		bids:     make(map[int64]*models.Bid),
		bookings: make(map[int64]*models.Booking),
		profiles: make(map[int64]*models.DriverProfile),
		nextID:   1,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()
	s.router.ServeHTTP(w, r)
}

// Requests returns every request seen so far as "METHOD /path", in arrival
// order, so tests can assert call ordering.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/auth/register", s.handleRegister(models.RolePassenger)).Methods("POST")
	s.router.HandleFunc("/api/auth/driver_register_as_user", s.handleRegister(models.RoleDriver)).Methods("POST")
	s.router.HandleFunc("/api/auth/driver_complete_register", s.handleDriverComplete).Methods("POST")
	s.router.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")

	s.router.HandleFunc("/api/trips/trips", s.authed(s.handleListTrips)).Methods("GET")
	s.router.HandleFunc("/api/trips/trips", s.authed(s.handleCreateTrip)).Methods("POST")
	s.router.HandleFunc("/api/trips/trips/search", s.authed(s.handleSearchTrips)).Methods("POST")
	s.router.HandleFunc("/api/trips/trips/{id}", s.authed(s.handleGetTrip)).Methods("GET")
	s.router.HandleFunc("/api/trips/trips/{id}", s.authed(s.handleUpdateTrip)).Methods("PUT")

	s.router.HandleFunc("/api/bids/bids", s.authed(s.handlePlaceBid)).Methods("POST")
	s.router.HandleFunc("/api/bids/bids/mine", s.authed(s.handleMyBids)).Methods("GET")
	s.router.HandleFunc("/api/bids/bids/trip/{id}", s.authed(s.handleTripBids)).Methods("GET")
	s.router.HandleFunc("/api/bids/bids/confirm/{tripId}", s.authed(s.handleConfirmBid)).Methods("POST")
	s.router.HandleFunc("/api/bids/bids/{id}", s.authed(s.handleUpdateBid)).Methods("PUT")
	s.router.HandleFunc("/api/bids/bids/{id}", s.authed(s.handleWithdrawBid)).Methods("DELETE")

	s.router.HandleFunc("/api/bookings/bookings", s.authed(s.handleListBookings)).Methods("GET")
	s.router.HandleFunc("/api/bookings/bookings/mine", s.authed(s.handleMyBookings)).Methods("GET")
	s.router.HandleFunc("/api/bookings/bookings/{id}", s.authed(s.handleGetBooking)).Methods("GET")

	s.router.HandleFunc("/api/users/me", s.authed(s.handleMe)).Methods("GET")
	s.router.HandleFunc("/api/users/me/fcm-token", s.authed(s.handleNoContent)).Methods("PUT")
	s.router.HandleFunc("/api/users/email", s.authed(s.handleNoContent)).Methods("PUT")
	s.router.HandleFunc("/api/users/phone", s.authed(s.handleNoContent)).Methods("PUT")
	s.router.HandleFunc("/api/users/password", s.authed(s.handleNoContent)).Methods("PUT")

	s.router.HandleFunc("/api/drivers/profile", s.authed(s.handleDriverProfile)).Methods("GET")
	s.router.HandleFunc("/api/drivers/stats", s.authed(s.handleDriverStats)).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWS)
}

// SeedUser registers an account directly and returns its id.
func (s *Server) SeedUser(email, password string, role models.Role) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.users[email] = &userRecord{
		User:     models.User{ID: id, Role: role, Email: email, Name: email},
		Password: password,
	}
	return id
}

// SeedTrip inserts a trip row owned by the given driver.
func (s *Server) SeedTrip(t models.Trip) models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.nextID
		s.nextID++
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
		t.UpdatedAt = now
	}
	cp := t
	s.trips[t.ID] = &cp
	return t
}

// SeedBid inserts a bid row.
func (s *Server) SeedBid(b models.Bid) models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID
		s.nextID++
	}
	if b.Status == "" {
		b.Status = models.BidOpen
	}
	cp := b
	s.bids[b.ID] = &cp
	return b
}

// IssueToken signs a claims set the way the real backend does, for tests
// that need a token without going through login.
func (s *Server) IssueToken(u models.User, expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"id":    u.ID,
		"role":  string(u.Role),
		"email": u.Email,
		"name":  u.Name,
		"phone": u.Phone,
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := tok.SignedString([]byte(tokenSecret))
	return signed
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.userFromRequest(r); !ok {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next(w, r)
	}
}

func (s *Server) userFromRequest(r *http.Request) (*userRecord, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}
	tok, err := jwt.Parse(strings.TrimPrefix(h, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		return []byte(tokenSecret), nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	email, _ := claims["email"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	return u, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}
