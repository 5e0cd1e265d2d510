package backendtest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/bidngo-client/internal/models"
)

func (s *Server) handleRegister(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.mu.Lock()
		if _, exists := s.users[req.Email]; exists {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		id := s.nextID
		s.nextID++
		u := &userRecord{
			User:     models.User{ID: id, Role: role, Email: req.Email, Name: req.Name, Phone: req.Phone},
			Password: req.Password,
		}
		s.users[req.Email] = u
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, u.User)
	}
}

func (s *Server) handleDriverComplete(w http.ResponseWriter, r *http.Request) {
	var req models.DriverRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	u, ok := s.users[req.Email]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "no such user")
		return
	}
	p := &models.DriverProfile{
		UserID:       u.ID,
		LicenseNo:    req.LicenseNo,
		VehicleModel: req.VehicleModel,
		VehiclePlate: req.VehiclePlate,
		VehicleSeats: req.VehicleSeats,
		Status:       models.VerificationPending,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.profiles[u.ID] = p
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	u, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || u.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	tok := s.IssueToken(u.User, time.Now().Add(time.Hour))
	writeJSON(w, http.StatusOK, models.LoginResponse{Message: "ok", Token: tok})
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, *t)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	var wire models.TripWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	s.mu.Lock()
	t := &models.Trip{
		ID:            s.nextID,
		DriverUserID:  u.ID,
		OriginLat:     wire.OriginLat,
		OriginLng:     wire.OriginLng,
		OriginAddr:    wire.OriginAddr,
		DestLat:       wire.DestLat,
		DestLng:       wire.DestLng,
		DestAddr:      wire.DestAddr,
		DepartureTime: wire.DepartureTime,
		Seats:         wire.Seats,
		BasePrice:     wire.BasePrice,
		Notes:         wire.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextID++
	s.trips[t.ID] = t
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	t, ok := s.trips[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	var wire models.TripWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	t, ok := s.trips[pathID(r, "id")]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}
	if t.DriverUserID != u.ID {
		s.mu.Unlock()
		writeError(w, http.StatusForbidden, "not your trip")
		return
	}
	t.OriginLat, t.OriginLng, t.OriginAddr = wire.OriginLat, wire.OriginLng, wire.OriginAddr
	t.DestLat, t.DestLng, t.DestAddr = wire.DestLat, wire.DestLng, wire.DestAddr
	t.DepartureTime, t.Seats, t.BasePrice, t.Notes = wire.DepartureTime, wire.Seats, wire.BasePrice, wire.Notes
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cp)
}

// handleSearchTrips ignores the geospatial ranking the real backend does and
// simply returns every trip; ranking is out of the client's scope.
func (s *Server) handleSearchTrips(w http.ResponseWriter, r *http.Request) {
	var wire models.TripSearchWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.handleListTrips(w, r)
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	var wire models.BidWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	s.mu.Lock()
	b := &models.Bid{
		ID:         s.nextID,
		TripID:     wire.TripID,
		UserID:     u.ID,
		Price:      wire.Price,
		PickupLat:  wire.PickupLat,
		PickupLng:  wire.PickupLng,
		PickupAddr: wire.PickupAddr,
		Status:     models.BidOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.nextID++
	s.bids[b.ID] = b
	cp := *b
	s.mu.Unlock()
	s.Emit(bidEvent("bid_placed", cp))
	writeJSON(w, http.StatusCreated, cp)
}

func (s *Server) handleUpdateBid(w http.ResponseWriter, r *http.Request) {
	var wire models.BidWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	b, ok := s.bids[pathID(r, "id")]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "bid not found")
		return
	}
	b.Price = wire.Price
	b.PickupLat, b.PickupLng, b.PickupAddr = wire.PickupLat, wire.PickupLng, wire.PickupAddr
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	s.mu.Unlock()
	s.Emit(bidEvent("bid_updated", cp))
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) handleWithdrawBid(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	s.mu.Lock()
	b, ok := s.bids[id]
	if ok {
		b.Status = models.BidWithdrawn
		b.UpdatedAt = time.Now().UTC()
		delete(s.bids, id)
	}
	cp := models.Bid{}
	if ok {
		cp = *b
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "bid not found")
		return
	}
	s.Emit(bidEvent("bid_deleted", cp))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTripBids(w http.ResponseWriter, r *http.Request) {
	tripID := pathID(r, "id")
	s.mu.Lock()
	out := make([]models.Bid, 0)
	for _, b := range s.bids {
		if b.TripID == tripID {
			out = append(out, *b)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMyBids(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	s.mu.Lock()
	out := make([]models.Bid, 0)
	for _, b := range s.bids {
		if b.UserID == u.ID {
			out = append(out, *b)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConfirmBid(w http.ResponseWriter, r *http.Request) {
	tripID := pathID(r, "tripId")
	var req struct {
		BidID int64 `json:"bid_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	s.mu.Lock()
	b, ok := s.bids[req.BidID]
	if !ok || b.TripID != tripID {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "bid not found for trip")
		return
	}
	b.Status = models.BidBooked
	b.UpdatedAt = now
	bidID := b.ID
	bk := &models.Booking{
		ID:              s.nextID,
		TripID:          tripID,
		BidID:           &bidID,
		PassengerUserID: b.UserID,
		Fare:            b.Price,
		Status:          models.BookingBooked,
		PaymentStatus:   "pending",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.nextID++
	s.bookings[bk.ID] = bk
	cpBid := *b
	cpBk := *bk
	s.mu.Unlock()
	s.Emit(bidEvent("bid_updated", cpBid))
	writeJSON(w, http.StatusCreated, cpBk)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.Booking, 0, len(s.bookings))
	for _, bk := range s.bookings {
		out = append(out, *bk)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	s.mu.Lock()
	out := make([]models.Booking, 0)
	for _, bk := range s.bookings {
		if bk.PassengerUserID == u.ID {
			out = append(out, *bk)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	bk, ok := s.bookings[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, bk)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) handleDriverProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromRequest(r)
	s.mu.Lock()
	p, ok := s.profiles[u.ID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no driver profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDriverStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := models.DriverStats{TotalProfiles: len(s.profiles)}
	for _, p := range s.profiles {
		switch p.Status {
		case models.VerificationPending:
			stats.PendingProfiles++
		case models.VerificationApproved:
			stats.ApprovedProfiles++
		case models.VerificationRejected:
			stats.RejectedProfiles++
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
