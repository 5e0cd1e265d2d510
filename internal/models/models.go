package models

import "time"

// Place is the client-facing nested location shape used in create/search
// payloads before they are flattened to the backend's column layout.
type Place struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// User is the server-attested account record returned by /api/users/me.
// It is distinct from auth.UnverifiedClaims, which is only a local decode.
type User struct {
	ID       int64   `json:"id"`
	Role     Role    `json:"role"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Rating   float64 `json:"rating"`
	Verified bool    `json:"verified"`
}

// Trip is the backend row shape, passed through unchanged. The snake_case
// column layout is the canonical view type on the client.
type Trip struct {
	ID            int64     `json:"id"`
	DriverUserID  int64     `json:"driver_user_id"`
	OriginLat     float64   `json:"origin_lat"`
	OriginLng     float64   `json:"origin_lng"`
	OriginAddr    string    `json:"origin_addr"`
	DestLat       float64   `json:"dest_lat"`
	DestLng       float64   `json:"dest_lng"`
	DestAddr      string    `json:"dest_addr"`
	DepartureTime time.Time `json:"departure_time"`
	Seats         int       `json:"seats"`
	BasePrice     float64   `json:"base_price"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type BidStatus string

const (
	BidOpen      BidStatus = "open"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
	BidBooked    BidStatus = "booked"
)

// Bid status transitions are entirely server-driven; the client only
// reflects whatever the last fetch or event reported.
type Bid struct {
	ID         int64     `json:"id"`
	TripID     int64     `json:"trip_id"`
	UserID     int64     `json:"user_id"`
	Price      float64   `json:"price"`
	PickupLat  float64   `json:"pickup_lat"`
	PickupLng  float64   `json:"pickup_lng"`
	PickupAddr string    `json:"pickup_addr"`
	Status     BidStatus `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingPickedUp  BookingStatus = "picked_up"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              int64         `json:"id"`
	TripID          int64         `json:"trip_id"`
	BidID           *int64        `json:"bid_id,omitempty"`
	PassengerUserID int64         `json:"passenger_user_id"`
	Fare            float64       `json:"fare"`
	Status          BookingStatus `json:"status"`
	PaymentStatus   string        `json:"payment_status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// DriverProfile lifecycle authority (approve/reject) is entirely backend-side.
type DriverProfile struct {
	UserID       int64              `json:"user_id"`
	LicenseNo    string             `json:"license_no"`
	VehicleModel string             `json:"vehicle_model"`
	VehiclePlate string             `json:"vehicle_plate"`
	VehicleSeats int                `json:"vehicle_seats"`
	DocumentURLs []string           `json:"document_urls,omitempty"`
	Status       VerificationStatus `json:"status"`
	Rating       float64            `json:"rating"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type DriverStats struct {
	TotalProfiles    int `json:"total_profiles"`
	PendingProfiles  int `json:"pending_profiles"`
	ApprovedProfiles int `json:"approved_profiles"`
	RejectedProfiles int `json:"rejected_profiles"`
}
