package models

import "time"

// The backend stores locations as flat columns while callers work with the
// nested Place shape. The Wire methods perform that flattening; inbound rows
// need no translation because the snake_case row types above are canonical.

type TripCreate struct {
	Origin        Place
	Destination   Place
	DepartureTime time.Time
	Seats         int
	BasePrice     float64
	Notes         string
}

type TripWire struct {
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
}

func (t TripCreate) Wire() TripWire {
	return TripWire{
		OriginLat:     t.Origin.Lat,
		OriginLng:     t.Origin.Lng,
		OriginAddr:    t.Origin.Address,
		DestLat:       t.Destination.Lat,
		DestLng:       t.Destination.Lng,
		DestAddr:      t.Destination.Address,
		DepartureTime: t.DepartureTime,
		Seats:         t.Seats,
		BasePrice:     t.BasePrice,
		Notes:         t.Notes,
	}
}

// TripSearch is the geospatial ranking request. The backend expects the
// start_/end_ column naming rather than the origin_/dest_ pair used on rows.
type TripSearch struct {
	Start Place
	End   Place
}

type TripSearchWire struct {
	StartLat  float64 `json:"start_lat"`
	StartLng  float64 `json:"start_lng"`
	StartAddr string  `json:"start_addr"`
	EndLat    float64 `json:"end_lat"`
	EndLng    float64 `json:"end_lng"`
	EndAddr   string  `json:"end_addr"`
}

func (s TripSearch) Wire() TripSearchWire {
	return TripSearchWire{
		StartLat:  s.Start.Lat,
		StartLng:  s.Start.Lng,
		StartAddr: s.Start.Address,
		EndLat:    s.End.Lat,
		EndLng:    s.End.Lng,
		EndAddr:   s.End.Address,
	}
}

type BidCreate struct {
	TripID int64
	Price  float64
	Pickup Place
}

type BidWire struct {
	TripID     int64   `json:"trip_id,omitempty"`
	Price      float64 `json:"price"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	PickupAddr string  `json:"pickup_addr"`
}

func (b BidCreate) Wire() BidWire {
	return BidWire{
		TripID:     b.TripID,
		Price:      b.Price,
		PickupLat:  b.Pickup.Lat,
		PickupLng:  b.Pickup.Lng,
		PickupAddr: b.Pickup.Address,
	}
}

// BidUpdate carries the mutable fields of an open bid. TripID is omitted on
// the wire for updates, the bid id rides in the URL.
type BidUpdate struct {
	Price  float64
	Pickup Place
}

func (b BidUpdate) Wire() BidWire {
	return BidWire{
		Price:      b.Price,
		PickupLat:  b.Pickup.Lat,
		PickupLng:  b.Pickup.Lng,
		PickupAddr: b.Pickup.Address,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type DriverRegisterRequest struct {
	RegisterRequest
	LicenseNo    string `json:"license_no"`
	VehicleModel string `json:"vehicle_model"`
	VehiclePlate string `json:"vehicle_plate"`
	VehicleSeats int    `json:"vehicle_seats"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type BookingUpdate struct {
	Status BookingStatus `json:"status"`
}
