package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          int64         `json:"booking_id"`
	UserID      int64         `json:"user_id"`
	FlightID    int64         `json:"flight_id"`
	Status      BookingStatus `json:"status"`
	BookingTime time.Time     `json:"booking_time"`
}

// Order is a booking joined with its flight, the shape returned to clients.
// A flight may be soft-deleted after the booking was made; IsDeleted lets the
// client render "flight no longer valid" distinctly from a cancellation.
type Order struct {
	BookingID     int64         `json:"booking_id"`
	FlightID      int64         `json:"flight_id"`
	Status        BookingStatus `json:"status"`
	BookingTime   string        `json:"booking_time"`
	FlightNumber  string        `json:"flight_number"`
	Origin        string        `json:"origin"`
	Destination   string        `json:"destination"`
	DepartureTime string        `json:"departure_time"`
	ArrivalTime   string        `json:"arrival_time"`
	Price         float64       `json:"price"`
	IsDeleted     bool          `json:"is_deleted"`
}

// AdminOrder additionally carries the owning user, for the admin views.
type AdminOrder struct {
	Order
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Model    string `json:"model"`
}

// BookingFilter narrows the admin booking search. Empty fields match everything.
type BookingFilter struct {
	Username     string
	FlightNumber string
}
