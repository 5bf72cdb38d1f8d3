package domain

type Flight struct {
	ID             int64   `json:"flight_id"`
	FlightNumber   string  `json:"flight_number"`
	Model          string  `json:"model"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	TotalSeats     int     `json:"total_seats"`
	RemainingSeats int     `json:"remaining_seats"`
	Price          float64 `json:"price"`
	IsDeleted      bool    `json:"is_deleted"`
}

// SoldSeats is the number of seats held by confirmed bookings.
func (f *Flight) SoldSeats() int {
	return f.TotalSeats - f.RemainingSeats
}

// SearchFilter narrows a flight search. Empty fields match everything.
// Date matches as a prefix of departure_time (YYYY-MM-DD).
type SearchFilter struct {
	Origin         string
	Destination    string
	Date           string
	IncludeDeleted bool
}
