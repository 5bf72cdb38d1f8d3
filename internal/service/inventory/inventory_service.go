package inventory

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/Domenick1991/flightgate/internal/kafka"
	"github.com/Domenick1991/flightgate/internal/repository"
)

// InventoryUseCase covers every operation that can change seat counts or the
// flight catalogue.
type InventoryUseCase interface {
	Book(ctx context.Context, userID, flightID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int64) (*domain.Booking, error)
	AddFlight(ctx context.Context, input FlightInput) (*domain.Flight, error)
	ReviseFlight(ctx context.Context, input FlightInput) (*domain.Flight, error)
	DeleteFlight(ctx context.Context, flightID int64) error
	MyOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	AdminOrders(ctx context.Context, filter domain.BookingFilter) ([]domain.AdminOrder, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type InventoryService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	maxRows            int
}

// FlightInput carries the admin add/update payload. FlightID is zero for an
// add. RemainingSeats from the wire is advisory only; the engine re-derives
// it from the stored state.
type FlightInput struct {
	FlightID       int64   `json:"flight_id"`
	FlightNumber   string  `json:"flight_number"`
	Model          string  `json:"model"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	Price          float64 `json:"price"`
	TotalSeats     int     `json:"total_seats"`
	RemainingSeats int     `json:"remaining_seats"`
}

type InventoryServiceOption func(*InventoryService)

func WithNotificationsTopic(topic string) InventoryServiceOption {
	return func(s *InventoryService) {
		s.notificationsTopic = topic
	}
}

func NewInventoryService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	producer Producer,
	bookingTopic string,
	maxRows int,
	opts ...InventoryServiceOption,
) *InventoryService {
	service := &InventoryService{
		bookings:     bookings,
		flights:      flights,
		producer:     producer,
		bookingTopic: bookingTopic,
		maxRows:      maxRows,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *InventoryService) Book(ctx context.Context, userID, flightID int64) (*domain.Booking, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError("user_id", "must be positive")
	}
	if flightID <= 0 {
		return nil, domain.NewValidationError("flight_id", "must be positive")
	}

	booking, err := s.bookings.Book(ctx, userID, flightID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *InventoryService) Cancel(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	if bookingID <= 0 {
		return nil, domain.NewValidationError("booking_id", "must be positive")
	}

	booking, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_cancelled", booking)
	return booking, nil
}

func (s *InventoryService) AddFlight(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if err := validateFlightFields(input); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:  input.FlightNumber,
		Model:         input.Model,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		TotalSeats:    input.TotalSeats,
		Price:         input.Price,
	}
	if err := s.flights.Insert(ctx, flight); err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *InventoryService) ReviseFlight(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if input.FlightID <= 0 {
		return nil, domain.NewValidationError("flight_id", "must be positive")
	}
	if err := validateFlightFields(input); err != nil {
		return nil, err
	}
	if input.RemainingSeats > input.TotalSeats {
		return nil, domain.ErrSeatInvariant
	}

	flight := &domain.Flight{
		ID:            input.FlightID,
		FlightNumber:  input.FlightNumber,
		Model:         input.Model,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		TotalSeats:    input.TotalSeats,
		Price:         input.Price,
	}
	if err := s.flights.Revise(ctx, flight); err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *InventoryService) DeleteFlight(ctx context.Context, flightID int64) error {
	if flightID <= 0 {
		return domain.NewValidationError("flight_id", "must be positive")
	}

	if err := s.flights.SoftDelete(ctx, flightID); err != nil {
		return err
	}

	// Outstanding confirmed bookings on the flight are kept as-is; clients
	// render them as "flight no longer valid" from the is_deleted flag.
	s.publishFlight(ctx, "flight_deleted", flightID)
	return nil
}

func (s *InventoryService) MyOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError("user_id", "must be positive")
	}
	return s.bookings.ListByUser(ctx, userID, s.maxRows)
}

func (s *InventoryService) AdminOrders(ctx context.Context, filter domain.BookingFilter) ([]domain.AdminOrder, error) {
	return s.bookings.SearchAll(ctx, filter, s.maxRows)
}

func validateFlightFields(input FlightInput) error {
	switch {
	case input.FlightNumber == "":
		return domain.NewValidationError("flight_number", "required")
	case input.Origin == "":
		return domain.NewValidationError("origin", "required")
	case input.Destination == "":
		return domain.NewValidationError("destination", "required")
	case input.DepartureTime == "":
		return domain.NewValidationError("departure_time", "required")
	case input.ArrivalTime == "":
		return domain.NewValidationError("arrival_time", "required")
	case input.TotalSeats <= 0:
		return domain.NewValidationError("total_seats", "must be positive")
	case input.Price <= 0:
		return domain.NewValidationError("price", "must be positive")
	}
	return nil
}

func (s *InventoryService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	event := kafka.BookingEvent{
		Type:      eventType,
		BookingID: booking.ID,
		UserID:    booking.UserID,
		FlightID:  booking.FlightID,
		Status:    string(booking.Status),
		Time:      time.Now(),
	}
	s.send(ctx, strconv.FormatInt(booking.ID, 10), event)
}

func (s *InventoryService) publishFlight(ctx context.Context, eventType string, flightID int64) {
	event := kafka.BookingEvent{
		Type:     eventType,
		FlightID: flightID,
		Time:     time.Now(),
	}
	s.send(ctx, strconv.FormatInt(flightID, 10), event)
}

func (s *InventoryService) send(ctx context.Context, key string, event kafka.BookingEvent) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		log.Printf("WARNING: failed to publish %s event: %v", event.Type, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification: %v", event.Type, err)
		}
	}
}

var _ InventoryUseCase = (*InventoryService)(nil)
