package server

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/Domenick1991/flightgate/internal/metrics"
	"github.com/Domenick1991/flightgate/internal/service/accounts"
	"github.com/Domenick1991/flightgate/internal/service/flights"
	"github.com/Domenick1991/flightgate/internal/service/inventory"
)

// Handlers binds the action table to the services. Every handler is a pure
// data-to-response transform; connection concerns stay in the read loop.
type Handlers struct {
	accounts  accounts.AccountUseCase
	flights   flights.FlightUseCase
	inventory inventory.InventoryUseCase
	metrics   *metrics.Metrics
}

func NewHandlers(accountSvc accounts.AccountUseCase, flightSvc flights.FlightUseCase, inventorySvc inventory.InventoryUseCase, m *metrics.Metrics) *Handlers {
	return &Handlers{accounts: accountSvc, flights: flightSvc, inventory: inventorySvc, metrics: m}
}

// Register populates the router's action table.
func (h *Handlers) Register(router *Router) {
	router.Handle("register", h.register)
	router.Handle("login", h.login)
	router.Handle("update_profile", h.updateProfile)
	router.Handle("search_flights", h.searchFlights)
	router.Handle("book_flight", h.bookFlight)
	router.Handle("get_my_orders", h.getMyOrders)
	router.Handle("cancel_order", h.cancelOrder)
	router.Handle("admin_add_flight", h.adminAddFlight)
	router.Handle("admin_update_flight", h.adminUpdateFlight)
	router.Handle("admin_delete_flight", h.adminDeleteFlight)
	router.Handle("admin_get_all_users", h.adminGetAllUsers)
	router.Handle("admin_get_all_bookings", h.adminGetAllBookings)
	router.Handle("admin_get_all_flights", h.adminGetAllFlights)
	router.Handle("admin_search_flights", h.adminSearchFlights)
	router.Handle("admin_search_bookings", h.adminSearchBookings)
	router.Handle("admin_cancel_booking", h.cancelOrder)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) register(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req credentialsRequest
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	if err := h.accounts.Register(ctx, req.Username, req.Password); err != nil {
		return nil, "", err
	}
	return nil, "Registration successful", nil
}

func (h *Handlers) login(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req credentialsRequest
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	user, err := h.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, "", err
	}
	return map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": boolToInt(user.IsAdmin),
	}, "Login successful", nil
}

func (h *Handlers) updateProfile(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	if err := h.accounts.UpdateProfile(ctx, req.UserID, req.Username, req.Password); err != nil {
		return nil, "", err
	}
	return nil, "Profile updated", nil
}

type searchRequest struct {
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Date           string `json:"date"`
	IncludeDeleted bool   `json:"include_deleted"`
}

func (h *Handlers) searchFlights(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req searchRequest
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	found, err := h.flights.Search(ctx, domain.SearchFilter{
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        req.Date,
	})
	if err != nil {
		return nil, "", err
	}
	return found, "Search completed", nil
}

// adminSearchFlights is the admin view: same filters, soft-deleted rows
// included on request.
func (h *Handlers) adminSearchFlights(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req searchRequest
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	found, err := h.flights.Search(ctx, domain.SearchFilter{
		Origin:         req.Origin,
		Destination:    req.Destination,
		Date:           req.Date,
		IncludeDeleted: req.IncludeDeleted,
	})
	if err != nil {
		return nil, "", err
	}
	return found, "Search completed", nil
}

func (h *Handlers) adminGetAllFlights(ctx context.Context, _ json.RawMessage) (interface{}, string, error) {
	found, err := h.flights.Search(ctx, domain.SearchFilter{IncludeDeleted: true})
	if err != nil {
		return nil, "", err
	}
	return found, "Search completed", nil
}

func (h *Handlers) bookFlight(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req struct {
		UserID   int64 `json:"user_id"`
		FlightID int64 `json:"flight_id"`
	}
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	booking, err := h.inventory.Book(ctx, req.UserID, req.FlightID)
	if err != nil {
		return nil, "", err
	}
	if h.metrics != nil {
		h.metrics.BookingsTotal.Inc()
	}
	return map[string]interface{}{
		"booking_id": booking.ID,
		"user_id":    booking.UserID,
		"flight_id":  booking.FlightID,
		"status":     booking.Status,
	}, "Booking confirmed", nil
}

func (h *Handlers) getMyOrders(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	orders, err := h.inventory.MyOrders(ctx, req.UserID)
	if err != nil {
		return nil, "", err
	}
	return orders, "Search completed", nil
}

// cancelOrder serves both the customer cancel_order and the admin
// admin_cancel_booking actions; the engine semantics are identical.
func (h *Handlers) cancelOrder(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req struct {
		BookingID int64 `json:"booking_id"`
	}
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	if _, err := h.inventory.Cancel(ctx, req.BookingID); err != nil {
		return nil, "", err
	}
	if h.metrics != nil {
		h.metrics.CancellationsTotal.Inc()
	}
	return nil, "Booking cancelled", nil
}

func (h *Handlers) adminAddFlight(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req inventory.FlightInput
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	flight, err := h.inventory.AddFlight(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return flight, "Flight added", nil
}

func (h *Handlers) adminUpdateFlight(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req inventory.FlightInput
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	flight, err := h.inventory.ReviseFlight(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return flight, "Flight updated", nil
}

func (h *Handlers) adminDeleteFlight(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req struct {
		FlightID int64 `json:"flight_id"`
	}
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	if err := h.inventory.DeleteFlight(ctx, req.FlightID); err != nil {
		return nil, "", err
	}
	return nil, "Flight deleted", nil
}

func (h *Handlers) adminGetAllUsers(ctx context.Context, _ json.RawMessage) (interface{}, string, error) {
	users, err := h.accounts.ListUsers(ctx)
	if err != nil {
		return nil, "", err
	}
	return users, "Search completed", nil
}

func (h *Handlers) adminGetAllBookings(ctx context.Context, _ json.RawMessage) (interface{}, string, error) {
	orders, err := h.inventory.AdminOrders(ctx, domain.BookingFilter{})
	if err != nil {
		return nil, "", err
	}
	return orders, "Search completed", nil
}

func (h *Handlers) adminSearchBookings(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
	var req struct {
		Username     string `json:"username"`
		FlightNumber string `json:"flight_number"`
	}
	if err := decode(data, &req); err != nil {
		return nil, "", err
	}
	orders, err := h.inventory.AdminOrders(ctx, domain.BookingFilter{
		Username:     req.Username,
		FlightNumber: req.FlightNumber,
	})
	if err != nil {
		return nil, "", err
	}
	return orders, "Search completed", nil
}

// decode tolerates an absent data object; bad field types fail the request
// only.
func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.NewValidationError("data", "malformed request payload")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
