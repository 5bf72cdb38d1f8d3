package client

import "context"

// Typed wrappers over Call for the common actions.

func (c *Client) Login(ctx context.Context, username, password string) (*Response, error) {
	return c.Call(ctx, "login", map[string]interface{}{
		"username": username,
		"password": password,
	})
}

func (c *Client) RegisterAccount(ctx context.Context, username, password string) (*Response, error) {
	return c.Call(ctx, "register", map[string]interface{}{
		"username": username,
		"password": password,
	})
}

func (c *Client) UpdateProfile(ctx context.Context, userID int64, username, password string) (*Response, error) {
	data := map[string]interface{}{"user_id": userID}
	if username != "" {
		data["username"] = username
	}
	if password != "" {
		data["password"] = password
	}
	return c.Call(ctx, "update_profile", data)
}

func (c *Client) SearchFlights(ctx context.Context, origin, destination, date string) (*Response, error) {
	data := map[string]interface{}{}
	if origin != "" {
		data["origin"] = origin
	}
	if destination != "" {
		data["destination"] = destination
	}
	if date != "" {
		data["date"] = date
	}
	return c.Call(ctx, "search_flights", data)
}

func (c *Client) BookFlight(ctx context.Context, userID, flightID int64) (*Response, error) {
	return c.Call(ctx, "book_flight", map[string]interface{}{
		"user_id":   userID,
		"flight_id": flightID,
	})
}

func (c *Client) MyOrders(ctx context.Context, userID int64) (*Response, error) {
	return c.Call(ctx, "get_my_orders", map[string]interface{}{
		"user_id": userID,
	})
}

func (c *Client) CancelOrder(ctx context.Context, bookingID int64) (*Response, error) {
	return c.Call(ctx, "cancel_order", map[string]interface{}{
		"booking_id": bookingID,
	})
}
