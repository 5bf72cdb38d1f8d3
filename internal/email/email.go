package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightgate/internal/kafka"
)

// Sender is a stand-in notification channel; it prints instead of mailing.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify user %d: %s for booking %d on flight %d\n", event.UserID, event.Type, event.BookingID, event.FlightID)
	return nil
}
