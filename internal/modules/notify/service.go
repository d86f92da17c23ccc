package notify

import (
	"context"
	"errors"
	"log"

	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
)

// Sender delivers a plain-text message to the operations chat.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Service is the best-effort notification fan-out. Nothing here is retried.
type Service interface {
	// Notify forwards a free-form message to the operations chat.
	Notify(ctx context.Context, message string) error
	// OrdersPlaced announces a checkout on the chat and emails the client.
	// Failures are logged, never returned.
	OrdersPlaced(ctx context.Context, clientEmail string, orders []*order.Order)
}

type service struct {
	chat   Sender
	mailer Mailer
}

// NewService wires the chat sender and mailer; either may be nil.
func NewService(chat Sender, mailer Mailer) Service {
	return &service{chat: chat, mailer: mailer}
}

func (s *service) Notify(ctx context.Context, message string) error {
	if s.chat == nil {
		return ErrNotConfigured
	}
	return s.chat.Send(ctx, message)
}

func (s *service) OrdersPlaced(ctx context.Context, clientEmail string, orders []*order.Order) {
	if len(orders) == 0 {
		return
	}
	if err := s.Notify(ctx, OrdersPlacedText(orders)); err != nil && !errors.Is(err, ErrNotConfigured) {
		log.Printf("notify: telegram for checkout %s: %v", orders[0].CheckoutID, err)
	}
	if s.mailer == nil || clientEmail == "" {
		return
	}
	err := s.mailer.SendEmail(ctx, clientEmail, "Confirmation de commande", OrdersPlacedEmail(orders))
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		log.Printf("notify: email for checkout %s: %v", orders[0].CheckoutID, err)
	}
}
