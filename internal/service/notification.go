package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"aurejet/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationCheckoutStarted  NotificationType = "CHECKOUT_STARTED"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationCheckoutExpired  NotificationType = "CHECKOUT_EXPIRED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // guest ID, or the contact email for anonymous checkouts
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{logger: logger, now: time.Now}
}

// NotifyCheckoutStarted tells the traveler their seats are being held for payment.
func (s *NotificationService) NotifyCheckoutStarted(ctx context.Context, session *CheckoutSnapshot) error {
	return s.send(ctx, Notification{
		Type:        NotificationCheckoutStarted,
		RecipientID: recipientFor(session.GuestID, session.Traveler),
		Title:       "Checkout Started",
		Message:     fmt.Sprintf("Complete payment for %s to confirm your seats.", session.Route),
		Data: map[string]interface{}{
			"session_id":      session.SessionID,
			"flight_id":       session.FlightID,
			"idempotency_key": session.Payment.IdempotencyKey,
		},
		CreatedAt: s.now(),
	})
}

// NotifyPaymentFailed notifies the traveler that an attempt was declined.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, session *CheckoutSnapshot) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: recipientFor(session.GuestID, session.Traveler),
		Title:       "Payment Failed",
		Message:     session.Payment.Message,
		Data: map[string]interface{}{
			"session_id":      session.SessionID,
			"attempt":         session.Payment.AttemptNumber,
			"idempotency_key": session.Payment.IdempotencyKey,
			"total_cents":     session.Fare.TotalCents,
		},
		CreatedAt: s.now(),
	})
}

// NotifyBookingConfirmed notifies the traveler that the booking is confirmed.
func (s *NotificationService) NotifyBookingConfirmed(ctx context.Context, confirmation *domain.BookingConfirmation, guestID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingConfirmed,
		RecipientID: recipientFor(guestID, confirmation.Traveler),
		Title:       "Booking Confirmed",
		Message:     fmt.Sprintf("Your %s booking is confirmed. Total charged: %s", confirmation.Route, FormatUSD(confirmation.Fare.TotalCents)),
		Data: map[string]interface{}{
			"confirmation_id": confirmation.ID,
			"session_id":      confirmation.SessionID,
			"flight_id":       confirmation.FlightID,
			"total_cents":     confirmation.Fare.TotalCents,
		},
		CreatedAt: s.now(),
	})
}

// NotifyCheckoutExpired notifies the traveler that an unpaid checkout timed out.
func (s *NotificationService) NotifyCheckoutExpired(ctx context.Context, session *CheckoutSnapshot) error {
	if session.Payment.Status == domain.PaymentStatusSucceeded {
		return nil
	}
	return s.send(ctx, Notification{
		Type:        NotificationCheckoutExpired,
		RecipientID: recipientFor(session.GuestID, session.Traveler),
		Title:       "Checkout Expired",
		Message:     fmt.Sprintf("Your hold on %s has expired.", session.Route),
		Data: map[string]interface{}{
			"session_id": session.SessionID,
		},
		CreatedAt: s.now(),
	})
}

func recipientFor(guestID string, traveler domain.TravelerDetails) string {
	if guestID != "" {
		return guestID
	}
	return traveler.ContactEmail
}

// send delivers a notification. Delivery is a structured log line.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"type", notification.Type,
		"recipient", notification.RecipientID,
		"title", notification.Title,
		"message", notification.Message,
		dataGroup(notification.Data),
	)
	return nil
}

// dataGroup renders notification data as a "data" group with keys in sorted order.
func dataGroup(data map[string]interface{}) slog.Attr {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, data[k]))
	}
	return slog.Group("data", attrs...)
}
