package service

import "errors"

var (
	// ErrInvalidFlightID is returned when flight ID is empty.
	ErrInvalidFlightID = errors.New("invalid flight id")

	// ErrFlightUnavailable is returned when a flight ID no longer resolves in the catalog.
	ErrFlightUnavailable = errors.New("flight no longer available")

	// ErrInvalidSessionID is returned when checkout session ID is empty.
	ErrInvalidSessionID = errors.New("invalid checkout session id")

	// ErrSessionNotFound is returned when a checkout session does not exist or has expired.
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrSessionClosed is returned when operating on a disposed checkout session.
	ErrSessionClosed = errors.New("checkout session closed")

	// ErrSubmitNotAllowed is returned when a payment is submitted while processing or after success.
	ErrSubmitNotAllowed = errors.New("payment cannot be submitted in current state")

	// ErrCheckoutLocked is returned when fare inputs change while a payment is processing or done.
	ErrCheckoutLocked = errors.New("checkout cannot be changed in current state")

	// ErrReceiptNotReady is returned when a receipt is requested before payment succeeds.
	ErrReceiptNotReady = errors.New("booking not confirmed yet")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidSignInMethod is returned when the auth gateway method is unknown.
	ErrInvalidSignInMethod = errors.New("invalid sign-in method")

	// ErrInvalidToken is returned when a guest token cannot be verified.
	ErrInvalidToken = errors.New("invalid guest token")

	// ErrChargeInFlight is returned when a charge with the same idempotency key is already running.
	ErrChargeInFlight = errors.New("charge already in flight for idempotency key")

	// ErrInvalidScreen is returned when a screen name is not part of the navigation graph.
	ErrInvalidScreen = errors.New("invalid screen")
)
