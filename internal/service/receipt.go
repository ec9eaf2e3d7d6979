package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aurejet/internal/domain"
)

// ReceiptService issues booking confirmations.
type ReceiptService struct {
	now func() time.Time
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{now: time.Now}
}

// GenerateConfirmation builds the confirmation for a checkout whose payment succeeded.
func (s *ReceiptService) GenerateConfirmation(session *CheckoutSnapshot) (*domain.BookingConfirmation, error) {
	if session == nil {
		return nil, ErrInvalidSessionID
	}
	if session.Payment.Status != domain.PaymentStatusSucceeded {
		return nil, ErrReceiptNotReady
	}

	return &domain.BookingConfirmation{
		ID:             "bk_" + uuid.New().String(),
		SessionID:      session.SessionID,
		FlightID:       session.FlightID,
		Route:          session.Route,
		Aircraft:       session.Aircraft,
		Traveler:       session.Traveler,
		Fare:           session.Fare,
		PaymentMethod:  session.PaymentMethod,
		IdempotencyKey: session.Payment.IdempotencyKey,
		Attempts:       session.Payment.AttemptNumber,
		ConfirmedAt:    s.now(),
	}, nil
}

// FormatReceipt formats the confirmation as text (for email/print).
func (s *ReceiptService) FormatReceipt(c *domain.BookingConfirmation) string {
	var b strings.Builder

	line := "=====================================\n"
	rule := "-------------------------------------\n"

	b.WriteString(line)
	b.WriteString("        AUREJET BOOKING RECEIPT\n")
	b.WriteString(line)
	fmt.Fprintf(&b, "Confirmation: %s\n", c.ID)
	fmt.Fprintf(&b, "Date: %s\n\n", c.ConfirmedAt.Format("Jan 02, 2006 3:04 PM"))

	b.WriteString("FLIGHT\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Route:       %s\n", c.Route)
	fmt.Fprintf(&b, "Aircraft:    %s\n", c.Aircraft)
	fmt.Fprintf(&b, "Lead:        %s\n", c.Traveler.LeadName)
	fmt.Fprintf(&b, "Passengers:  %d\n", c.Traveler.PassengerCount)
	fmt.Fprintf(&b, "Document:    %s\n\n", documentLabel(c.Traveler.DocumentType))

	b.WriteString("FARE BREAKDOWN\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Base fare:         %s\n", FormatUSD(c.Fare.BaseFareCents))
	fmt.Fprintf(&b, "Taxes & fees:      %s\n", FormatUSD(c.Fare.TaxesFeesCents))
	if c.Fare.AddOnCents > 0 {
		fmt.Fprintf(&b, "Concierge add-on:  %s\n", FormatUSD(c.Fare.AddOnCents))
	}
	b.WriteString(rule)
	fmt.Fprintf(&b, "TOTAL:             %s\n\n", FormatUSD(c.Fare.TotalCents))

	b.WriteString("PAYMENT\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Method: %s\n", PaymentMethodLabel(c.PaymentMethod))
	fmt.Fprintf(&b, "Idempotency key: %s\n", c.IdempotencyKey)
	fmt.Fprintf(&b, "Attempts: %d\n\n", c.Attempts)

	b.WriteString(line)
	b.WriteString("     Thank you for flying AUREJET\n")
	b.WriteString(line)

	return b.String()
}

// PaymentMethodLabel returns the display name of a payment method.
func PaymentMethodLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentMethodCard:
		return "Card"
	case domain.PaymentMethodBankRequest:
		return "Bank Request"
	case domain.PaymentMethodWalletCredits:
		return "Wallet Credits"
	default:
		return string(m)
	}
}

func documentLabel(d domain.DocumentType) string {
	if d == domain.DocumentTypeNationalID {
		return "National ID"
	}
	return "Passport"
}
