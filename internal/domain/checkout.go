package domain

import "time"

// PaymentStatus represents the state of the checkout payment state machine.
type PaymentStatus string

const (
	PaymentStatusIdle       PaymentStatus = "IDLE"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusSucceeded  PaymentStatus = "SUCCEEDED"
)

// Label returns the human readable state name.
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusIdle:
		return "Idle"
	case PaymentStatusProcessing:
		return "Processing"
	case PaymentStatusFailed:
		return "Failed"
	case PaymentStatusSucceeded:
		return "Succeeded"
	default:
		return string(s)
	}
}

// PaymentMethod represents how the traveler pays.
type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "CARD"
	PaymentMethodBankRequest   PaymentMethod = "BANK_REQUEST"
	PaymentMethodWalletCredits PaymentMethod = "WALLET_CREDITS"
)

// DocumentType is the identity document the lead traveler will present.
type DocumentType string

const (
	DocumentTypePassport   DocumentType = "PASSPORT"
	DocumentTypeNationalID DocumentType = "NATIONAL_ID"
)

// TravelerDetails is produced by the traveler form and handed to the payment step by value.
type TravelerDetails struct {
	LeadName       string
	PassengerCount int
	DocumentType   DocumentType
	SpecialRequest string
	ContactEmail   string
}

// FareQuote is derived from a base fare and the add-on toggle. Never stored.
type FareQuote struct {
	BaseFareCents  int64
	TaxesFeesCents int64
	AddOnCents     int64
	TotalCents     int64
}

// PaymentAttempt is the observable state of a checkout's payment.
type PaymentAttempt struct {
	AttemptNumber  int
	IdempotencyKey string
	Status         PaymentStatus
	Message        string
}

// BookingConfirmation is issued once a payment succeeds.
type BookingConfirmation struct {
	ID             string
	SessionID      string
	FlightID       string
	Route          string
	Aircraft       string
	Traveler       TravelerDetails
	Fare           FareQuote
	PaymentMethod  PaymentMethod
	IdempotencyKey string
	Attempts       int
	ConfirmedAt    time.Time
}
