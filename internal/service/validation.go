package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"aurejet/internal/domain"
)

// Field names a traveler form or query input.
type Field string

const (
	FieldLeadName       Field = "leadName"
	FieldContactEmail   Field = "contactEmail"
	FieldPassengerCount Field = "passengerCount"
	FieldDocumentType   Field = "documentType"
)

// ValidationCode identifies why a field was rejected.
type ValidationCode string

const (
	CodeMissingName                ValidationCode = "MissingName"
	CodeInvalidEmail               ValidationCode = "InvalidEmail"
	CodePassengerCountTooLow       ValidationCode = "PassengerCountTooLow"
	CodePassengerCountExceedsSeats ValidationCode = "PassengerCountExceedsSeats"
	CodeInvalidDocumentType        ValidationCode = "InvalidDocumentType"
	CodeInvalidValue               ValidationCode = "InvalidValue"
)

// FieldError is one failed check.
type FieldError struct {
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
}

// ValidationResult collects every failed check keyed by field.
type ValidationResult struct {
	Errors map[Field]FieldError
}

// Valid reports whether no check failed.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Codes returns the failure codes in a stable order.
func (r ValidationResult) Codes() []ValidationCode {
	codes := make([]ValidationCode, 0, len(r.Errors))
	for _, fe := range r.Errors {
		codes = append(codes, fe.Code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Err returns nil when valid, otherwise a *ValidationError.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Fields: r.Errors}
}

func (r *ValidationResult) add(field Field, code ValidationCode, message string) {
	if r.Errors == nil {
		r.Errors = make(map[Field]FieldError)
	}
	r.Errors[field] = FieldError{Code: code, Message: message}
}

// ValidationError is a field-scoped input error.
type ValidationError struct {
	Fields map[Field]FieldError
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[Field(k)].Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateTraveler checks the traveler form against the flight's seat count.
// All failures are collected. An empty document type is treated as Passport.
func ValidateTraveler(form domain.TravelerDetails, seatLimit int) ValidationResult {
	var result ValidationResult

	if strings.TrimSpace(form.LeadName) == "" {
		result.add(FieldLeadName, CodeMissingName, "Lead traveler name is required.")
	}

	if !emailPattern.MatchString(strings.TrimSpace(form.ContactEmail)) {
		result.add(FieldContactEmail, CodeInvalidEmail, "Enter a valid contact email.")
	}

	switch {
	case form.PassengerCount < 1:
		result.add(FieldPassengerCount, CodePassengerCountTooLow, "At least one passenger is required.")
	case form.PassengerCount > seatLimit:
		result.add(FieldPassengerCount, CodePassengerCountExceedsSeats,
			fmt.Sprintf("Passenger count exceeds available seats (%d).", seatLimit))
	}

	switch form.DocumentType {
	case "", domain.DocumentTypePassport, domain.DocumentTypeNationalID:
	default:
		result.add(FieldDocumentType, CodeInvalidDocumentType, "Choose Passport or National ID.")
	}

	return result
}

// normalizeTraveler trims free text and applies the document type default.
func normalizeTraveler(form domain.TravelerDetails) domain.TravelerDetails {
	form.LeadName = strings.TrimSpace(form.LeadName)
	form.ContactEmail = strings.TrimSpace(form.ContactEmail)
	form.SpecialRequest = strings.TrimSpace(form.SpecialRequest)
	if form.DocumentType == "" {
		form.DocumentType = domain.DocumentTypePassport
	}
	return form
}
