package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurejet/internal/domain"
)

func TestValidateTraveler_MissingNameOnly(t *testing.T) {
	r := ValidateTraveler(domain.TravelerDetails{
		LeadName:       "",
		ContactEmail:   "a@b.com",
		PassengerCount: 1,
	}, 4)

	assert.False(t, r.Valid())
	assert.Equal(t, []ValidationCode{CodeMissingName}, r.Codes())
	assert.Equal(t, "Lead traveler name is required.", r.Errors[FieldLeadName].Message)
}

func TestValidateTraveler_CollectsAllFailures(t *testing.T) {
	r := ValidateTraveler(domain.TravelerDetails{
		LeadName:       "A",
		ContactEmail:   "bad",
		PassengerCount: 5,
	}, 4)

	assert.Equal(t, []ValidationCode{CodeInvalidEmail, CodePassengerCountExceedsSeats}, r.Codes())
	assert.Equal(t, "Passenger count exceeds available seats (4).", r.Errors[FieldPassengerCount].Message)
}

func TestValidateTraveler_Valid(t *testing.T) {
	r := ValidateTraveler(domain.TravelerDetails{
		LeadName:       "  Ada Lovelace ",
		ContactEmail:   " ada@example.com ",
		PassengerCount: 8,
		DocumentType:   domain.DocumentTypeNationalID,
	}, 8)

	assert.True(t, r.Valid())
	assert.NoError(t, r.Err())
}

func TestValidateTraveler_PassengerCountTooLow(t *testing.T) {
	for _, count := range []int{0, -3} {
		r := ValidateTraveler(domain.TravelerDetails{
			LeadName:       "A",
			ContactEmail:   "a@b.com",
			PassengerCount: count,
		}, 4)

		assert.Equal(t, []ValidationCode{CodePassengerCountTooLow}, r.Codes())
	}
}

func TestValidateTraveler_Email(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{"a@b.com", true},
		{"first.last@sub.example.co", true},
		{"", false},
		{"no-at.example.com", false},
		{"a@nodot", false},
		{"a b@c.com", false},
		{"a@@b.com", false},
		{"@b.com", false},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			r := ValidateTraveler(domain.TravelerDetails{
				LeadName:       "A",
				ContactEmail:   tc.email,
				PassengerCount: 1,
			}, 4)
			_, failed := r.Errors[FieldContactEmail]
			assert.Equal(t, !tc.valid, failed)
		})
	}
}

func TestValidateTraveler_UnknownDocumentType(t *testing.T) {
	r := ValidateTraveler(domain.TravelerDetails{
		LeadName:       "A",
		ContactEmail:   "a@b.com",
		PassengerCount: 1,
		DocumentType:   "DRIVING_LICENCE",
	}, 4)

	assert.Equal(t, []ValidationCode{CodeInvalidDocumentType}, r.Codes())
}

func TestValidationResult_Err(t *testing.T) {
	r := ValidateTraveler(domain.TravelerDetails{}, 4)

	err := r.Err()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, err.Error(), "leadName: Lead traveler name is required.")
}

func TestNormalizeTraveler_DefaultsDocumentType(t *testing.T) {
	n := normalizeTraveler(domain.TravelerDetails{LeadName: " A ", ContactEmail: " a@b.com "})

	assert.Equal(t, "A", n.LeadName)
	assert.Equal(t, "a@b.com", n.ContactEmail)
	assert.Equal(t, domain.DocumentTypePassport, n.DocumentType)
}
