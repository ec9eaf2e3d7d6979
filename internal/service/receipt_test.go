package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurejet/internal/domain"
)

func succeededSnapshot() *CheckoutSnapshot {
	return &CheckoutSnapshot{
		SessionID:     "sess-1",
		FlightID:      "leg-101",
		Route:         "TEB -> MIA",
		Aircraft:      "Gulfstream G550",
		Traveler:      domain.TravelerDetails{LeadName: "Ada Lovelace", PassengerCount: 2, DocumentType: domain.DocumentTypePassport, ContactEmail: "ada@example.com"},
		PaymentMethod: domain.PaymentMethodBankRequest,
		Fare:          ComputeFare(1890000, true),
		Payment: domain.PaymentAttempt{
			AttemptNumber:  2,
			IdempotencyKey: "idem_1760432400000_7",
			Status:         domain.PaymentStatusSucceeded,
		},
	}
}

func TestReceipt_GenerateConfirmation(t *testing.T) {
	rs := NewReceiptService()
	rs.now = func() time.Time { return fixedNow }

	c, err := rs.GenerateConfirmation(succeededSnapshot())
	require.NoError(t, err)

	assert.Regexp(t, `^bk_`, c.ID)
	assert.Equal(t, "leg-101", c.FlightID)
	assert.Equal(t, 2, c.Attempts)
	assert.Equal(t, int64(2112815), c.Fare.TotalCents)
	assert.Equal(t, fixedNow, c.ConfirmedAt)
}

func TestReceipt_RequiresSuccess(t *testing.T) {
	rs := NewReceiptService()
	snap := succeededSnapshot()
	snap.Payment.Status = domain.PaymentStatusFailed

	_, err := rs.GenerateConfirmation(snap)
	assert.ErrorIs(t, err, ErrReceiptNotReady)

	_, err = rs.GenerateConfirmation(nil)
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestReceipt_FormatReceipt(t *testing.T) {
	rs := NewReceiptService()
	rs.now = func() time.Time { return fixedNow }
	c, err := rs.GenerateConfirmation(succeededSnapshot())
	require.NoError(t, err)

	text := rs.FormatReceipt(c)

	assert.Contains(t, text, "Route:       TEB -> MIA")
	assert.Contains(t, text, "Base fare:         $18,900")
	assert.Contains(t, text, "Concierge add-on:  $650")
	assert.Contains(t, text, "TOTAL:             $21,128")
	assert.Contains(t, text, "Method: Bank Request")
	assert.Contains(t, text, "Date: Oct 14, 2026 9:00 AM")
}
