package service

import "aurejet/internal/domain"

const (
	// TaxRateBasisPoints is the taxes and fees rate, 8.35%, in hundredths of a percent.
	TaxRateBasisPoints = 835

	// ConciergeAddOnCents is the price of the concierge transfer add-on.
	ConciergeAddOnCents = 65000
)

// ComputeFare derives the fare breakdown for a base fare and the add-on toggle.
// Taxes are rounded half-up to the cent.
func ComputeFare(baseFareCents int64, addOnSelected bool) domain.FareQuote {
	tax := roundHalfUp(baseFareCents*TaxRateBasisPoints, 10000)

	var addOn int64
	if addOnSelected {
		addOn = ConciergeAddOnCents
	}

	return domain.FareQuote{
		BaseFareCents:  baseFareCents,
		TaxesFeesCents: tax,
		AddOnCents:     addOn,
		TotalCents:     baseFareCents + tax + addOn,
	}
}

// roundHalfUp divides num by a positive den, rounding halves away from zero.
func roundHalfUp(num, den int64) int64 {
	if num < 0 {
		return -roundHalfUp(-num, den)
	}
	return (num + den/2) / den
}
