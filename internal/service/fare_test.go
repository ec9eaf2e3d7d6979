package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFare_CatalogFares(t *testing.T) {
	testCases := []struct {
		name      string
		base      int64
		wantTaxes int64
	}{
		{"leg-101", 1890000, 157815},
		{"leg-206", 1420000, 118570},
		{"leg-332 rounds half up", 1265000, 105628},
		{"zero", 0, 0},
		{"one cent", 1, 0},
		{"six cents rounds up", 6, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := ComputeFare(tc.base, false)
			assert.Equal(t, tc.base, q.BaseFareCents)
			assert.Equal(t, tc.wantTaxes, q.TaxesFeesCents)
			assert.Zero(t, q.AddOnCents)
			assert.Equal(t, tc.base+tc.wantTaxes, q.TotalCents)
		})
	}
}

func TestComputeFare_AddOn(t *testing.T) {
	off := ComputeFare(1890000, false)
	on := ComputeFare(1890000, true)

	assert.Equal(t, int64(ConciergeAddOnCents), on.AddOnCents)
	assert.Equal(t, off.TotalCents+65000, on.TotalCents)
	assert.Equal(t, off.TaxesFeesCents, on.TaxesFeesCents)
}

func TestComputeFare_TotalIsSumOfParts(t *testing.T) {
	for base := int64(0); base < 5000; base += 37 {
		for _, addOn := range []bool{false, true} {
			q := ComputeFare(base, addOn)
			assert.Equal(t, q.BaseFareCents+q.TaxesFeesCents+q.AddOnCents, q.TotalCents)
		}
	}
}

func TestComputeFare_Idempotent(t *testing.T) {
	assert.Equal(t, ComputeFare(1420000, true), ComputeFare(1420000, true))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$18,900", FormatUSD(1890000))
	assert.Equal(t, "$1,578", FormatUSD(157815))
	assert.Equal(t, "$650", FormatUSD(65000))
	assert.Equal(t, "$1", FormatUSD(50))
	assert.Equal(t, "$0", FormatUSD(0))
}
