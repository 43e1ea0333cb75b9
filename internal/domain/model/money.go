package model

import "github.com/shopspring/decimal"

const (
	// PlatformFeePercent is retained by the platform on bookings. Tips carry no fee.
	PlatformFeePercent = 20

	MinTipCents int64 = 100
	MaxTipCents int64 = 100000
)

var hundred = decimal.NewFromInt(100)

// PlatformFee returns the platform share of total rounded to whole cents.
func PlatformFee(total int64) int64 {
	return decimal.NewFromInt(total).
		Mul(decimal.NewFromInt(PlatformFeePercent)).
		Div(hundred).
		Round(0).
		IntPart()
}

// SplitBooking divides a booking total between celebrity and platform.
// The two parts always add up to total.
func SplitBooking(total int64) (celebrity, fee int64) {
	fee = PlatformFee(total)
	return total - fee, fee
}

// CentsFromDecimal converts a major-unit amount into cents.
func CentsFromDecimal(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// DecimalFromCents converts cents into a major-unit amount.
func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// HasCentPrecision reports whether amount has at most two decimal places.
func HasCentPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}
