package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseMinor converts a 2-decimal amount string like "100.00" into minor
// units (cents). Anything beyond two decimal places is rejected rather than
// rounded.
func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	shifted := value.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrTooManyDecimals
	}
	return shifted.IntPart(), nil
}

// FormatMinor renders minor units as a fixed 2-decimal string.
func FormatMinor(value int64) string {
	return decimal.New(value, -2).StringFixed(2)
}
