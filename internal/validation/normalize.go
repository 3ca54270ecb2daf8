package validation

import "strings"

// CountryCode is prefixed to ten-digit local phone numbers.
const CountryCode = "91"

// NormalizePhone strips formatting and returns "+91XXXXXXXXXX". Ten-digit
// numbers get the country code; twelve digits already carrying it are
// accepted as-is. Anything else is flagged.
func NormalizePhone(raw string) (string, bool) {
	digits := digitsOnly(raw)
	switch {
	case len(digits) == 10:
		return "+" + CountryCode + digits, true
	case len(digits) == 12 && strings.HasPrefix(digits, CountryCode):
		return "+" + digits, true
	}
	return digits, false
}

// FormatPhone renders a normalized number as "+91 XXXXX XXXXX".
func FormatPhone(raw string) (string, bool) {
	normalized, ok := NormalizePhone(raw)
	if !ok {
		return normalized, false
	}
	local := normalized[len(CountryCode)+1:]
	return "+" + CountryCode + " " + local[:5] + " " + local[5:], true
}

// PINLength is the number of digits in a postal PIN code.
const PINLength = 6

// NormalizePIN keeps at most six digits; it is valid only with exactly six.
func NormalizePIN(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) > PINLength {
		digits = digits[:PINLength]
	}
	return digits, len(digits) == PINLength
}
