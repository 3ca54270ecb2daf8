package validation

import "unicode/utf8"

// StrengthLevel classifies a password.
type StrengthLevel string

const (
	StrengthTooShort StrengthLevel = "too_short"
	StrengthWeak     StrengthLevel = "weak"
	StrengthGood     StrengthLevel = "good"
	StrengthStrong   StrengthLevel = "strong"
)

// MinPasswordLength is the shortest password that gets scored at all.
const MinPasswordLength = 8

// Strength is the scored result for a password.
type Strength struct {
	Score   int           `json:"score"`
	Level   StrengthLevel `json:"level"`
	Message string        `json:"message"`
}

// ScorePassword counts satisfied classes among length, lowercase,
// uppercase, digit and symbol.
func ScorePassword(password string) Strength {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Strength{Level: StrengthTooShort, Message: "Password is too short (minimum 8 characters)"}
	}

	score := 1
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			score++
		}
	}

	switch {
	case score < 3:
		return Strength{Score: score, Level: StrengthWeak,
			Message: "Weak password. Consider adding uppercase, numbers, or symbols"}
	case score == 3:
		return Strength{Score: score, Level: StrengthGood, Message: "Good password strength"}
	default:
		return Strength{Score: score, Level: StrengthStrong, Message: "Strong password"}
	}
}
