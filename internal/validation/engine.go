// Package validation evaluates declarative field rules. Every function here
// is pure; callers decide how to decorate their inputs with the results.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RuleKind names a built-in rule.
type RuleKind string

const (
	KindRequired         RuleKind = "required"
	KindMinLength        RuleKind = "min_length"
	KindMaxLength        RuleKind = "max_length"
	KindPattern          RuleKind = "pattern"
	KindMatches          RuleKind = "matches"
	KindEmailFormat      RuleKind = "email_format"
	KindPhoneFormat      RuleKind = "phone_format"
	KindPasswordStrength RuleKind = "password_strength"
)

// Rule is one declarative check. Build rules with the constructors below.
type Rule struct {
	Kind    RuleKind
	N       int
	Regexp  *regexp.Regexp
	OtherID string
	Other   string
	Message string
}

// WithMessage returns a copy of r reporting msg on failure.
func (r Rule) WithMessage(msg string) Rule {
	r.Message = msg
	return r
}

// Result is the outcome of validating one field.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneChars   = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

func Required() Rule {
	return Rule{Kind: KindRequired, Message: "This field is required"}
}

func MinLength(n int) Rule {
	return Rule{Kind: KindMinLength, N: n, Message: fmt.Sprintf("Must be at least %d characters long", n)}
}

func MaxLength(n int) Rule {
	return Rule{Kind: KindMaxLength, N: n, Message: fmt.Sprintf("Must be at most %d characters long", n)}
}

func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{Kind: KindPattern, Regexp: re, Message: message}
}

// Matches compares against another field. The caller passes that field's
// current value; nothing is looked up.
func Matches(otherFieldID, otherValue string) Rule {
	return Rule{Kind: KindMatches, OtherID: otherFieldID, Other: otherValue, Message: "Values do not match"}
}

func EmailFormat() Rule {
	return Rule{Kind: KindEmailFormat, Message: "Please enter a valid email address"}
}

// PhoneFormat accepts digits, spaces, dashes, parentheses and a leading
// plus, with at least minDigits digits (10 when minDigits <= 0).
func PhoneFormat(minDigits int) Rule {
	if minDigits <= 0 {
		minDigits = 10
	}
	return Rule{Kind: KindPhoneFormat, N: minDigits, Message: "Please enter a valid phone number"}
}

// PasswordStrength fails only for passwords shorter than minLen (8 when
// minLen <= 0). Use ScorePassword for weak/good/strong feedback.
func PasswordStrength(minLen int) Rule {
	if minLen <= 0 {
		minLen = 8
	}
	return Rule{Kind: KindPasswordStrength, N: minLen,
		Message: fmt.Sprintf("Password is too short (minimum %d characters)", minLen)}
}

// Validate applies rules in order and reports the first failure. An empty
// value passes every rule except Required.
func Validate(fieldID, value string, rules ...Rule) Result {
	trimmed := strings.TrimSpace(value)
	for _, rule := range rules {
		if rule.Kind != KindRequired && trimmed == "" {
			continue
		}
		if !check(rule, value, trimmed) {
			return Result{OK: false, Message: rule.Message}
		}
	}
	return Result{OK: true}
}

func check(rule Rule, raw, trimmed string) bool {
	switch rule.Kind {
	case KindRequired:
		return trimmed != ""
	case KindMinLength:
		return utf8.RuneCountInString(trimmed) >= rule.N
	case KindMaxLength:
		return utf8.RuneCountInString(raw) <= rule.N
	case KindPattern:
		return rule.Regexp != nil && rule.Regexp.MatchString(trimmed)
	case KindMatches:
		return raw == rule.Other
	case KindEmailFormat:
		return emailPattern.MatchString(trimmed)
	case KindPhoneFormat:
		return phoneChars.MatchString(trimmed) && len(digitsOnly(trimmed)) >= rule.N
	case KindPasswordStrength:
		return utf8.RuneCountInString(raw) >= rule.N
	}
	return false
}

func digitsOnly(v string) string {
	return nonDigits.ReplaceAllString(v, "")
}
