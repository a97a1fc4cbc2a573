package authcore

import "unicode"

// Strength is the 0-4 password strength band.
type Strength int

const (
	StrengthVeryWeak Strength = iota
	StrengthWeak
	StrengthFair
	StrengthGood
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthVeryWeak:
		return "very weak"
	case StrengthWeak:
		return "weak"
	case StrengthFair:
		return "fair"
	case StrengthGood:
		return "good"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// PasswordStrength scores a password for strength-meter feedback. One point
// each for length of at least 8, an uppercase letter, a lowercase letter, a
// digit and a symbol; the 0-5 sum collapses into the 0-4 band (0 and 1 are
// both very weak). Pure function, usable independently of registration.
func PasswordStrength(password string) Strength {
	var score int

	runes := []rune(password)
	if len(runes) >= 8 {
		score++
	}

	var upper, lower, digit, symbol bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			if !unicode.IsSpace(r) {
				symbol = true
			}
		}
	}
	for _, hit := range []bool{upper, lower, digit, symbol} {
		if hit {
			score++
		}
	}

	if score <= 1 {
		return StrengthVeryWeak
	}
	return Strength(score - 1)
}
