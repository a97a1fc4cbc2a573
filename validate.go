package authcore

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 20
)

// normalizeIdentifier canonicalizes a username or email for lookups and
// attempt tracking.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// validateUsername enforces the username shape: 3 to 20 characters from
// [A-Za-z0-9_].
func validateUsername(username string) error {
	length := utf8.RuneCountInString(username)
	if length < usernameMinLength || length > usernameMaxLength {
		return fmt.Errorf("%w: username must be %d-%d characters", ErrValidation, usernameMinLength, usernameMaxLength)
	}
	for _, r := range username {
		if r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			continue
		}
		return fmt.Errorf("%w: username may only contain letters, digits and underscores", ErrValidation)
	}
	return nil
}

// validateEmail enforces a plausible address shape.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

// avatarInitial derives the single-letter avatar from a username.
func avatarInitial(username string) string {
	for _, r := range username {
		return strings.ToUpper(string(r))
	}
	return ""
}
