package payment

import (
	"errors"
	"regexp"
)

var ErrInvalidPhone = errors.New("invalid phone number")

var (
	reLocalPhone = regexp.MustCompile(`^[0-9]{9}$`)
	reFullPhone  = regexp.MustCompile(`^254[0-9]{9}$`)
)

// NormalizePhone accepts the only two valid grammars: exactly 9 digits
// (prefixed with the 254 country code) or the full 254XXXXXXXXX form.
// Anything else is rejected before any gateway call is made.
func NormalizePhone(raw string) (string, error) {
	switch {
	case reLocalPhone.MatchString(raw):
		return "254" + raw, nil
	case reFullPhone.MatchString(raw):
		return raw, nil
	default:
		return "", ErrInvalidPhone
	}
}
