package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rePhone    = regexp.MustCompile(`^[0-9]{10}$`)
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reTracking = regexp.MustCompile(`^[A-Za-z0-9-]{4,40}$`)
	reCourier  = regexp.MustCompile(`^[A-Za-z0-9 ._-]{2,40}$`)
)

// Phone validates a 10-digit customer phone number.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (order/kurti/sale ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// TrackingID validates a courier tracking reference.
func TrackingID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reTracking.MatchString(s)
}

// Courier validates a courier display name.
func Courier(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCourier.MatchString(s)
}

// Page parses a 1-based page number, defaulting to 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PageSize parses a page size, clamped to [1,100] with a default of 20.
func PageSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}

// Paise parses a non-negative currency amount in paise.
func Paise(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
