package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Patterns a booking payload has no business containing. Matching input is
// rejected outright, never silently stripped.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	regexp.MustCompile(`(?i)\b(union|select|insert|drop|delete)\b[\s\S]*\b(from|into|table|where)\b`),
	regexp.MustCompile(`['").;]\s*--`),
	regexp.MustCompile(`\$\{`),
	regexp.MustCompile("`|\x00"),
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)

// ContainsInjection reports whether s matches any known injection pattern.
func ContainsInjection(s string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// SanitizeText trims surrounding whitespace and rejects injection attempts.
func SanitizeText(s string) (string, error) {
	clean := strings.TrimSpace(s)
	if ContainsInjection(clean) {
		return "", errors.New("contains disallowed characters")
	}
	return clean, nil
}

func ValidateName(s string) (string, error) {
	clean, err := SanitizeText(s)
	if err != nil {
		return "", err
	}
	if len(clean) < 1 || len(clean) > 100 {
		return "", errors.New("must be between 1 and 100 characters")
	}
	return clean, nil
}

func ValidateEmail(s string) (string, error) {
	clean, err := SanitizeText(s)
	if err != nil {
		return "", err
	}
	if !emailPattern.MatchString(clean) {
		return "", errors.New("invalid email address")
	}
	return clean, nil
}

// ValidatePhone accepts an empty phone; the field is optional.
func ValidatePhone(s string) (string, error) {
	clean, err := SanitizeText(s)
	if err != nil {
		return "", err
	}
	if clean == "" {
		return "", nil
	}
	if !phonePattern.MatchString(clean) {
		return "", errors.New("invalid phone number")
	}
	return clean, nil
}

func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

// ValidateStayDates checks the structural date constraints of a stay:
// check-in not before today, check-out strictly after check-in.
func ValidateStayDates(checkIn, checkOut, now time.Time) error {
	today := now.Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return errors.New("check-in date is in the past")
	}
	if !checkOut.After(checkIn) {
		return errors.New("check-out must be after check-in")
	}
	return nil
}

// Nights is the stay length in whole days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}
