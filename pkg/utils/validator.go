package utils

import (
	"fmt"
	"regexp"
	"time"
)

var (
	documentRe = regexp.MustCompile(`^\d{11}$|^\d{14}$`)
	controlRe  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateCalendarDate checks a YYYY-MM-DD date string. Dates in this system
// carry no time-of-day: timezone formatting is a presentation concern.
func ValidateCalendarDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid calendar date %q: want YYYY-MM-DD", date)
	}
	return nil
}

// ValidateAmountCents checks an expense amount in minor currency units.
func ValidateAmountCents(cents int64) error {
	if cents < 0 {
		return fmt.Errorf("amount must be non-negative: %d", cents)
	}
	return nil
}

// ValidateDocument checks a bare-digits CNPJ (14) or CPF (11).
func ValidateDocument(doc string) error {
	if !documentRe.MatchString(doc) {
		return fmt.Errorf("document must be 11 (CPF) or 14 (CNPJ) digits: %s", doc)
	}
	return nil
}

// SanitizeString removes control characters from free-text input.
func SanitizeString(s string) string {
	return controlRe.ReplaceAllString(s, "")
}
