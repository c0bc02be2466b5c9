package parser

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/aluiziolira/go-equipment-catalog/models"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// Lead validation failures. ValidateLead wraps or returns one of these.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrPhoneRequired = errors.New("phone is required")
	ErrPhoneDigits   = fmt.Errorf("phone must have %d to %d digits", minPhoneDigits, maxPhoneDigits)
	ErrInvalidEmail  = errors.New("invalid email")
)

// NormalizePhone keeps a leading plus and the digits of a phone number.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeLead trims every free-text field in place.
func NormalizeLead(l *models.Lead) {
	l.Name = strings.TrimSpace(l.Name)
	l.Phone = NormalizePhone(l.Phone)
	l.Company = strings.TrimSpace(l.Company)
	l.Email = strings.TrimSpace(l.Email)
	l.ItemID = strings.TrimSpace(l.ItemID)
	l.Comment = strings.TrimSpace(l.Comment)
	l.Source = strings.TrimSpace(l.Source)
}

// ValidateLead checks a normalized lead.
func ValidateLead(l *models.Lead) error {
	if l == nil {
		return fmt.Errorf("lead is nil")
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrNameRequired
	}
	digits := strings.TrimPrefix(l.Phone, "+")
	if digits == "" {
		return ErrPhoneRequired
	}
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return ErrPhoneDigits
	}
	if l.Email != "" {
		if _, err := mail.ParseAddress(l.Email); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
		}
	}
	return nil
}
