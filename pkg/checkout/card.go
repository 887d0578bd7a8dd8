// Package checkout validates the simulated checkout form and records the
// payment attempt it produces. No payment provider is called.
package checkout

import (
	"regexp"
	"strings"

	"github.com/jordanlanch/funneltrack/pkg/domain"
)

// Card types
const (
	CardVisa       = "visa"
	CardMastercard = "mastercard"
	CardAmex       = "amex"
	CardDiscover   = "discover"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvcPattern        = regexp.MustCompile(`^\d{3}$`)
)

// DetectCardType classifies a card number by its leading digit, "" when
// unknown
func DetectCardType(number string) string {
	clean := stripSpaces(number)
	switch {
	case strings.HasPrefix(clean, "4"):
		return CardVisa
	case strings.HasPrefix(clean, "5"):
		return CardMastercard
	case strings.HasPrefix(clean, "3"):
		return CardAmex
	case strings.HasPrefix(clean, "6"):
		return CardDiscover
	default:
		return ""
	}
}

// FormatCardNumber keeps the digits of input in groups of four, at most 19
// characters
func FormatCardNumber(input string) string {
	digits := digitsOnly(input)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > 19 {
		out = strings.TrimSpace(out[:19])
	}
	return out
}

// FormatExpiry renders the digits of input as MM/YY
func FormatExpiry(input string) string {
	digits := digitsOnly(input)
	if len(digits) >= 2 {
		rest := digits[2:]
		if len(rest) > 2 {
			rest = rest[:2]
		}
		digits = digits[:2] + "/" + rest
	}
	if len(digits) > 5 {
		digits = digits[:5]
	}
	return digits
}

// SanitizeCVC keeps the first three digits of input
func SanitizeCVC(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

// ValidCardNumber reports whether number has exactly 16 digits once spaces
// are removed
func ValidCardNumber(number string) bool {
	return cardNumberPattern.MatchString(stripSpaces(number))
}

// Form is the submitted checkout form
type Form struct {
	PaymentMethod string `json:"payment_method"`
	CardNumber    string `json:"card_number"`
	ExpiryDate    string `json:"expiry_date"`
	CVC           string `json:"cvc"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// Normalize applies the card number, expiry and CVC input masks
func (f Form) Normalize() Form {
	f.CardNumber = FormatCardNumber(f.CardNumber)
	f.ExpiryDate = FormatExpiry(f.ExpiryDate)
	f.CVC = SanitizeCVC(f.CVC)
	return f
}

// Validate checks the form fields in order and returns the first failure
// as a validation error
func (f Form) Validate() error {
	if !ValidCardNumber(f.CardNumber) {
		return domain.NewValidationError("Please enter a valid 16-digit card number")
	}
	if !expiryPattern.MatchString(f.ExpiryDate) {
		return domain.NewValidationError("Please enter a valid expiry date (MM/YY)")
	}
	if !cvcPattern.MatchString(f.CVC) {
		return domain.NewValidationError("Please enter a valid 3-digit CVC")
	}
	if strings.TrimSpace(f.Name) == "" {
		return domain.NewValidationError("Please enter the name on card")
	}
	if strings.TrimSpace(f.Email) == "" || !strings.Contains(f.Email, "@") {
		return domain.NewValidationError("Please enter a valid email address")
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
