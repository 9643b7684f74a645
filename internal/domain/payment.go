package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentCOD        PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentDetails is the shopper's payment selection. Only the fields of the
// selected method are read.
type PaymentDetails struct {
	Method     PaymentMethod `json:"method"`
	CardNumber string        `json:"card_number,omitempty"`
	CardExpiry string        `json:"card_expiry,omitempty"`
	CardCVV    string        `json:"card_cvv,omitempty"`
	UPIID      string        `json:"upi_id,omitempty"`
	Bank       string        `json:"bank,omitempty"`
}

var (
	upiPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,}@[a-zA-Z]{2,}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
)

// InvalidFields returns the names of missing or malformed fields for the
// selected method, evaluated at now (card expiry).
func (p PaymentDetails) InvalidFields(now time.Time) []string {
	if !p.Method.Valid() {
		return []string{"payment_method"}
	}

	var invalid []string
	switch p.Method {
	case PaymentCard:
		digits := strings.ReplaceAll(p.CardNumber, " ", "")
		if len(digits) < 13 || len(digits) > 19 || !allDigits(digits) {
			invalid = append(invalid, "card_number")
		}
		if !expiryValid(p.CardExpiry, now) {
			invalid = append(invalid, "card_expiry")
		}
		if (len(p.CardCVV) != 3 && len(p.CardCVV) != 4) || !allDigits(p.CardCVV) {
			invalid = append(invalid, "card_cvv")
		}
	case PaymentUPI:
		if !upiPattern.MatchString(strings.TrimSpace(p.UPIID)) {
			invalid = append(invalid, "upi_id")
		}
	case PaymentNetBanking:
		if isBlank(p.Bank) {
			invalid = append(invalid, "bank")
		}
	case PaymentCOD:
	}
	return invalid
}

// CardLast4 returns the last four card digits, or "" for non-card methods.
func (p PaymentDetails) CardLast4() string {
	if p.Method != PaymentCard {
		return ""
	}
	digits := strings.ReplaceAll(p.CardNumber, " ", "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

// expiryValid accepts MM/YY cards valid through the end of that month.
func expiryValid(expiry string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(expiry))
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	firstOfNext := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	return now.Before(firstOfNext)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
