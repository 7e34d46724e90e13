package sms

import (
	"context"
	"strings"
	"unicode"
)

type SMSProvider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
}

type SMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// E164 turns a stored phone number into the +<country><number> form the
// providers expect. Numbers without a country code get defaultCountryCode.
func E164(phone, defaultCountryCode string) string {
	plus := strings.HasPrefix(strings.TrimSpace(phone), "+")

	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	if !plus && len(digits) <= 10 {
		digits = defaultCountryCode + digits
	}
	return "+" + digits
}
