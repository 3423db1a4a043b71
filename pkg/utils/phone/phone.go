package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// NormalizeE164 parses raw in defaultRegion and formats it as E.164.
func NormalizeE164(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhoneNumber
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", ErrInvalidPhoneNumber
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return "", ErrInvalidPhoneNumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// WhatsAppRecipient is the E.164 number without the leading plus, the form
// the WhatsApp Cloud API expects in the "to" field.
func WhatsAppRecipient(raw, defaultRegion string) (string, error) {
	e164, err := NormalizeE164(raw, defaultRegion)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(e164, "+"), nil
}
