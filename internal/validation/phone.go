package validation

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrPhoneInvalid = errors.New("invalid phone number for selected country")

// ValidatePhone reports whether raw is a valid number for region (ISO 3166
// alpha-2). Numbers may be given with or without the international prefix.
// An empty region means the country list was unavailable; no check is made.
func ValidatePhone(raw, region string) error {
	if region == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return ErrPhoneInvalid
	}
	if !phonenumbers.IsValidNumberForRegion(num, strings.ToUpper(region)) {
		return ErrPhoneInvalid
	}
	return nil
}

// FormatPhone renders raw in international format, e.g. "+1 650-253-0000".
// Input that cannot be parsed is returned trimmed but otherwise untouched.
func FormatPhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// PhonePlaceholder is an example number for region, falling back to the
// calling code followed by dummy digits.
func PhonePlaceholder(region, callingCode string) string {
	if ex := phonenumbers.GetExampleNumber(strings.ToUpper(region)); ex != nil {
		return phonenumbers.Format(ex, phonenumbers.INTERNATIONAL)
	}
	return strings.TrimSpace(callingCode + " 123456789")
}
