package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) OK() bool { return len(f) == 0 }

func (f FieldErrors) set(field, msg string) { f[field] = msg }

// Fields returns the names of the failing fields in a stable order.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Err returns nil when there are no field errors and an *Error otherwise.
func (f FieldErrors) Err() error {
	if f.OK() {
		return nil
	}
	return &Error{Fields: f}
}

// Error carries the field messages of a rejected form.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	fields := e.Fields.Fields()
	if len(fields) == 1 {
		return fields[0] + ": " + e.Fields[fields[0]]
	}
	return fmt.Sprintf("%d fields are invalid: %s", len(fields), strings.Join(fields, ", "))
}

// Locale is what validation needs to know about the selected country. The
// zero Locale imposes no country-specific constraint.
type Locale struct {
	Region string
	Postal PostalRule
}

func ValidEmail(email string) bool { return emailPattern.MatchString(email) }

// Registration is the sign-up form.
type Registration struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"contact"`
	Address         string `json:"address"`
	PostalCode      string `json:"pin"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
}

func (r Registration) Validate(loc Locale) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(r.FirstName) == "" {
		errs.set("firstName", "First name is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs.set("lastName", "Last name is required")
	}
	switch {
	case r.Email == "":
		errs.set("email", "Email is required")
	case !ValidEmail(r.Email):
		errs.set("email", "Invalid email")
	}
	if r.Password == "" {
		errs.set("password", "Password is required")
	}
	switch {
	case r.ConfirmPassword == "":
		errs.set("confirmPassword", "Confirm your password")
	case r.Password != r.ConfirmPassword:
		errs.set("confirmPassword", "Passwords do not match")
	}
	if strings.TrimSpace(r.Address) == "" {
		errs.set("address", "Street address is required")
	}
	checkPostal(errs, "pin", r.PostalCode, loc.Postal)
	checkPhone(errs, "contact", r.Phone, loc.Region)
	if !r.AgreeToTerms {
		errs.set("agreeToTerms", "You must agree to terms")
	}
	return errs
}

func (r Registration) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// FullAddress joins street, postal code (when the country uses one) and
// country name the way the account service stores it.
func (r Registration) FullAddress(loc Locale, countryName string) string {
	parts := []string{strings.TrimSpace(r.Address)}
	if loc.Postal.Required() && r.PostalCode != "" {
		parts = append(parts, r.PostalCode)
	}
	if countryName != "" {
		parts = append(parts, countryName)
	}
	return strings.Join(parts, ", ")
}

// Shipping is the checkout address form.
type Shipping struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	PostalCode  string `json:"pin"`
}

func (s Shipping) Validate(loc Locale) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(s.FullName) == "" {
		errs.set("fullName", "Full name is required")
	}
	switch {
	case s.Email == "":
		errs.set("email", "Email is required")
	case !ValidEmail(s.Email):
		errs.set("email", "Invalid email")
	}
	if strings.TrimSpace(s.Address) == "" {
		errs.set("address", "Address is required")
	}
	checkPostal(errs, "pin", s.PostalCode, loc.Postal)
	checkPhone(errs, "phone", s.Phone, loc.Region)
	return errs
}

func checkPostal(errs FieldErrors, field, code string, rule PostalRule) {
	if !rule.Required() {
		return
	}
	if code == "" {
		errs.set(field, "PIN is required")
		return
	}
	if err := rule.Validate(code); err != nil {
		if errors.Is(err, ErrPostalLength) {
			errs.set(field, "Expected format: "+rule.Template)
			return
		}
		errs.set(field, "Invalid postal code format")
	}
}

func checkPhone(errs FieldErrors, field, phone, region string) {
	if strings.TrimSpace(phone) == "" {
		return
	}
	if err := ValidatePhone(phone, region); err != nil {
		errs.set(field, "Invalid contact number for selected country")
	}
}

// PasswordStrength scores a password from 0 to 5: one point each for length
// of at least 8, a lower-case letter, an upper-case letter, a digit and a
// symbol.
func PasswordStrength(pw string) (int, string) {
	if pw == "" {
		return 0, ""
	}
	var lower, upper, digit, other bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	score := 0
	for _, ok := range []bool{len(pw) >= 8, lower, upper, digit, other} {
		if ok {
			score++
		}
	}
	labels := []string{"", "Weak", "Fair", "Good", "Strong", "Very Strong"}
	return score, labels[score]
}
