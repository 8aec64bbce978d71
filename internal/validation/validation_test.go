package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePostalTemplate(t *testing.T) {
	tests := []struct {
		template string
		input    string
		match    bool
	}{
		{"######", "123456", true},
		{"######", "12345a", false},
		{"@#@ #@#", "K1A 0B1", true},
		{"@#@ #@#", "k1a 0b1", true},
		{"@#@ #@#", "K1A-0B1", false},
		{"#####-####", "12345-6789", true},
		{"#####-####", "12345a6789", false},
		{"BFPO ####", "BFPO 1234", true},
		{"(###)", "(123)", true},
		{"(###)", "x123)", false},
		{"#.#", "1x1", false},
	}
	for _, tt := range tests {
		re, err := CompilePostalTemplate(tt.template)
		require.NoError(t, err)
		assert.Equal(t, tt.match, re.MatchString(tt.input), "%q against %q", tt.input, tt.template)
	}
}

func TestPostalRule_LengthCheckedBeforePattern(t *testing.T) {
	// the regex would accept five digits; the template length still rules
	rule := PostalRule{Template: "######", Regex: `^\d{5,6}$`}

	err := rule.Validate("12345")
	assert.ErrorIs(t, err, ErrPostalLength)

	assert.NoError(t, rule.Validate("123456"))
}

func TestPostalRule_SixDigitTemplate(t *testing.T) {
	rule := PostalRule{Template: "######"}

	assert.ErrorIs(t, rule.Validate("12345"), ErrPostalLength)
	assert.NoError(t, rule.Validate("123456"))
	assert.ErrorIs(t, rule.Validate("12a456"), ErrPostalFormat)
}

func TestPostalRule_ServerRegexTakesPrecedence(t *testing.T) {
	rule := PostalRule{Template: "######", Regex: `^([1-9]\d{5})$`}

	assert.ErrorIs(t, rule.Validate("012345"), ErrPostalFormat)
	assert.NoError(t, rule.Validate("560001"))
}

func TestPostalRule_UnsupportedRegexFallsBackToTemplate(t *testing.T) {
	rule := PostalRule{Template: "####", Regex: `^(?!0000)\d{4}$`}

	assert.NoError(t, rule.Validate("0000"))
	assert.ErrorIs(t, rule.Validate("00a0"), ErrPostalFormat)
}

func TestPostalRule_NoTemplateMeansNoConstraint(t *testing.T) {
	var rule PostalRule
	assert.False(t, rule.Required())
	assert.NoError(t, rule.Validate(""))
	assert.NoError(t, rule.Validate("anything at all"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+1 650-253-0000", "US"))
	assert.NoError(t, ValidatePhone("650 253 0000", "us"))
	assert.ErrorIs(t, ValidatePhone("123", "US"), ErrPhoneInvalid)
	assert.ErrorIs(t, ValidatePhone("not a number", "US"), ErrPhoneInvalid)
	assert.NoError(t, ValidatePhone("123", ""), "unknown country degrades to no check")
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+1 650-253-0000", FormatPhone("6502530000", "US"))
	assert.Equal(t, "garbage", FormatPhone(" garbage ", "US"))
}

func TestPhonePlaceholder(t *testing.T) {
	assert.NotEmpty(t, PhonePlaceholder("US", "+1"))
	assert.Equal(t, "+999 123456789", PhonePlaceholder("ZZ", "+999"))
}

func TestRegistration_Validate(t *testing.T) {
	loc := Locale{Region: "US", Postal: PostalRule{Template: "#####"}}

	t.Run("empty form", func(t *testing.T) {
		errs := Registration{}.Validate(loc)
		assert.Equal(t, []string{
			"address", "agreeToTerms", "confirmPassword", "email",
			"firstName", "lastName", "password", "pin",
		}, errs.Fields())
	})

	t.Run("valid form", func(t *testing.T) {
		r := Registration{
			FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
			Password: "s3cret!", ConfirmPassword: "s3cret!",
			Phone: "650 253 0000", Address: "1600 Amphitheatre Pkwy",
			PostalCode: "94043", AgreeToTerms: true,
		}
		assert.True(t, r.Validate(loc).OK())
		assert.Equal(t, "Asha Rao", r.FullName())
		assert.Equal(t, "1600 Amphitheatre Pkwy, 94043, United States", r.FullAddress(loc, "United States"))
	})

	t.Run("field messages", func(t *testing.T) {
		r := Registration{
			FirstName: "Asha", LastName: "Rao", Email: "asha@",
			Password: "a", ConfirmPassword: "b",
			Phone: "12", Address: "x", PostalCode: "9404", AgreeToTerms: true,
		}
		errs := r.Validate(loc)
		assert.Equal(t, "Invalid email", errs["email"])
		assert.Equal(t, "Passwords do not match", errs["confirmPassword"])
		assert.Equal(t, "Expected format: #####", errs["pin"])
		assert.Equal(t, "Invalid contact number for selected country", errs["contact"])
	})
}

func TestShipping_Validate(t *testing.T) {
	in := Locale{Region: "IN", Postal: PostalRule{Template: "######"}}

	s := Shipping{FullName: "Ravi", Email: "ravi@example.in", CountryCode: "IN", Address: "MG Road", PostalCode: "56000a"}
	errs := s.Validate(in)
	assert.Equal(t, "Invalid postal code format", errs["pin"])

	s.PostalCode = "560001"
	assert.True(t, s.Validate(in).OK())

	// no country metadata: no postal requirement at all
	s.PostalCode = ""
	assert.True(t, s.Validate(Locale{}).OK())
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		pw    string
		score int
		label string
	}{
		{"", 0, ""},
		{"abc", 1, "Weak"},
		{"abcdefgh", 2, "Fair"},
		{"Abcdefgh", 3, "Good"},
		{"Abcdefg1", 4, "Strong"},
		{"Abcdef1!", 5, "Very Strong"},
	}
	for _, tt := range tests {
		score, label := PasswordStrength(tt.pw)
		assert.Equal(t, tt.score, score, tt.pw)
		assert.Equal(t, tt.label, label, tt.pw)
	}
}

func TestFieldErrors_Err(t *testing.T) {
	assert.NoError(t, FieldErrors{}.Err())

	err := FieldErrors{"email": "Invalid email"}.Err()
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email: Invalid email", err.Error())

	err = FieldErrors{"email": "Invalid email", "pin": "PIN is required"}.Err()
	assert.Equal(t, "2 fields are invalid: email, pin", err.Error())
}
