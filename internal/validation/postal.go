package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrPostalLength = errors.New("postal code has the wrong length")
	ErrPostalFormat = errors.New("invalid postal code format")
)

// CompilePostalTemplate turns a template such as "@#@ #@#" into an anchored,
// case-insensitive pattern: '#' matches a digit, '@' a letter, and every
// other character matches itself.
func CompilePostalTemplate(template string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range template {
		switch r {
		case '#':
			b.WriteString(`\d`)
		case '@':
			b.WriteString(`[A-Za-z]`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// PostalRule describes a country's postal code. Template is the '#'/'@'
// shape; Regex, when set, is the server-supplied pattern and wins over the
// template.
type PostalRule struct {
	Template string
	Regex    string
}

// Required reports whether the country uses postal codes at all.
func (r PostalRule) Required() bool { return r.Template != "" }

// Validate checks code. A rule without a template accepts anything.
func (r PostalRule) Validate(code string) error {
	if !r.Required() {
		return nil
	}
	want := utf8.RuneCountInString(r.Template)
	if utf8.RuneCountInString(code) != want {
		return fmt.Errorf("%w: expected %d characters (%s)", ErrPostalLength, want, r.Template)
	}

	re, err := r.pattern()
	if err != nil {
		return err
	}
	if !re.MatchString(code) {
		return fmt.Errorf("%w: expected %s", ErrPostalFormat, r.Template)
	}
	return nil
}

func (r PostalRule) pattern() (*regexp.Regexp, error) {
	if r.Regex != "" {
		// some published patterns use syntax RE2 does not support; those
		// fall back to the template
		if re, err := regexp.Compile("(?i)" + r.Regex); err == nil {
			return re, nil
		}
	}
	re, err := CompilePostalTemplate(r.Template)
	if err != nil {
		return nil, fmt.Errorf("compile postal template %q: %w", r.Template, err)
	}
	return re, nil
}
