// Package validation holds the field validators shared by the signup and login forms.
//
// Every validator is pure and reports all violated rules, in a fixed order, rather
// than stopping at the first one.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
	UsernameMinLength = 3
	UsernameMaxLength = 30
)

const (
	MsgPasswordTooShort = "Password must be at least 8 characters long"
	MsgPasswordTooLong  = "Password must be at most 128 characters long"
	MsgPasswordNoUpper  = "Password must contain at least one uppercase letter"
	MsgPasswordNoLower  = "Password must contain at least one lowercase letter"
	MsgPasswordNoNumber = "Password must contain at least one number"
	MsgUsernameTooShort = "Username must be at least 3 characters long"
	MsgUsernameTooLong  = "Username must be at most 30 characters long"
	MsgUsernameCharset  = "Username can only contain letters, numbers, and underscores"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgMalformedID      = "ID must be a positive whole number"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Result is the outcome of one validation call. It is never persisted.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Merge concatenates the errors of several results, preserving order.
func Merge(results ...Result) Result {
	var errs []string
	for _, r := range results {
		errs = append(errs, r.Errors...)
	}
	return newResult(errs)
}

// ValidatePassword checks length in [8,128] and the presence of an ASCII uppercase
// letter, an ASCII lowercase letter and an ASCII digit. Other characters are allowed
// but count towards none of the classes, matching the ASCII-only username rules.
func ValidatePassword(password string) Result {
	var errs []string

	length := utf8.RuneCountInString(password)
	if length < PasswordMinLength {
		errs = append(errs, MsgPasswordTooShort)
	}
	if length > PasswordMaxLength {
		errs = append(errs, MsgPasswordTooLong)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case 'A' <= char && char <= 'Z':
			hasUpper = true
		case 'a' <= char && char <= 'z':
			hasLower = true
		case '0' <= char && char <= '9':
			hasNumber = true
		}
	}

	if !hasUpper {
		errs = append(errs, MsgPasswordNoUpper)
	}
	if !hasLower {
		errs = append(errs, MsgPasswordNoLower)
	}
	if !hasNumber {
		errs = append(errs, MsgPasswordNoNumber)
	}
	return newResult(errs)
}

// ValidateUsername checks length in [3,30] and that only ASCII letters, digits
// and underscores are used.
func ValidateUsername(username string) Result {
	var errs []string

	length := utf8.RuneCountInString(username)
	if length < UsernameMinLength {
		errs = append(errs, MsgUsernameTooShort)
	}
	if length > UsernameMaxLength {
		errs = append(errs, MsgUsernameTooLong)
	}
	// An empty name is already reported as too short
	if username != "" && !usernamePattern.MatchString(username) {
		errs = append(errs, MsgUsernameCharset)
	}
	return newResult(errs)
}

// ValidateEmail checks for a local@domain.tld shape without whitespace.
func ValidateEmail(email string) Result {
	if email == "" {
		return newResult([]string{MsgEmailRequired})
	}
	if !emailPattern.MatchString(email) {
		return newResult([]string{MsgEmailInvalid})
	}
	return newResult(nil)
}

// NormalizeEmail is the canonical form under which credentials are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseID parses a positive numeric identifier. Malformed input is a validation
// failure rather than an error.
func ParseID(raw string) (int64, Result) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, newResult([]string{MsgMalformedID})
	}
	return id, newResult(nil)
}
