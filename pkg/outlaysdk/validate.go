package outlaysdk

import (
	"strings"
	"unicode"
)

// PasswordSpecials is the set of characters accepted as the required
// special character in a password. It matches the server-side policy.
const PasswordSpecials = "!@#$%^&*()_+-=[]{}|;:'\",.<>/?`~\\"

// ValidatePassword checks a candidate password against the account
// policy: at least 6 characters, at least one letter, one uppercase
// letter, one digit, and one special character. All problems are
// reported at once so a form can show the complete list.
func ValidatePassword(password string) error {
	var problems []string

	if len(password) < 6 {
		problems = append(problems, "password must be at least 6 characters long")
	}

	var hasLetter, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
			hasLetter = true
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(PasswordSpecials, r) {
			hasSpecial = true
		}
	}
	if !hasLetter {
		problems = append(problems, "password must contain a letter")
	}
	if !hasUpper {
		problems = append(problems, "password must contain an uppercase letter")
	}
	if !hasDigit {
		problems = append(problems, "password must contain a digit")
	}
	if !hasSpecial {
		problems = append(problems, "password must contain a special character")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// validateTOTPCode checks the shape of a TOTP code before it is sent.
func validateTOTPCode(code string) error {
	if len(code) != 6 {
		return &ValidationError{Problems: []string{"verification code must be 6 digits"}}
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return &ValidationError{Problems: []string{"verification code must contain only digits"}}
		}
	}
	return nil
}
