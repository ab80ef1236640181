package outlaysdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordAccepts(t *testing.T) {
	for _, password := range []string{
		"Ab1@yz",
		"Str0ng!Passphrase",
		"xX9?abc",
	} {
		require.NoError(t, ValidatePassword(password), "password %q should pass", password)
	}
}

func TestValidatePasswordRejects(t *testing.T) {
	tests := []struct {
		name     string
		password string
		problems int
	}{
		{"lowercase only", "abcdef", 3}, // missing upper, digit, special
		{"too short", "Ab1@y", 1},
		{"no digit", "Abcde@f", 1},
		{"no special", "Abcdef1", 1},
		{"digits only", "123456", 3},
		{"empty", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			require.Error(t, err)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Len(t, validation.Problems, tt.problems)
		})
	}
}

func TestValidatePasswordReportsAllProblemsAtOnce(t *testing.T) {
	err := ValidatePassword("abcdef")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Problems, "password must contain an uppercase letter")
	assert.Contains(t, validation.Problems, "password must contain a digit")
	assert.Contains(t, validation.Problems, "password must contain a special character")
}

func TestValidateTOTPCode(t *testing.T) {
	require.NoError(t, validateTOTPCode("123456"))
	require.Error(t, validateTOTPCode("12345"))
	require.Error(t, validateTOTPCode("1234567"))
	require.Error(t, validateTOTPCode("12345a"))
	require.Error(t, validateTOTPCode(""))
}
