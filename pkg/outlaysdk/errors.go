package outlaysdk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrVerificationInProgress is returned synchronously when a second
// verification attempt starts while one is already in flight on the same
// flow. The pending attempt is unaffected.
var ErrVerificationInProgress = errors.New("outlaysdk: a verification attempt is already in progress")

// ValidationError reports client-side input problems found before any
// request is made. The flow state does not change when one is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "outlaysdk: invalid input: " + strings.Join(e.Problems, "; ")
}

// ServerError is any structured API failure that is not a verification
// outcome: bad requests, auth failures on non-MFA endpoints, 5xx.
type ServerError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("outlaysdk: server error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("outlaysdk: server error %d: %s", e.StatusCode, e.Message)
}

// VerificationError means the server rejected a proof: wrong TOTP code or
// an assertion that failed signature checks. The challenge stays live, so
// the caller may retry with a fresh proof.
type VerificationError struct {
	Code    string
	Message string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("outlaysdk: verification rejected (%s): %s", e.Code, e.Message)
}

// ChallengeExpiredError means the challenge is gone: expired, already
// consumed, or invalidated by too many failed attempts. The flow must be
// restarted from the beginning.
type ChallengeExpiredError struct {
	Message string
}

func (e *ChallengeExpiredError) Error() string {
	if e.Message == "" {
		return "outlaysdk: challenge expired or already used"
	}
	return "outlaysdk: " + e.Message
}

// EncodingError reports malformed base64url material, locally detected.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("outlaysdk: malformed base64url in %s: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Authenticator failure sentinels. Implementations of Authenticator wrap
// platform outcomes into these so flows can map them without knowing the
// platform.
var (
	// ErrAuthenticatorDenied covers user cancellation, timeout, and
	// permission denial. Indistinguishable on purpose.
	ErrAuthenticatorDenied = errors.New("outlaysdk: authenticator operation was cancelled or not allowed")

	// ErrNoCredential means no matching credential exists on the device.
	ErrNoCredential = errors.New("outlaysdk: no matching credential on this device")

	// ErrAuthenticatorUnsupported means the device cannot perform the
	// requested ceremony at all.
	ErrAuthenticatorUnsupported = errors.New("outlaysdk: authenticator not supported on this device")
)

// UserMessage converts any flow error into text suitable to show an end
// user. Internal detail never leaks through it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthenticatorDenied):
		return "Authentication was cancelled or not allowed."
	case errors.Is(err, ErrNoCredential):
		return "No passkey for this account was found on this device."
	case errors.Is(err, ErrAuthenticatorUnsupported):
		return "This device does not support passkeys."
	case errors.Is(err, ErrVerificationInProgress):
		return "A verification attempt is already in progress."
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return strings.Join(validation.Problems, " ")
	}
	var expired *ChallengeExpiredError
	if errors.As(err, &expired) {
		return "Your verification session has expired. Please start again."
	}
	var verification *VerificationError
	if errors.As(err, &verification) {
		if verification.Message != "" {
			return verification.Message
		}
		return "The code or credential was not accepted. Please try again."
	}
	var encoding *EncodingError
	if errors.As(err, &encoding) {
		return "Something went wrong decoding server data. Please start again."
	}
	var server *ServerError
	if errors.As(err, &server) {
		if server.Message != "" {
			return server.Message
		}
		return "The server reported an error. Please try again."
	}
	return "Something went wrong. Please try again."
}

// parseErrorResponse maps a non-2xx response to the error taxonomy.
// Classification prefers the machine-readable code, falls back to the
// status class, and finally to a generic ServerError.
func parseErrorResponse(status int, body []byte) error {
	var er ErrorResponse
	if err := unmarshalLoose(body, &er); err == nil && er.Error != "" {
		switch er.Error {
		case "challenge_expired", "challenge_not_found":
			return &ChallengeExpiredError{Message: er.Message}
		case "invalid_code", "invalid_credential", "verification_failed":
			return &VerificationError{Code: er.Error, Message: er.Message}
		}
		return &ServerError{StatusCode: status, Code: er.Error, Message: er.Message}
	}

	if status == http.StatusGone {
		return &ChallengeExpiredError{}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &ServerError{StatusCode: status, Message: msg}
}
