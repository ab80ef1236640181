// Package b64url converts between raw authenticator bytes and the
// base64url strings the API transports them as. WebAuthn credential IDs,
// challenges and assertion payloads all cross the wire in this form.
package b64url

import (
	"encoding/base64"
	"errors"
)

// ErrEncoding reports input that is not valid unpadded base64url. Seeing
// this on data the server produced means the wire contract is broken, so
// callers should treat it as fatal rather than retryable.
var ErrEncoding = errors.New("b64url: malformed base64url input")

// Encode returns the unpadded base64url form of b. Every byte sequence
// has exactly one encoding and the output never contains '+', '/' or '='.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode is the inverse of Encode. Padded input is accepted since some
// encoders emit it, but a length that is 1 mod 4 after stripping padding
// can never be produced by encoding any byte sequence and is rejected.
func Decode(s string) ([]byte, error) {
	// Strip any trailing '=' so both padded and unpadded forms decode.
	n := len(s)
	for n > 0 && s[n-1] == '=' {
		n--
	}
	s = s[:n]

	if len(s)%4 == 1 {
		return nil, ErrEncoding
	}

	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrEncoding
	}
	return b, nil
}
