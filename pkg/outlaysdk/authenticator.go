package outlaysdk

import (
	"context"
	"encoding/json"
	"time"
)

// defaultCeremonyTimeout bounds how long an authenticator ceremony may
// take before the attempt is treated as denied.
const defaultCeremonyTimeout = 60 * time.Second

// AssertionOptions parameterize a login-time credential request. The
// challenge is raw bytes; implementations re-encode it as the platform
// requires.
type AssertionOptions struct {
	Challenge        []byte
	RelyingPartyID   string
	Timeout          time.Duration
	UserVerification string // "preferred" unless the server says otherwise
	AllowCredentials []string
}

// Authenticator abstracts the platform credential API. Implementations
// wrap failures into the ErrAuthenticatorDenied, ErrNoCredential and
// ErrAuthenticatorUnsupported sentinels; any other error is treated as a
// platform fault and surfaced as-is.
//
// Create performs a registration ceremony from server-issued creation
// options passed through verbatim. Get performs an assertion ceremony.
type Authenticator interface {
	Create(ctx context.Context, options json.RawMessage) (*CredentialDescriptor, error)
	Get(ctx context.Context, options AssertionOptions) (*CredentialDescriptor, error)
}
