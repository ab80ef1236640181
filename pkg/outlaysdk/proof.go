package outlaysdk

import (
	"context"
	"net/http"
)

// proofPurpose selects which verification endpoint a proof is destined
// for. Enrollment and login accept the same proof kinds but name the
// TOTP field differently on the wire.
type proofPurpose int

const (
	purposeEnrollment proofPurpose = iota
	purposeLogin
)

func (p proofPurpose) path() string {
	if p == purposeLogin {
		return "/v1/users/verify-login-mfa"
	}
	return "/v1/users/verify-mfa-setup"
}

// verifyRequest is the union wire body for both verification endpoints.
// Exactly one proof member is set per request.
type verifyRequest struct {
	ChallengeID string                `json:"challengeId"`
	Code        string                `json:"code,omitempty"`     // enrollment TOTP
	TOTPCode    string                `json:"totpCode,omitempty"` // login TOTP
	Credential  *CredentialDescriptor `json:"credential,omitempty"`
}

// Proof is one piece of evidence submitted against a challenge.
type Proof interface {
	fill(req *verifyRequest, purpose proofPurpose)
}

// TOTPProof is a six-digit authenticator app code.
type TOTPProof struct {
	Code string
}

func (p TOTPProof) fill(req *verifyRequest, purpose proofPurpose) {
	if purpose == purposeLogin {
		req.TOTPCode = p.Code
	} else {
		req.Code = p.Code
	}
}

// PasskeyProof is a credential produced by an authenticator ceremony.
type PasskeyProof struct {
	Credential *CredentialDescriptor
}

func (p PasskeyProof) fill(req *verifyRequest, purpose proofPurpose) {
	req.Credential = p.Credential
}

// submitProof is the single verification submitter both flows share.
// Endpoint selection is the only thing that differs between enrollment
// and login verification.
func (c *SDKClient) submitProof(ctx context.Context, purpose proofPurpose, challengeID string, proof Proof) (*AuthResult, error) {
	req := verifyRequest{ChallengeID: challengeID}
	proof.fill(&req, purpose)

	var out AuthResult
	if err := c.postJSON(ctx, purpose.path(), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
