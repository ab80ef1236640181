/*
Package outlaysdk provides a client SDK for the Outlay expense platform
API, covering account activation, multi-factor enrollment, login, and
the authenticated expense endpoints.

# Overview

The package is organized around three main types:

  - SDKClient: unauthenticated endpoints and flow construction
  - EnrollmentFlow / LoginFlow: the stateful authentication ceremonies
  - APISession: authenticated operations backed by a SessionStore

Create an SDKClient to talk to an Outlay deployment:

	client := outlaysdk.NewSDKClient("https://outlay.example.com")

# MFA Enrollment

Invited accounts set a password and enroll a second factor in one
ceremony. EnrollmentFlow tracks that ceremony as a state machine; states
only move forward and a failed flow must be restarted:

	store, _ := outlaysdk.NewFileSessionStore(path)
	flow := client.NewEnrollmentFlow(authenticator, store)

	_, err := flow.SubmitPassword(ctx, outlaysdk.ActivationRef{Token: inviteToken}, password)
	material, err := flow.ChooseMethod(ctx, outlaysdk.MethodTOTP)
	// show material.QRCode / material.Secret to the user
	session, err := flow.SubmitTOTPProof(ctx, codeFromApp)

Passkey enrollment instead calls flow.RegisterPasskey(ctx), which runs a
registration ceremony against the injected Authenticator.

# Login

LoginFlow authenticates an existing user. When the account has a second
factor the first step returns *MFARequiredError and the flow waits for a
proof:

	flow := client.NewLoginFlow(authenticator, store)
	session, err := flow.Login(ctx, email, password)

	var mfa *outlaysdk.MFARequiredError
	if errors.As(err, &mfa) {
		switch mfa.Method {
		case outlaysdk.MethodTOTP:
			session, err = flow.VerifyTOTP(ctx, code)
		case outlaysdk.MethodPasskey:
			session, err = flow.VerifyPasskey(ctx)
		}
	}

At most one verification request is in flight per flow; a concurrent
attempt fails synchronously with ErrVerificationInProgress.

# Sessions

A SessionStore persists the bearer token and user record as one atomic
unit. FileSessionStore writes a JSON file through a temp-and-rename so
partial sessions can never be observed; MemorySessionStore suits tests.
Flows commit into the store on success, and APISession reads from it on
every call:

	api := client.WithStore(store)
	me, err := api.Me(ctx)
	expenses, err := api.ListExpenses(ctx, teamID)

# Error Handling

Failures are typed so callers can branch without string matching:

  - *ValidationError: local input problems, nothing was sent
  - *VerificationError: the server rejected a proof, retry is allowed
  - *ChallengeExpiredError: the challenge is gone, restart the flow
  - *ServerError: any other structured API failure
  - *EncodingError: malformed base64url material
  - ErrVerificationInProgress, ErrAuthenticatorDenied, ErrNoCredential,
    ErrAuthenticatorUnsupported: sentinel conditions

UserMessage converts any of these into text safe to show an end user.
*/
package outlaysdk
