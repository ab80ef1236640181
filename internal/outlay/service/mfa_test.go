package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/cryptox"
	"github.com/outlaydev/outlay/pkg/idx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

type mfaFixture struct {
	users *UserService
	mfa   *MFAService
}

func newMFAFixture(t *testing.T) *mfaFixture {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))
	st := newTestStore(t)
	sessions := newTestIssuer(t)

	return &mfaFixture{
		users: &UserService{Store: st, Sessions: sessions},
		mfa:   &MFAService{Store: st, Sessions: sessions, Issuer: "Outlay Test"},
	}
}

// enroll invites a user and walks them to an open enrollment challenge.
func (f *mfaFixture) enroll(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()

	_, token, err := f.users.InviteUser(ctx, email, "Test User", "", "admin-1")
	require.NoError(t, err)

	challengeID, err := f.users.SetupPassword(ctx, token, "", "Ab1@yz")
	require.NoError(t, err)
	return challengeID
}

func TestSelectMethodTOTP(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "gia@example.com")

	material, err := f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)
	require.Equal(t, challengeID, material.ChallengeID)
	require.NotEmpty(t, material.Secret)
	require.Contains(t, material.OTPAuthURL, "otpauth://totp/")
	require.True(t, strings.HasPrefix(material.QRCode, "data:image/png;base64,"))
	require.Empty(t, material.Options)

	t.Run("unknown method rejected", func(t *testing.T) {
		_, err := f.mfa.SelectMethod(ctx, challengeID, "SMS")
		require.ErrorIs(t, err, ErrInvalidMethod)
	})

	t.Run("unknown challenge looks expired", func(t *testing.T) {
		_, err := f.mfa.SelectMethod(ctx, "no-such-challenge", domain.MethodTOTP)
		require.ErrorIs(t, err, ErrChallengeExpired)
	})
}

func TestEnrollmentTOTPEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "hana@example.com")

	material, err := f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)

	t.Run("wrong code counts an attempt but keeps the challenge", func(t *testing.T) {
		_, err := f.mfa.VerifyEnrollment(ctx, challengeID, "000000", nil)
		require.ErrorIs(t, err, ErrInvalidTOTPCode)
	})

	code, err := totp.GenerateCode(material.Secret, time.Now())
	require.NoError(t, err)

	outcome, err := f.mfa.VerifyEnrollment(ctx, challengeID, code, nil)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Token)
	require.True(t, outcome.User.MFAEnrolled())
	require.Equal(t, domain.MethodTOTP, *outcome.User.MFAMethod)

	claims, err := f.users.Sessions.Signer.Verify(outcome.Token)
	require.NoError(t, err)
	require.True(t, claims.MFAVerified)
	require.Contains(t, claims.AMR, "otp")
	require.Contains(t, claims.AMR, "mfa")

	t.Run("challenge is single use", func(t *testing.T) {
		code, err := totp.GenerateCode(material.Secret, time.Now())
		require.NoError(t, err)
		_, err = f.mfa.VerifyEnrollment(ctx, challengeID, code, nil)
		require.ErrorIs(t, err, ErrChallengeExpired)
	})
}

func TestEnrollmentAttemptBudget(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "ivan@example.com")

	material, err := f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)

	for i := 0; i < domain.MaxChallengeAttempts-1; i++ {
		_, err := f.mfa.VerifyEnrollment(ctx, challengeID, "000000", nil)
		require.ErrorIs(t, err, ErrInvalidTOTPCode)
	}

	// The final failure consumes the challenge.
	_, err = f.mfa.VerifyEnrollment(ctx, challengeID, "000000", nil)
	require.ErrorIs(t, err, ErrChallengeExpired)

	// Even a now-correct code is too late.
	code, err := totp.GenerateCode(material.Secret, time.Now())
	require.NoError(t, err)
	_, err = f.mfa.VerifyEnrollment(ctx, challengeID, code, nil)
	require.ErrorIs(t, err, ErrChallengeExpired)
}

func TestEnrollmentRequiresMethodAndProof(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "jo@example.com")

	t.Run("verify before choosing a method", func(t *testing.T) {
		_, err := f.mfa.VerifyEnrollment(ctx, challengeID, "123456", nil)
		require.ErrorIs(t, err, ErrInvalidMethod)
	})

	_, err := f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)

	t.Run("empty proof rejected without burning an attempt", func(t *testing.T) {
		_, err := f.mfa.VerifyEnrollment(ctx, challengeID, "", nil)
		require.ErrorIs(t, err, ErrMissingProof)
	})
}

func TestLoginWithTOTP(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "kim@example.com")

	material, err := f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)
	code, err := totp.GenerateCode(material.Secret, time.Now())
	require.NoError(t, err)
	_, err = f.mfa.VerifyEnrollment(ctx, challengeID, code, nil)
	require.NoError(t, err)

	outcome, err := f.users.Login(ctx, nil, "kim@example.com", "Ab1@yz")
	require.NoError(t, err)
	require.True(t, outcome.MFARequired)
	require.Empty(t, outcome.Token)
	require.NotEmpty(t, outcome.ChallengeID)
	require.Equal(t, domain.MethodTOTP, outcome.Method)

	t.Run("wrong code retryable", func(t *testing.T) {
		_, err := f.mfa.VerifyLogin(ctx, outcome.ChallengeID, "000000", nil)
		require.ErrorIs(t, err, ErrInvalidTOTPCode)
	})

	code, err = totp.GenerateCode(material.Secret, time.Now())
	require.NoError(t, err)

	auth, err := f.mfa.VerifyLogin(ctx, outcome.ChallengeID, code, nil)
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)

	claims, err := f.users.Sessions.Signer.Verify(auth.Token)
	require.NoError(t, err)
	require.True(t, claims.MFAVerified)
	require.Equal(t, []string{"pwd", "otp", "mfa"}, claims.AMR)

	t.Run("login challenge is single use", func(t *testing.T) {
		code, err := totp.GenerateCode(material.Secret, time.Now())
		require.NoError(t, err)
		_, err = f.mfa.VerifyLogin(ctx, outcome.ChallengeID, code, nil)
		require.ErrorIs(t, err, ErrChallengeExpired)
	})

	t.Run("enrollment challenge cannot verify a login", func(t *testing.T) {
		again, err := f.users.Login(ctx, nil, "kim@example.com", "Ab1@yz")
		require.NoError(t, err)

		_, err = f.mfa.VerifyEnrollment(ctx, again.ChallengeID, "123456", nil)
		require.ErrorIs(t, err, ErrChallengeExpired)
	})
}

// rollbackStore forces its transactions to roll back after the body has
// run, exposing what a failed commit leaves behind.
type rollbackStore struct {
	store.Store
	fail bool
}

var errCommitFailed = errors.New("commit failed")

func (s *rollbackStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if !s.fail {
		return s.Store.WithTx(ctx, fn)
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errCommitFailed
	})
}

func TestEnrollmentCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "mia@example.com")

	_, err := f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.NoError(t, err)

	ch, err := f.mfa.Store.Challenges().GetChallenge(ctx, challengeID)
	require.NoError(t, err)

	// Shape the commit the way a verified passkey enrollment sees it.
	method := domain.MethodPasskey
	ch.Method = &method
	ch.PendingTOTP = nil
	passkey := domain.Passkey{
		ID:           idx.New().String(),
		UserID:       ch.UserID,
		CredentialID: []byte("credential-1"),
		PublicKey:    []byte("public-key-1"),
		CreatedAt:    time.Now().UTC(),
	}

	flaky := &rollbackStore{Store: f.mfa.Store, fail: true}
	mfa := &MFAService{Store: flaky}

	require.ErrorIs(t, mfa.commitEnrollment(ctx, ch, &passkey), errCommitFailed)

	t.Run("failed commit leaves nothing behind", func(t *testing.T) {
		keys, err := f.mfa.Store.Passkeys().ListUserPasskeys(ctx, ch.UserID)
		require.NoError(t, err)
		require.Empty(t, keys)

		user, err := f.mfa.Store.Users().GetUserByID(ctx, ch.UserID)
		require.NoError(t, err)
		require.False(t, user.MFAEnrolled())

		_, err = f.mfa.Store.Challenges().GetChallenge(ctx, challengeID)
		require.NoError(t, err)
	})

	t.Run("same challenge and credential retry cleanly", func(t *testing.T) {
		flaky.fail = false
		require.NoError(t, mfa.commitEnrollment(ctx, ch, &passkey))

		keys, err := f.mfa.Store.Passkeys().ListUserPasskeys(ctx, ch.UserID)
		require.NoError(t, err)
		require.Len(t, keys, 1)

		user, err := f.mfa.Store.Users().GetUserByID(ctx, ch.UserID)
		require.NoError(t, err)
		require.True(t, user.MFAEnrolled())

		_, err = f.mfa.Store.Challenges().GetChallenge(ctx, challengeID)
		require.Error(t, err)
	})
}

func TestExpiredChallengeIsConsumed(t *testing.T) {
	ctx := context.Background()
	f := newMFAFixture(t)
	challengeID := f.enroll(t, "lee@example.com")

	// Age the challenge past its window.
	ch, err := f.mfa.Store.Challenges().GetChallenge(ctx, challengeID)
	require.NoError(t, err)
	ch.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.mfa.Store.Challenges().UpdateChallengeMethod(ctx, challengeID, ch))

	_, err = f.mfa.SelectMethod(ctx, challengeID, domain.MethodTOTP)
	require.ErrorIs(t, err, ErrChallengeExpired)

	// The expired row was deleted on sight.
	_, err = f.mfa.Store.Challenges().GetChallenge(ctx, challengeID)
	require.Error(t, err)
}
