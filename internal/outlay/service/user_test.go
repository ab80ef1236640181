package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/internal/outlay/store/drivers/sqlite"
	"github.com/outlaydev/outlay/pkg/cryptox"
	"github.com/outlaydev/outlay/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestIssuer(t *testing.T) *SessionIssuer {
	t.Helper()

	signer, err := jwtx.NewSigner("test-key")
	require.NoError(t, err)
	return &SessionIssuer{Signer: signer, Issuer: "outlay-test", TTL: time.Minute}
}

func newUserService(t *testing.T) *UserService {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))
	return &UserService{Store: newTestStore(t), Sessions: newTestIssuer(t)}
}

func TestValidatePasswordPolicy(t *testing.T) {
	t.Parallel()

	t.Run("accepts a compliant password", func(t *testing.T) {
		require.NoError(t, ValidatePasswordPolicy("Ab1@yz"))
	})

	t.Run("rejects lowercase-only", func(t *testing.T) {
		require.ErrorIs(t, ValidatePasswordPolicy("abcdef"), ErrPasswordPolicy)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		require.ErrorIs(t, ValidatePasswordPolicy("Ab1@"), ErrPasswordPolicy)
	})

	t.Run("rejects missing special", func(t *testing.T) {
		require.ErrorIs(t, ValidatePasswordPolicy("Abc123"), ErrPasswordPolicy)
	})
}

func TestInviteAndSetupPassword(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	user, token, err := svc.InviteUser(ctx, "Casey@Example.com", "Casey", "", "admin-1")
	require.NoError(t, err)
	require.Equal(t, "casey@example.com", user.Email)
	require.Equal(t, "member", user.Role)
	require.NotEmpty(t, token)

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, _, err := svc.InviteUser(ctx, "casey@example.com", "Casey Again", "", "admin-1")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("weak password rejected before anything is consumed", func(t *testing.T) {
		_, err := svc.SetupPassword(ctx, token, "", "abcdef")
		require.ErrorIs(t, err, ErrPasswordPolicy)
	})

	challengeID, err := svc.SetupPassword(ctx, token, "", "Ab1@yz")
	require.NoError(t, err)
	require.NotEmpty(t, challengeID)

	stored, err := svc.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.Activated())
	require.NoError(t, cryptox.VerifyPassword("Ab1@yz", stored.PasswordHash))

	t.Run("token is single use", func(t *testing.T) {
		_, err := svc.SetupPassword(ctx, token, "", "Ab1@yz")
		require.ErrorIs(t, err, ErrInvalidInviteToken)
	})

	t.Run("user-ID path refuses activated accounts", func(t *testing.T) {
		_, err := svc.SetupPassword(ctx, "", user.ID, "Ab1@yz")
		require.ErrorIs(t, err, ErrAlreadyActivated)
	})
}

func TestSetupPasswordByUserID(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	user, _, err := svc.InviteUser(ctx, "dana@example.com", "Dana", "", "admin-1")
	require.NoError(t, err)

	challengeID, err := svc.SetupPassword(ctx, "", user.ID, "Ab1@yz")
	require.NoError(t, err)
	require.NotEmpty(t, challengeID)

	t.Run("unknown references rejected", func(t *testing.T) {
		_, err := svc.SetupPassword(ctx, "", "", "Ab1@yz")
		require.ErrorIs(t, err, ErrInvalidInviteToken)

		_, err = svc.SetupPassword(ctx, "", "no-such-user", "Ab1@yz")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestLoginWithoutMFA(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	user, token, err := svc.InviteUser(ctx, "erin@example.com", "Erin", "", "admin-1")
	require.NoError(t, err)
	_, err = svc.SetupPassword(ctx, token, "", "Ab1@yz")
	require.NoError(t, err)

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, nil, "erin@example.com", "Wrong1@")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown account rejected identically", func(t *testing.T) {
		_, err := svc.Login(ctx, nil, "nobody@example.com", "Ab1@yz")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	outcome, err := svc.Login(ctx, nil, "erin@example.com", "Ab1@yz")
	require.NoError(t, err)
	require.False(t, outcome.MFARequired)
	require.NotEmpty(t, outcome.Token)
	require.Equal(t, user.ID, outcome.User.ID)

	claims, err := svc.Sessions.Signer.Verify(outcome.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.Subject)
	require.Equal(t, []string{"pwd"}, claims.AMR)
	require.False(t, claims.MFAVerified)
}

func TestLoginNotActivated(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	_, _, err := svc.InviteUser(ctx, "frank@example.com", "Frank", "", "admin-1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, nil, "frank@example.com", "Ab1@yz")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
