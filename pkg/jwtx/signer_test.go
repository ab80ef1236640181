package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("outlay-key-001")
	require.NoError(t, err)

	claims := NewSessionClaims(
		"01JA0000000000000000000000",
		"casey@example.com",
		"Casey",
		[]string{"pwd", "otp", "mfa"},
		true,
		"outlay-api",
		time.Hour,
		time.Now().UTC(),
	)

	raw, err := s.Sign(claims)
	require.NoError(t, err)

	got, err := s.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "casey@example.com", got.Email)
	require.Equal(t, []string{"pwd", "otp", "mfa"}, got.AMR)
	require.True(t, got.MFAVerified)
	require.NoError(t, got.ValidateExpiry())
	require.NoError(t, got.ValidateIssuer("outlay-api"))
	require.ErrorIs(t, got.ValidateIssuer("someone-else"), ErrIssuer)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	a, err := NewSigner("key-a")
	require.NoError(t, err)
	b, err := NewSigner("key-b")
	require.NoError(t, err)

	raw, err := a.Sign(NewSessionClaims("u1", "a@b.c", "A", []string{"pwd"}, false, "outlay-api", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.ErrorIs(t, err, ErrSignature)

	_, err = b.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrSignature)
}

func TestExpiredTokenFailsValidation(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("key")
	require.NoError(t, err)

	past := time.Now().UTC().Add(-2 * time.Hour)
	raw, err := s.Sign(NewSessionClaims("u1", "a@b.c", "A", []string{"pwd"}, false, "outlay-api", time.Hour, past))
	require.NoError(t, err)

	got, err := s.Verify(raw)
	require.NoError(t, err)
	require.ErrorIs(t, got.ValidateExpiry(), ErrExpired)
}

func TestPEMRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("key")
	require.NoError(t, err)

	pemBytes, err := s.MarshalPEM()
	require.NoError(t, err)

	loaded, err := NewSignerFromPEM("key", pemBytes)
	require.NoError(t, err)

	raw, err := s.Sign(NewSessionClaims("u1", "a@b.c", "A", nil, false, "outlay-api", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	_, err = loaded.Verify(raw)
	require.NoError(t, err)
}
