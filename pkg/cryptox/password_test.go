package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r@secret")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, VerifyPassword("Sup3r@secret", hash))
	require.ErrorIs(t, VerifyPassword("Sup3r@secre", hash), ErrPasswordMismatch)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	}
	for _, h := range cases {
		require.Error(t, VerifyPassword("pw", h))
	}
}
