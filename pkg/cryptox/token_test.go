package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43) // 32 bytes -> 43 chars of unpadded base64url

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
	_, err = GenerateToken(-4)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-token")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("some-token"))
	require.NotEqual(t, fp, FingerprintToken("some-other-token"))
}
