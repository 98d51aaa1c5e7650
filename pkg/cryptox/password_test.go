package cryptox_test

import (
	"strings"
	"testing"

	"github.com/cataloghq/catalog/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, cryptox.VerifyPassword("Sup3rSecret!", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("wrong", hash), cryptox.ErrPasswordMismatch)
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)

	// Different salts must yield different encodings.
	require.NotEqual(t, a, b)
	require.NoError(t, cryptox.VerifyPassword("same-password", a))
	require.NoError(t, cryptox.VerifyPassword("same-password", b))
}

func TestVerifyPasswordRejectsBadFormat(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$not-base64!$aGFzaA",
	}
	for _, encoded := range cases {
		err := cryptox.VerifyPassword("pw", encoded)
		require.Error(t, err)
		require.NotErrorIs(t, err, cryptox.ErrPasswordMismatch)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := cryptox.FingerprintToken("opaque-token")
	require.Len(t, fp, 43)
	require.Equal(t, fp, cryptox.FingerprintToken("opaque-token"))
	require.NotEqual(t, fp, cryptox.FingerprintToken("other-token"))
}
