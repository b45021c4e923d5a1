package auth

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"))
	want := Principal{ID: 42, Username: "alice"}
	token, err := issuer.Issue(want)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTokenTampering(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"))
	token, err := issuer.Issue(Principal{ID: 42, Username: "alice"})
	require.NoError(t, err)

	var invalid InvalidToken
	_, err = issuer.Verify(token + "x")
	require.ErrorAs(t, err, &invalid)

	_, err = issuer.Verify("not-even-a-token")
	require.ErrorAs(t, err, &invalid)

	// same token, different signing secret
	other := NewTokenIssuer([]byte("other-secret"))
	_, err = other.Verify(token)
	require.ErrorAs(t, err, &invalid)
}

func TestTokenCarriesNoExpiry(t *testing.T) {
	// Tokens are issued without an exp claim, so they stay valid until
	// the signing secret rotates. Anyone holding a leaked token keeps
	// access indefinitely. This test documents that weakness, it is not
	// a feature to rely on.
	issuer := NewTokenIssuer([]byte("test-secret"))
	token, err := issuer.Issue(Principal{ID: 42, Username: "alice"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	_, hasExp := body["exp"]
	require.False(t, hasExp, "tokens are knowingly issued without an expiry claim")
}

func TestSecretFromEnv(t *testing.T) {
	const varname = "TICKLIST_TEST_SECRET"
	t.Setenv(varname, "super-secret")
	secret, err := SecretFromEnv(varname)
	require.NoError(t, err)
	require.Equal(t, []byte("super-secret"), secret)
	require.Empty(t, os.Getenv(varname), "reading the secret should remove it from the environment")

	_, err = SecretFromEnv("TICKLIST_TEST_SECRET_UNSET")
	require.Error(t, err, "an empty secret must not be accepted")
}
