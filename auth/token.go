package auth

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SecretEnvVar = "TICKLIST_AUTH_SECRET"
)

type (
	// Principal is the identity carried by a verified token, it lives
	// for the duration of a single request.
	Principal struct {
		ID       int64
		Username string
	}

	// TokenIssuer signs principals into bearer tokens and verifies
	// them back.
	TokenIssuer interface {
		Issue(p Principal) (string, error)
		Verify(token string) (Principal, error)
	}

	claims struct {
		jwt.RegisteredClaims
		Username string `json:"username"`
	}

	jwtIssuer struct {
		secret []byte
	}
)

// NewTokenIssuer returns a TokenIssuer that signs claims with HS256
// using the given shared secret.
//
// No expiry claim is set, a token stays valid until the secret is
// rotated. See the companion tests for why that is worth knowing.
func NewTokenIssuer(secret []byte) TokenIssuer {
	return jwtIssuer{secret: secret}
}

// SecretFromEnv reads the signing secret from the named environment
// variable and clears the variable afterwards, so the secret does not
// linger in the process environment.
func SecretFromEnv(varname string) ([]byte, error) {
	val := os.Getenv(varname)
	os.Setenv(varname, "")
	if len(val) == 0 {
		return nil, fmt.Errorf("auth: environment variable %v does not contain a signing secret", varname)
	}
	return []byte(val), nil
}

func (j jwtIssuer) Issue(p Principal) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(p.ID, 10),
		},
		Username: p.Username,
	})
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign token, cause %w", err)
	}
	return signed, nil
}

func (j jwtIssuer) Verify(tokenString string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Method.Alg())
		}
		return j.secret, nil
	})
	if err != nil {
		return Principal{}, InvalidToken{cause: err}
	}
	if !token.Valid {
		return Principal{}, InvalidToken{}
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return Principal{}, InvalidToken{cause: err}
	}
	return Principal{ID: id, Username: c.Username}, nil
}
