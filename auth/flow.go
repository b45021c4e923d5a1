// Package auth implements the credential flow of ticklist: password
// hashing, token issuance and the orchestration between the two.
//
// The flow never treats a failed lookup or a wrong password as an
// error, both are a plain "no match" and the caller decides how to
// answer. Only integrity failures (a hash that cannot be parsed, a
// signer that cannot sign) propagate as errors, those point at a
// broken deployment rather than a bad request.
package auth

import (
	"context"

	"github.com/andrebq/ticklist/store"
)

type (
	// UserStore is the slice of the persistence layer the flow needs.
	UserStore interface {
		FindUserByUsername(ctx context.Context, username string) (*store.User, error)
		CreateUser(ctx context.Context, username string, passwordHash string) (*store.User, error)
	}

	// Flow wires the credential store, the hasher and the token
	// issuer together. All collaborators are handed over at
	// construction time.
	Flow struct {
		users  UserStore
		hasher Hasher
		tokens TokenIssuer
	}
)

func NewFlow(users UserStore, hasher Hasher, tokens TokenIssuer) *Flow {
	return &Flow{users: users, hasher: hasher, tokens: tokens}
}

// ValidateCredentials checks username/password against the store and
// returns the matching principal, or nil when there is no match.
//
// An unknown username returns early without touching the hasher. That
// makes the negative path cheaper but also measurably faster than a
// wrong password, callers that care about user enumeration should not
// rely on response timing being uniform.
func (f *Flow) ValidateCredentials(ctx context.Context, username string, password string) (*Principal, error) {
	user, err := f.users.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	ok, err := f.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &Principal{ID: user.ID, Username: user.Username}, nil
}

// Login issues a bearer token for an already validated principal.
// Signing errors propagate unchanged, a process that cannot sign is
// misconfigured and should not pretend otherwise.
func (f *Flow) Login(ctx context.Context, p Principal) (string, error) {
	return f.tokens.Issue(p)
}

// Register hashes the password and stores the new user. The raw
// password never reaches the store. A taken username surfaces as
// store.UsernameTaken.
func (f *Flow) Register(ctx context.Context, username string, password string) (*Principal, error) {
	hash, err := f.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user, err := f.users.CreateUser(ctx, username, hash)
	if err != nil {
		return nil, err
	}
	return &Principal{ID: user.ID, Username: user.Username}, nil
}
