package api

import (
	"net/http"
	"regexp"

	"github.com/andrebq/ticklist/auth"
	"github.com/andrebq/ticklist/internal/logutil"
	"github.com/andrebq/ticklist/internal/principalctx"
)

type (
	// SecurityRealm rejects requests that do not carry a verifiable
	// bearer token before they reach any business logic.
	SecurityRealm struct {
		tokens auth.TokenIssuer
		cache  TokenCache
	}
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)
)

func NewRealm(tokens auth.TokenIssuer, cache TokenCache) *SecurityRealm {
	return &SecurityRealm{
		tokens: tokens,
		cache:  cache,
	}
}

// Protect wraps sensitive so only requests with a valid token get
// through. The verified principal ends up on the request context.
//
// The token is taken at face value once its signature checks out, no
// lookup against the credential store happens per request. A user
// removed after issuance keeps a working token for as long as the
// token lives, which without an expiry claim is indefinitely.
func (s *SecurityRealm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.checkToken(r)
		if !ok {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		sensitive.ServeHTTP(w, r.WithContext(principalctx.With(r.Context(), p)))
	})
}

func (s *SecurityRealm) checkToken(r *http.Request) (auth.Principal, bool) {
	ctx := r.Context()
	log := logutil.GetOrDefault(ctx)
	hdrVal := r.Header.Get("Authorization")
	groups := bearerTokenRE.FindStringSubmatch(hdrVal)
	if len(groups) == 0 {
		return auth.Principal{}, false
	}
	tk := groups[1]
	if s.cache != nil {
		p, found, err := s.cache.Lookup(ctx, tk)
		if err != nil {
			log.Error().Err(err).Msg("Unexpected error when checking for token in token cache")
		} else if found {
			return p, true
		}
	}
	p, err := s.tokens.Verify(tk)
	if err != nil {
		return auth.Principal{}, false
	}
	if s.cache != nil {
		if err := s.cache.Save(ctx, tk, p); err != nil {
			log.Error().Err(err).Msg("Unexpected error when saving token to token cache")
		}
	}
	return p, true
}
