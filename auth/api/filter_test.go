package api

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/andrebq/ticklist/auth"
	"github.com/andrebq/ticklist/internal/principalctx"
	"github.com/steinfletcher/apitest"
)

type (
	countingIssuer struct {
		inner       auth.TokenIssuer
		verifyCalls int32
	}
)

func (c *countingIssuer) Issue(p auth.Principal) (string, error) {
	return c.inner.Issue(p)
}

func (c *countingIssuer) Verify(token string) (auth.Principal, error) {
	atomic.AddInt32(&c.verifyCalls, 1)
	return c.inner.Verify(token)
}

func TestProtect(t *testing.T) {
	issuer := &countingIssuer{inner: auth.NewTokenIssuer([]byte("test-secret"))}
	sr := NewRealm(issuer, InMemoryTokenCache())

	var count uint32
	protected := sr.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalctx.Get(r.Context())
		if !ok {
			t.Error("protected handler should always see a principal")
		}
		if p.Username != "alice" {
			t.Errorf("unexpected principal %+v", p)
		}
		atomic.AddUint32(&count, 1)
		http.Error(w, "OK", http.StatusOK)
	}))

	apitest.Handler(protected).Get("/").Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(protected).Get("/").Header("Authorization", "Bearer garbage").Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(protected).Get("/").Header("Authorization", "garbage-without-bearer").Expect(t).Status(http.StatusUnauthorized).End()
	if count != 0 {
		t.Fatal("unauthenticated requests must never reach the protected handler")
	}

	token, err := issuer.Issue(auth.Principal{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	apitest.Handler(protected).Get("/").Header("Authorization", fmt.Sprintf("Bearer %v", token)).Expect(t).Status(http.StatusOK).End()
	if count != 1 {
		t.Fatal("protected handler should have been called exactly once")
	}
}

func TestProtectCachesVerifiedTokens(t *testing.T) {
	issuer := &countingIssuer{inner: auth.NewTokenIssuer([]byte("test-secret"))}
	sr := NewRealm(issuer, InMemoryTokenCache())
	protected := sr.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "OK", http.StatusOK)
	}))

	token, err := issuer.Issue(auth.Principal{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		apitest.Handler(protected).Get("/").Header("Authorization", fmt.Sprintf("Bearer %v", token)).Expect(t).Status(http.StatusOK).End()
	}
	if calls := atomic.LoadInt32(&issuer.verifyCalls); calls != 1 {
		t.Fatalf("repeat requests with the same token should hit the cache, issuer verified %v times", calls)
	}
}
