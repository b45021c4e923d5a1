package principalctx

import (
	"context"

	"github.com/andrebq/ticklist/auth"
)

type (
	key byte
)

var (
	principalKey = key(1)
)

func With(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Get returns the principal attached to ctx, the bool reports whether
// one was attached at all.
func Get(ctx context.Context) (auth.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return auth.Principal{}, false
	}
	return v.(auth.Principal), true
}
