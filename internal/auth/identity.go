package auth

import "context"

type contextKey string

const ctxKeyIdentity contextKey = "identity"

// Identity is the authenticated caller attached to a request by the auth gate.
type Identity struct {
	ID       string
	Username string
	Roles    []string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom extracts the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}
