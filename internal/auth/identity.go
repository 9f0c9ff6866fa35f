package auth

import (
	"context"
	"strings"
)

// Identity is the verified caller, as asserted by the identity provider.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// DisplayName is the full name, or the part of the email before '@'.
func (id Identity) DisplayName() string {
	if n := strings.TrimSpace(id.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(id.Email, "@")
	return local
}

type ctxKey struct{}

type ctxVal struct {
	id  *Identity
	err error
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctxVal{id: id})
}

func withFailure(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctxVal{err: err})
}

// FromContext returns the caller, or nil for a guest.
func FromContext(ctx context.Context) *Identity {
	v, _ := ctx.Value(ctxKey{}).(ctxVal)
	return v.id
}

// Require returns the caller or the reason there is none: the token error when
// a bad token was sent, ErrUnauthenticated otherwise.
func Require(ctx context.Context) (*Identity, error) {
	v, _ := ctx.Value(ctxKey{}).(ctxVal)
	if v.id != nil {
		return v.id, nil
	}
	if v.err != nil {
		return nil, v.err
	}
	return nil, ErrUnauthenticated
}
