package theme

import (
	"context"
	"errors"
)

// ErrNoState is the panic value when theme state is read outside the scope
// it was provided to.
var ErrNoState = errors.New("theme: state read outside its provider; construct it with NewState at the application root and pass it down or attach it with WithState")

type stateKey struct{}

// WithState attaches the application's theme state to ctx.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the theme state attached to ctx, if any.
func FromContext(ctx context.Context) (*State, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(stateKey{}).(*State)
	return s, ok && s != nil
}

// MustFromContext returns the theme state attached to ctx and panics with
// ErrNoState when there is none.
func MustFromContext(ctx context.Context) *State {
	s, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoState)
	}
	return s
}
