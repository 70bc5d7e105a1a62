package di

import "sync"

// Token is a typed handle for a service registered in the container.
// Modules declare tokens in their di package; the type parameter makes
// cross-module resolution compile-time safe.
type Token[T any] struct {
	name string
}

// NewToken creates a token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registration key.
func (t Token[T]) Name() string { return t.name }

// lazy memoizes a factory so each service is constructed at most once,
// on first resolution.
type lazy[T any] struct {
	once    sync.Once
	factory func(ServiceRegistry) T
	value   T
}

func (l *lazy[T]) get(sr ServiceRegistry) T {
	l.once.Do(func() {
		l.value = l.factory(sr)
	})
	return l.value
}

// RegisterToken registers a lazily-constructed service under a typed token.
// The factory runs on first ResolveToken call and may resolve other tokens.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.Register(token.name, &lazy[T]{factory: factory})
}

// ResolveToken returns the service behind token, constructing it on first use.
// It panics if the token is missing, which indicates a module registration
// ordering bug.
func ResolveToken[T any](sr ServiceRegistry, token Token[T]) T {
	l := Resolve[*lazy[T]](sr, token.name)
	return l.get(sr)
}
