// Package di provides a minimal string-token service container used to wire
// bounded-context modules together at startup.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	Get(token string) any
	Has(token string) bool
}

// Container registers and resolves services by token.
type Container interface {
	ServiceRegistry
	Register(token string, service any)
}

type container struct {
	services map[string]any
	mu       sync.RWMutex
}

// NewContainer creates an empty Container.
func NewContainer() Container {
	return &container{
		services: make(map[string]any),
	}
}

// Register stores a service under the given token.
// Registering the same token twice panics: double registration is a wiring
// bug, not a runtime condition.
func (c *container) Register(token string, service any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.services[token]; exists {
		panic(fmt.Sprintf("di: service %q already registered", token))
	}
	c.services[token] = service
}

// Get returns the service registered under token, or nil.
func (c *container) Get(token string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.services[token]
}

// Has reports whether a service is registered under token.
func (c *container) Has(token string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.services[token]
	return ok
}

// Resolve returns the service registered under token asserted to T.
// It panics if the token is missing or holds a different type, which
// indicates a module registration ordering bug.
func Resolve[T any](r ServiceRegistry, token string) T {
	svc := r.Get(token)
	if svc == nil {
		panic(fmt.Sprintf("di: service %q not registered", token))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token, svc))
	}
	return typed
}
