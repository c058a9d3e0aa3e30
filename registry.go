package hostsdk

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// HandlerRegistry maps host function names to their handlers and applies
// registered middleware around every invocation.
type HandlerRegistry struct {
	mu         sync.RWMutex
	handlers   map[string]ByteHandler
	middleware []Middleware
}

// RegistryOption configures a HandlerRegistry.
type RegistryOption func(*HandlerRegistry) error

// WithMiddleware appends middleware to the registry. Middleware executes
// in FIFO order (first registered wraps first, onion model).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(r *HandlerRegistry) error {
		r.middleware = append(r.middleware, mw...)
		return nil
	}
}

// WithHandler registers a handler during construction.
func WithHandler(name string, h ByteHandler) RegistryOption {
	return func(r *HandlerRegistry) error {
		return r.Register(name, h)
	}
}

// NewRegistry creates a HandlerRegistry.
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	r := &HandlerRegistry{
		handlers: make(map[string]ByteHandler),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a handler under name. Registering the same name twice is
// an error; replacing a handler silently would hide wiring bugs.
func (r *HandlerRegistry) Register(name string, h ByteHandler) error {
	if name == "" {
		return fmt.Errorf("host function name must not be empty")
	}
	if h == nil {
		return fmt.Errorf("host function %q: handler must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("host function already registered: %s", name)
	}
	r.handlers[name] = h
	return nil
}

// Get returns the handler for name with the middleware chain applied.
func (r *HandlerRegistry) Get(name string) (ByteHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	if !ok {
		return nil, false
	}
	return r.wrap(h), true
}

// Invoke runs the named handler with middleware applied and a HostContext
// carrying the function name.
func (r *HandlerRegistry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown host function: %s", name)
	}
	return h(NewHostContext(ctx, name), payload)
}

// Names returns the registered host function names, sorted.
func (r *HandlerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wrap applies middleware so the first registered is outermost.
// Callers must hold at least a read lock.
func (r *HandlerRegistry) wrap(h ByteHandler) ByteHandler {
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	return h
}
