package host

import (
	"log/slog"

	"github.com/tetratelabs/wazero"

	hostsdk "github.com/zkinfer-dev/zkinfer-host-sdk"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/services"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithHostFunctions configures the executor with a host function registry.
func WithHostFunctions(registry *hostsdk.HandlerRegistry) Option {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithVerifier binds verify_proof in the default registry to the given
// verifier. Ignored when WithHostFunctions supplies a registry.
func WithVerifier(v *services.Verifier) Option {
	return func(e *Executor) {
		e.verifier = v
	}
}

// WithVerbose enables or disables verbose logging of host function calls.
func WithVerbose(verbose bool) Option {
	return func(e *Executor) {
		e.verbose = verbose
	}
}

// WithCompilationCache configures the executor with a compilation cache.
func WithCompilationCache(cache wazero.CompilationCache) Option {
	return func(e *Executor) {
		e.cache = cache
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}
