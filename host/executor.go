// Package host provides the WASM host runtime for proof-verifying guests.
package host

import (
	"context"
	"fmt"
	"log/slog"

	t_wazero "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	hostsdk "github.com/zkinfer-dev/zkinfer-host-sdk"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/services"
	"github.com/zkinfer-dev/zkinfer-host-sdk/wazero"
)

// Executor manages the lifecycle of WASM guests and the host functions
// they see.
type Executor struct {
	runtime  t_wazero.Runtime
	registry *hostsdk.HandlerRegistry
	verifier *services.Verifier
	cache    t_wazero.CompilationCache
	logger   *slog.Logger
	verbose  bool
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		reg, err := e.defaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		e.registry = reg
	}

	config := t_wazero.NewRuntimeConfig()
	if e.cache != nil {
		config = config.WithCompilationCache(e.cache)
	}

	rt := t_wazero.NewRuntimeWithConfig(ctx, config)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// defaultRegistry builds the host function set from what the executor has.
// Without a verifier only the stateless functions are exported.
func (e *Executor) defaultRegistry() (*hostsdk.HandlerRegistry, error) {
	if e.verifier != nil {
		return hostsdk.NewDefaultRegistry(e.verifier, e.baseOptions()...)
	}
	base := []hostsdk.RegistryOption{
		hostsdk.WithMiddleware(hostsdk.PanicRecoveryMiddleware()),
		hostsdk.WithHandler(hostsdk.FuncHashData, hostsdk.HashDataHandler()),
		hostsdk.WithHandler(hostsdk.FuncCurrentTimestamp, hostsdk.CurrentTimestampHandler(nil)),
	}
	return hostsdk.NewRegistry(append(base, e.baseOptions()...)...)
}

func (e *Executor) baseOptions() []hostsdk.RegistryOption {
	if !e.verbose {
		return nil
	}
	return []hostsdk.RegistryOption{
		hostsdk.WithMiddleware(hostsdk.LoggingMiddleware(e.logger)),
	}
}

// registerHostFunctions registers the host functions with the runtime.
func (e *Executor) registerHostFunctions(ctx context.Context) error {
	return wazero.RegisterWithRuntime(ctx, e.runtime, e.registry,
		wazero.WithCustomHandler(wazero.LogMessageHandler()),
		wazero.WithAdapterLogger(e.logger),
	)
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// GuestInstance represents an instantiated WASM guest.
type GuestInstance struct {
	module api.Module
}

// LoadGuest instantiates a WASM module.
func (e *Executor) LoadGuest(ctx context.Context, wasmBytes []byte) (*GuestInstance, error) {
	mod, err := e.runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return &GuestInstance{module: mod}, nil
}

// Call invokes a guest export with raw bytes over the packed ABI and
// returns the response bytes.
func (g *GuestInstance) Call(ctx context.Context, name string, input []byte) ([]byte, error) {
	packed, err := g.callRaw(ctx, name, input)
	if err != nil {
		return nil, err
	}

	ptr, length := wazero.UnpackPtrLen(packed)
	if length == 0 {
		return nil, nil
	}

	data, ok := g.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read result from guest memory")
	}

	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

// Close releases the guest module.
func (g *GuestInstance) Close(ctx context.Context) error {
	return g.module.Close(ctx)
}

// callRaw invokes a guest function with raw bytes.
func (g *GuestInstance) callRaw(ctx context.Context, name string, input []byte) (uint64, error) {
	fn := g.module.ExportedFunction(name)
	if fn == nil {
		return 0, fmt.Errorf("function %q not found", name)
	}

	var ptr uint64
	var length uint64
	if len(input) > 0 {
		allocate := g.module.ExportedFunction("allocate")
		if allocate == nil {
			return 0, fmt.Errorf("function 'allocate' not exported")
		}
		res, err := allocate.Call(ctx, uint64(len(input)))
		if err != nil {
			return 0, fmt.Errorf("allocate failed: %w", err)
		}
		ptr = res[0]
		length = uint64(len(input))

		//nolint:gosec // WASM pointers are 32-bit
		if !g.module.Memory().Write(uint32(ptr), input) {
			return 0, fmt.Errorf("failed to write input to memory")
		}
	}

	packedInput := (ptr << 32) | length

	res, err := fn.Call(ctx, packedInput)
	if err != nil {
		return 0, fmt.Errorf("call failed: %w", err)
	}

	return res[0], nil
}
