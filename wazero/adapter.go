// Package wazero bridges the host function registry to a wazero runtime.
//
// Guests call host functions through a packed-uint64 ABI: each call passes
// ptr<<32|len pointing at a JSON payload in guest memory, and receives the
// response the same way. Guests must export an "allocate" function so the
// host can place response bytes.
package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	hostsdk "github.com/zkinfer-dev/zkinfer-host-sdk"
)

// HostModuleName is the module guests import host functions from.
const HostModuleName = "zkinfer"

// PackPtrLen packs a guest pointer and length into the ABI's uint64 form.
func PackPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// UnpackPtrLen splits a packed uint64 into pointer and length.
func UnpackPtrLen(packed uint64) (ptr uint32, length uint32) {
	//nolint:gosec // WASM pointers and lengths are 32-bit
	return uint32(packed >> 32), uint32(packed)
}

// CustomHandler registers a host function with a hand-written signature,
// for functions that do not fit the byte-in/byte-out shape.
type CustomHandler struct {
	Name        string
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
	Handler     api.GoModuleFunc
}

type adapterConfig struct {
	custom []CustomHandler
	logger *slog.Logger
}

// AdapterOption configures RegisterWithRuntime.
type AdapterOption func(*adapterConfig)

// WithCustomHandler registers an additional raw host function.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *adapterConfig) { c.custom = append(c.custom, h) }
}

// WithAdapterLogger sets the logger used for boundary failures.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(c *adapterConfig) { c.logger = l }
}

// RegisterWithRuntime instantiates the host module, exporting every
// handler in the registry plus any custom handlers.
func RegisterWithRuntime(
	ctx context.Context,
	rt wazero.Runtime,
	registry *hostsdk.HandlerRegistry,
	opts ...AdapterOption,
) error {
	cfg := adapterConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := rt.NewHostModuleBuilder(HostModuleName)

	for _, name := range registry.Names() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(
				bridgeHandler(registry, name, cfg.logger),
				[]api.ValueType{api.ValueTypeI64},
				[]api.ValueType{api.ValueTypeI64},
			).
			Export(name)
	}

	for _, h := range cfg.custom {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(h.Handler, h.ParamTypes, h.ResultTypes).
			Export(h.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiating host module %q: %w", HostModuleName, err)
	}
	return nil
}

// bridgeHandler adapts a registered ByteHandler to the packed ABI.
func bridgeHandler(registry *hostsdk.HandlerRegistry, name string, logger *slog.Logger) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		ptr, length := UnpackPtrLen(stack[0])

		var payload []byte
		if length > 0 {
			data, ok := mod.Memory().Read(ptr, length)
			if !ok {
				logger.Error("failed to read host function payload from guest memory",
					"function", name, "ptr", ptr, "len", length)
				stack[0] = 0
				return
			}
			payload = make([]byte, length)
			copy(payload, data)
		}

		resp, err := registry.Invoke(ctx, name, payload)
		if err != nil {
			logger.Debug("host function returned error to guest",
				"function", name, "error", err)
			resp = (&hostsdk.ErrorResponse{Error: err.Error(), Kind: "error"}).ToJSON()
		}

		packed, werr := writeToGuest(ctx, mod, resp)
		if werr != nil {
			logger.Error("failed to write host function response to guest memory",
				"function", name, "error", werr)
			stack[0] = 0
			return
		}
		stack[0] = packed
	}
}

// writeToGuest allocates guest memory via the guest's "allocate" export
// and copies data into it.
func writeToGuest(ctx context.Context, mod api.Module, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}

	allocate := mod.ExportedFunction("allocate")
	if allocate == nil {
		return 0, fmt.Errorf("guest does not export 'allocate'")
	}

	res, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("guest allocate failed: %w", err)
	}

	//nolint:gosec // WASM pointers are 32-bit
	ptr := uint32(res[0])
	if !mod.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("writing %d bytes at ptr=%d failed", len(data), ptr)
	}

	//nolint:gosec // WASM lengths are 32-bit
	return PackPtrLen(ptr, uint32(len(data))), nil
}
