// Package hostsdk exposes the proof verification protocol to WASM guests
// as byte-oriented host functions.
package hostsdk

import (
	"context"
	"encoding/json"
	"fmt"
)

// ByteHandler is the uniform shape of a host function: JSON payload in,
// JSON payload out. Handlers never touch guest memory directly; the
// runtime adapter owns that boundary.
type ByteHandler func(ctx context.Context, payload []byte) ([]byte, error)

// HostContext is the context passed to handlers during an invocation.
// It carries the name of the host function being invoked, so generic
// middleware can tell invocations apart.
type HostContext interface {
	context.Context
	FunctionName() string
}

type hostContext struct {
	context.Context
	functionName string
}

func (c hostContext) FunctionName() string { return c.functionName }

// NewHostContext wraps ctx with the invoked function's name.
func NewHostContext(ctx context.Context, functionName string) HostContext {
	return hostContext{Context: ctx, functionName: functionName}
}

// ErrorResponse is the structured error payload returned to guests when a
// host function fails in a way the guest should see.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// NewPanicError builds an ErrorResponse from a recovered panic value.
func NewPanicError(r any) *ErrorResponse {
	return &ErrorResponse{
		Error: fmt.Sprintf("host function panicked: %v", r),
		Kind:  "panic",
	}
}

// ToJSON serializes the response, falling back to a minimal payload if
// marshaling itself fails.
func (e *ErrorResponse) ToJSON() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"error":"internal error","kind":"panic"}`)
	}
	return b
}
