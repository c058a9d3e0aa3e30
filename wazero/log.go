package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tetratelabs/wazero/api"
)

// GuestLogMessage is the wire form of a guest log call.
type GuestLogMessage struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Attrs   []LogAttr `json:"attrs,omitempty"`
}

// LogAttr is a typed key/value pair attached to a guest log message.
type LogAttr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// LogMessage implements the `log_message` host function.
// It receives a packed uint64 (ptr+len) pointing to a JSON-encoded GuestLogMessage.
// It does not return any value.
func LogMessage(ctx context.Context, mod api.Module, stack []uint64) {
	logMsg, ok := readLogMessage(ctx, mod, stack[0])
	if !ok {
		return
	}

	level := parseLogLevel(logMsg.Level)
	attrs := convertLogAttrs(logMsg.Attrs)

	slog.LogAttrs(ctx, level, logMsg.Message, attrs...)
}

// LogMessageHandler wraps LogMessage as a CustomHandler for registration.
func LogMessageHandler() CustomHandler {
	return CustomHandler{
		Name:        "log_message",
		ParamTypes:  []api.ValueType{api.ValueTypeI64},
		ResultTypes: []api.ValueType{},
		Handler:     api.GoModuleFunc(LogMessage),
	}
}

// readLogMessage reads and unmarshals the log message from guest memory.
func readLogMessage(ctx context.Context, mod api.Module, messagePacked uint64) (*GuestLogMessage, bool) {
	ptr, length := UnpackPtrLen(messagePacked)

	messageBytes, ok := mod.Memory().Read(ptr, length)
	if !ok {
		slog.ErrorContext(ctx, "wazero: failed to read log message from guest memory")
		return nil, false
	}

	var logMsg GuestLogMessage
	if err := json.Unmarshal(messageBytes, &logMsg); err != nil {
		slog.ErrorContext(ctx, "wazero: failed to unmarshal log message", "error", err)
		return nil, false
	}

	return &logMsg, true
}

// parseLogLevel converts a string level to slog.Level.
func parseLogLevel(levelStr string) slog.Level {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		slog.Warn("wazero: unknown log level from guest", "level", levelStr)
	}
	return level
}

// convertLogAttrs converts wire attributes to slog.Attr slice.
func convertLogAttrs(wireAttrs []LogAttr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(wireAttrs))
	for _, attr := range wireAttrs {
		attrs = append(attrs, convertSingleAttr(attr))
	}
	return attrs
}

// convertSingleAttr converts a single wire attribute to slog.Attr.
func convertSingleAttr(attr LogAttr) slog.Attr {
	switch attr.Type {
	case "string":
		return slog.String(attr.Key, attr.Value)
	case "int64":
		if v, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
			return slog.Int64(attr.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(attr.Value); err == nil {
			return slog.Bool(attr.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
			return slog.Float64(attr.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, attr.Value); err == nil {
			return slog.Time(attr.Key, v)
		}
	case "error":
		return slog.Any(attr.Key, fmt.Errorf("%s", attr.Value))
	}
	// Default: return as Any (fallback for unknown types or parse failures)
	return slog.Any(attr.Key, attr.Value)
}
