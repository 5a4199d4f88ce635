package logger

import "log/slog"

// Standard field keys for structured logging. Use these keys consistently
// across all log statements so aggregation/querying stays uniform.
const (
	// Distributed tracing / correlation
	KeyTraceID      = "trace_id"
	KeyConnectionID = "connection_id"

	// Command dispatch
	KeyCommand  = "command"
	KeyArgCount = "arg_count"

	// Session / identity
	KeyIdentity = "identity"
	KeyUsername = "username"

	// Network
	KeyClientAddr = "client_addr"
	KeyBindAddr   = "bind_addr"

	// Storage
	KeyKey       = "key"
	KeyEntity    = "entity"
	KeyTTL       = "ttl"
	KeyDBPath    = "db_path"

	// Outcome
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyBytesRead  = "bytes_read"
	KeyBytesSent  = "bytes_sent"
)

// Command returns a slog.Attr for the dispatched command name.
func Command(name string) slog.Attr {
	return slog.String(KeyCommand, name)
}

// ConnectionID returns a slog.Attr for the server-assigned connection ID.
func ConnectionID(id uint64) slog.Attr {
	return slog.Uint64(KeyConnectionID, id)
}

// Identity returns a slog.Attr for the derived session identity.
func Identity(id string) slog.Attr {
	return slog.String(KeyIdentity, id)
}

// ClientAddr returns a slog.Attr for the remote connection address.
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// Key returns a slog.Attr for a store key.
func Key(key string) slog.Attr {
	return slog.String(KeyKey, key)
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error value, or an empty attr (which
// handlers skip) when err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
