package command

import (
	"context"
	"fmt"

	"github.com/rustyorg/gokv/internal/memstore"
	"github.com/rustyorg/gokv/internal/metrics"
	"github.com/rustyorg/gokv/internal/protocol"
	"github.com/rustyorg/gokv/internal/session"
)

// Dispatcher routes a parsed Command to its handler, enforcing the session
// state machine's authentication gating before any identity-scoped handler
// runs, and framing every handler error as an "ERR <detail>" Error value.
type Dispatcher struct {
	Memory      *memstore.MemoryStore
	Credentials CredentialLookup
}

// New constructs a Dispatcher over the given memory and credential stores.
func New(mem *memstore.MemoryStore, creds CredentialLookup) *Dispatcher {
	return &Dispatcher{Memory: mem, Credentials: creds}
}

// Dispatch executes cmd against sess and returns the wire-ready response
// value. Handler errors are never returned to the caller as Go errors; they
// are always rendered as a protocol.Value of Kind Error so the connection
// loop can write them straight to the socket and keep the connection open.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, cmd protocol.Command) protocol.Value {
	metrics.CommandsTotal.WithLabelValues(cmd.Name).Inc()
	reply := d.dispatch(ctx, sess, cmd)
	if reply.Kind == protocol.KindError {
		metrics.CommandErrorsTotal.WithLabelValues(cmd.Name).Inc()
	}
	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, sess *session.Session, cmd protocol.Command) protocol.Value {
	if !session.IsAllowedUnauthenticated(cmd.Name) {
		if err := sess.RequireAuth(); err != nil {
			return protocol.Error("ERR " + err.Error())
		}
	}

	switch cmd.Name {
	case "PING":
		return handlePing(cmd.Args)
	case "ECHO":
		v, err := handleEcho(cmd.Args)
		return valueOrError(v, err)
	case "HELP":
		return handleHelp()
	case "AUTH":
		v, err := handleAuth(ctx, sess, d.Memory, d.Credentials, cmd.Args)
		return valueOrError(v, err)
	case "WHOAMI":
		v, err := handleWhoami(ctx, sess, d.Credentials)
		return valueOrError(v, err)
	case "GET":
		v, err := handleGet(sess, d.Memory, cmd.Args)
		return valueOrError(v, err)
	case "SET":
		v, err := handleSet(sess, d.Memory, cmd.Args)
		return valueOrError(v, err)
	case "DEL":
		v, err := handleDel(sess, d.Memory, cmd.Args)
		return valueOrError(v, err)
	default:
		return protocol.Error(fmt.Sprintf("ERR Unknown command: %s", cmd.Name))
	}
}

func valueOrError(v protocol.Value, err error) protocol.Value {
	if err != nil {
		return protocol.Error("ERR " + err.Error())
	}
	return v
}
