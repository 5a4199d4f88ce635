// Package command implements one handler per supported command and the
// dispatcher that routes a parsed request to its handler.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyorg/gokv/internal/identity"
	"github.com/rustyorg/gokv/internal/logger"
	"github.com/rustyorg/gokv/internal/memstore"
	"github.com/rustyorg/gokv/internal/protocol"
	"github.com/rustyorg/gokv/internal/session"
	"github.com/rustyorg/gokv/internal/store"
)

// CredentialLookup is the narrow slice of CredentialStore the command
// handlers need: digest lookup for AUTH, row iteration for WHOAMI.
type CredentialLookup interface {
	LookupHash(ctx context.Context, username string) (string, error)
	IterUsers(ctx context.Context) ([]store.UserRow, error)
}

var helpText = []byte(strings.Join([]string{
	"Supported commands:",
	"PING [message]",
	"ECHO message",
	"HELP",
	"AUTH username password",
	"WHOAMI",
	"GET key",
	"SET key value [EX seconds] [PX milliseconds] [NX] [XX]",
	"DEL key [key ...]",
}, "\n"))

func handlePing(args []protocol.Value) protocol.Value {
	if len(args) == 0 {
		return protocol.SimpleString("PONG")
	}
	return protocol.BulkString([]byte(args[0].CoerceString()))
}

func handleEcho(args []protocol.Value) (protocol.Value, error) {
	if len(args) == 0 {
		return protocol.Value{}, errors.New("ECHO requires at least one argument")
	}
	return protocol.BulkString([]byte(args[0].CoerceString())), nil
}

func handleHelp() protocol.Value {
	return protocol.BulkString(helpText)
}

// handleAuth computes hex(K(password)), looks up the stored digest for
// username, and on match authenticates the session and ensures its
// UserStore exists. The error text is identical for a wrong password and a
// nonexistent user, so no username enumeration is possible.
func handleAuth(ctx context.Context, sess *session.Session, mem *memstore.MemoryStore, creds CredentialLookup, args []protocol.Value) (protocol.Value, error) {
	if len(args) < 2 {
		return protocol.Value{}, errors.New("AUTH requires username and password")
	}
	username := args[0].CoerceString()
	password := args[1].CoerceString()

	storedDigest, err := creds.LookupHash(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.WarnCtx(ctx, "credential lookup failed", logger.Err(err))
		}
		return protocol.Value{}, errors.New("Invalid username or password")
	}
	if !identity.VerifyPassword(password, storedDigest) {
		return protocol.Value{}, errors.New("Invalid username or password")
	}

	id := identity.DeriveIdentity(username, storedDigest)
	mem.EnsureUserStore(id)
	sess.Authenticate(id)
	return protocol.SimpleString("OK"), nil
}

// handleWhoami resolves the session's current identity back to a username
// by recomputing the identity derivation for every row in the users table.
func handleWhoami(ctx context.Context, sess *session.Session, creds CredentialLookup) (protocol.Value, error) {
	currentIdentity, _ := sess.Identity()

	rows, err := creds.IterUsers(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "credential iteration failed", logger.Err(err))
		return protocol.Value{}, errors.New("User not found in database")
	}
	for _, row := range rows {
		if identity.DeriveIdentity(row.Username, row.Digest) == currentIdentity {
			return protocol.BulkString([]byte(fmt.Sprintf("Current user: %s (%s)", row.Username, currentIdentity))), nil
		}
	}
	return protocol.Value{}, errors.New("User not found in database")
}

func handleGet(sess *session.Session, mem *memstore.MemoryStore, args []protocol.Value) (protocol.Value, error) {
	if len(args) < 1 {
		return protocol.Value{}, errors.New("GET requires a key")
	}
	id, _ := sess.Identity()
	key := args[0].CoerceString()

	v, ok := mem.Get(id, key, time.Now())
	if !ok {
		return protocol.Value{}, fmt.Errorf("Key %s not found", key)
	}
	return v, nil
}

// handleSet parses modifiers after position 1 left-to-right,
// case-insensitively: EX <seconds>, PX <milliseconds>, NX, XX. Unknown
// modifiers are silently ignored.
func handleSet(sess *session.Session, mem *memstore.MemoryStore, args []protocol.Value) (protocol.Value, error) {
	if len(args) < 2 {
		return protocol.Value{}, errors.New("SET requires a key and a value")
	}
	id, _ := sess.Identity()
	key := args[0].CoerceString()
	value := args[1]

	var opts memstore.ExpirationOptions
	var nx, xx bool

	modifiers := args[2:]
	for i := 0; i < len(modifiers); i++ {
		mod := strings.ToUpper(modifiers[i].CoerceString())
		switch mod {
		case "EX":
			i++
			if i >= len(modifiers) {
				return protocol.Value{}, errors.New("EX requires a value")
			}
			n, err := strconv.ParseUint(modifiers[i].CoerceString(), 10, 64)
			if err != nil {
				return protocol.Value{}, errors.New("EX value must be a non-negative integer")
			}
			opts.HasEX = true
			opts.EX = n
		case "PX":
			i++
			if i >= len(modifiers) {
				return protocol.Value{}, errors.New("PX requires a value")
			}
			n, err := strconv.ParseUint(modifiers[i].CoerceString(), 10, 64)
			if err != nil {
				return protocol.Value{}, errors.New("PX value must be a non-negative integer")
			}
			opts.HasPX = true
			opts.PX = n
		case "NX":
			nx = true
		case "XX":
			xx = true
		default:
			// Lenient parser: unknown modifiers are silently ignored.
		}
	}

	now := time.Now()
	exists := mem.Exists(id, key, now)
	if nx && exists {
		return protocol.Null(), nil
	}
	if xx && !exists {
		return protocol.Null(), nil
	}

	mem.Set(id, key, value, now, opts)
	return protocol.SimpleString("OK"), nil
}

// handleDel iterates the given keys, deleting each, and returns the count of
// keys supplied (not the count actually deleted), matching this spec's
// chosen DEL semantics.
func handleDel(sess *session.Session, mem *memstore.MemoryStore, args []protocol.Value) (protocol.Value, error) {
	if len(args) < 1 {
		return protocol.Value{}, errors.New("DEL requires at least one key")
	}
	id, _ := sess.Identity()
	for _, arg := range args {
		mem.Delete(id, arg.CoerceString())
	}
	return protocol.Integer(int64(len(args))), nil
}
