package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rustyorg/gokv/internal/command"
	"github.com/rustyorg/gokv/internal/logger"
	"github.com/rustyorg/gokv/internal/protocol"
	"github.com/rustyorg/gokv/internal/session"
)

// readChunkSize is how many bytes are requested per socket read while
// filling the connection's growable parse buffer.
const readChunkSize = 4096

// serveConnection drives one accepted socket: create a codec-fed buffer and
// a session, then loop read -> parse -> dispatch -> write until the peer
// closes, a fatal codec error occurs, or ctx is cancelled.
func serveConnection(ctx context.Context, conn net.Conn, connID uint64, dispatcher *command.Dispatcher, idleTimeout time.Duration) {
	clientAddr := conn.RemoteAddr().String()
	lc := logger.NewLogContext(connID, clientAddr)
	connCtx := logger.WithContext(ctx, lc)

	logger.InfoCtx(connCtx, "connection accepted")
	defer func() {
		conn.Close()
		logger.InfoCtx(connCtx, "connection closed")
	}()

	sess := session.New()
	var buf []byte

	// Cancelling ctx interrupts a pending read, so an idle connection
	// leaves the loop instead of staying blocked in conn.Read.
	stopInterrupt := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stopInterrupt()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		v, consumed, err := tryParse(buf)
		if err == nil {
			buf = buf[consumed:]
			dispatchAndReply(connCtx, conn, sess, dispatcher, v)
			continue
		}
		if !errors.Is(err, protocol.ErrNeedMoreData) {
			writeFatalError(conn, err)
			return
		}

		if idleTimeout > 0 {
			if err := conn.SetDeadline(time.Now().Add(idleTimeout)); err != nil {
				logger.WarnCtx(connCtx, "failed to set deadline", logger.Err(err))
			}
		}

		chunk := make([]byte, readChunkSize)
		n, readErr := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if readErr != nil {
			if readErr == io.EOF {
				if len(buf) > 0 {
					logger.WarnCtx(connCtx, "connection closed with buffered bytes")
					writeFatalError(conn, errors.New("Connection closed unexpectedly"))
				}
				return
			}
			logger.DebugCtx(connCtx, "read error", logger.Err(readErr))
			return
		}
	}
}

// tryParse parses one top-level value out of buf, returning it and the
// bytes consumed; it does not extract or dispatch a command. A non-array
// top-level frame is not a codec error; it is surfaced through
// dispatchAndReply via ExtractCommand instead, so tryParse only ever returns
// a genuine codec result here.
func tryParse(buf []byte) (protocol.Value, int, error) {
	return protocol.Parse(buf)
}

func dispatchAndReply(ctx context.Context, conn net.Conn, sess *session.Session, dispatcher *command.Dispatcher, v protocol.Value) {
	cmd, err := protocol.ExtractCommand(v)
	var reply protocol.Value
	if err != nil {
		reply = protocol.Error("ERR " + err.Error())
	} else {
		reply = dispatcher.Dispatch(ctx, sess, cmd)
	}

	if _, err := conn.Write(protocol.Serialize(reply)); err != nil {
		logger.DebugCtx(ctx, "write error", logger.Err(err))
	}
}

// writeFatalError best-effort writes a final Error frame before the caller
// closes the connection, per the spec's hard-codec-error handling.
func writeFatalError(conn net.Conn, err error) {
	reply := protocol.Error("ERR " + err.Error())
	_, _ = conn.Write(protocol.Serialize(reply))
}
