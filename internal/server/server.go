// Package server implements the TCP listener and per-connection loop that
// drives the wire codec, the dispatcher, and the session for each socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustyorg/gokv/internal/command"
	"github.com/rustyorg/gokv/internal/logger"
	"github.com/rustyorg/gokv/internal/metrics"
)

// Server accepts connections on a single TCP listener and runs one
// connection loop per accepted socket. Connections are independent
// goroutines; the scheduling model is Go's own many-goroutines-on-a-thread-
// pool runtime, satisfying the spec's cooperative-scheduling requirement
// without an explicit worker pool.
type Server struct {
	listener    net.Listener
	dispatcher  *command.Dispatcher
	idleTimeout time.Duration

	nextConnID atomic.Uint64
	wg         sync.WaitGroup
}

// New binds a TCP listener at addr and constructs a Server that dispatches
// through the given Dispatcher. idleTimeout of zero disables idle timeouts.
func New(addr string, dispatcher *command.Dispatcher, idleTimeout time.Duration) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind listener on %s: %w", addr, err)
	}
	return &Server{
		listener:    listener,
		dispatcher:  dispatcher,
		idleTimeout: idleTimeout,
	}, nil
}

// Addr returns the listener's bound address, useful when addr was "host:0".
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until the listener is closed by Shutdown.
// Cancelling ctx does not by itself interrupt a pending Accept; ctx is
// checked when Accept fails and is handed to every connection loop. Each
// accepted connection runs its own loop in a new goroutine and is tracked so
// Shutdown can wait for in-flight connections to drain.
func (s *Server) Serve(ctx context.Context) error {
	logger.Info("listening", logger.KeyBindAddr, s.listener.Addr().String())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if isClosedError(err) {
				return nil
			}
			logger.Warn("accept failed", logger.Err(err))
			continue
		}

		connID := s.nextConnID.Add(1)
		metrics.ConnectionsTotal.Inc()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("connection panic recovered",
						logger.ConnectionID(connID), "panic", fmt.Sprintf("%v", r))
				}
			}()
			serveConnection(ctx, conn, connID, s.dispatcher, s.idleTimeout)
		}()
	}
}

// Shutdown closes the listener (stopping new accepts) and waits up to
// timeout for in-flight connections to finish their current command before
// returning. It does not forcibly close open connections; the connection
// loop exits on its own once ctx is cancelled.
func (s *Server) Shutdown(timeout time.Duration) error {
	if err := s.listener.Close(); err != nil {
		return fmt.Errorf("close listener: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		logger.Warn("shutdown timed out waiting for connections to drain")
		return nil
	}
}

func isClosedError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
