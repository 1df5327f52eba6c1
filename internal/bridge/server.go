// Package bridge implements the host side of the scene command
// protocol: a TCP accept loop, per-connection receivers, and the
// executor that serializes decoded commands onto the host's single
// logical main thread.
package bridge

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPort is the well-known scene host port.
const DefaultPort = 9876

// Config holds server configuration.
type Config struct {
	// Host is the bind address. Defaults to loopback; the protocol is a
	// local point-to-point channel.
	Host string

	// Port to listen on. 0 picks an ephemeral port (tests).
	Port int

	// AcceptPoll bounds each Accept wait so a stop request is observed
	// promptly. Defaults to 1s.
	AcceptPoll time.Duration

	// StopTimeout bounds the shutdown join. Receivers that do not exit
	// in time are abandoned, not force-killed.
	StopTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        DefaultPort,
		AcceptPoll:  time.Second,
		StopTimeout: time.Second,
	}
}

// Server accepts connections and feeds decoded commands through an
// Executor to a Dispatcher. Receiver goroutines never touch host state;
// the dispatcher runs exclusively on the executor's context.
type Server struct {
	config     Config
	dispatcher *Dispatcher
	exec       Executor

	listener *net.TCPListener
	running  atomic.Bool
	conns    sync.Map // connID -> *connection
	nextID   atomic.Int64
	wg       sync.WaitGroup
}

// NewServer creates a server. The dispatcher must be fully populated
// before Start; the table is not safe for registration afterwards.
func NewServer(config Config, dispatcher *Dispatcher, exec Executor) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.AcceptPoll <= 0 {
		config.AcceptPoll = time.Second
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = time.Second
	}
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		exec:       exec,
	}
}

// Start binds the listening socket and launches the accept loop.
// A bind failure is the only unrecoverable startup condition.
func (s *Server) Start() error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = listener.(*net.TCPListener)
	s.running.Store(true)

	log.Printf("scene host listening on %s", s.listener.Addr())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound port, useful with Config.Port == 0.
func (s *Server) Port() int {
	addr, ok := s.Addr().(*net.TCPAddr)
	if !ok {
		return 0
	}
	return addr.Port
}

// Stop shuts the server down: clears the running flag, closes the
// listener and every connection, then waits a bounded time for the
// receivers. Close and join failures are swallowed; shutdown is
// best-effort and never fatal to the host.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.conns.Range(func(_, value any) bool {
		value.(*connection).close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.config.StopTimeout):
		log.Printf("scene host: shutdown timed out, abandoning receivers")
	}

	log.Printf("scene host stopped")
}

// acceptLoop polls for peers until stopped. Each accepted peer gets a
// dedicated receiver goroutine; accepting continues immediately, so
// multiple simultaneous clients are supported even though the common
// case is exactly one.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		s.listener.SetDeadline(time.Now().Add(s.config.AcceptPoll))
		conn, err := s.listener.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue // re-check running flag
			}
			if !s.running.Load() {
				return
			}
			log.Printf("scene host: accept error: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		id := s.nextID.Add(1)
		c := newConnection(id, conn, s)
		s.conns.Store(id, c)
		log.Printf("scene host: client %d connected from %s", id, conn.RemoteAddr())

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.conns.Delete(id)
			c.receive()
		}()
	}
}
