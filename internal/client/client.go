// Package client implements the orchestration side of the scene command
// protocol: a blocking call/response facade over one TCP socket.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/scenemcp/scenemcp/internal/protocol"
)

var (
	// ErrNotConnected is returned when a connection attempt fails.
	ErrNotConnected = errors.New("not connected to scene host")
	// ErrIncompleteResponse is returned when the host closes before a
	// complete response value is decodable.
	ErrIncompleteResponse = errors.New("incomplete response from scene host")
)

// RemoteError is an error envelope returned by the scene host. The
// message is surfaced verbatim; callers must not retry automatically,
// since handlers with side effects offer no idempotence guarantee.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client is an explicit connection handle to one scene host. Each
// instance owns a single socket and allows one in-flight request at a
// time; independent clients are independent connections.
//
// The socket is established lazily on first use and assumed healthy
// until a send or receive fails, at which point it is discarded
// unconditionally and the next call reconnects. An error envelope is a
// well-formed response and does not invalidate the socket.
type Client struct {
	mu   sync.Mutex
	conn net.Conn

	host    string
	port    int
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAddress sets the scene host address.
func WithAddress(host string, port int) Option {
	return func(c *Client) {
		c.host = host
		c.port = port
	}
}

// WithTimeout sets the overall receive timeout per request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client. Defaults: localhost:9876, 15s receive timeout.
func New(opts ...Option) *Client {
	c := &Client{
		host:    "localhost",
		port:    9876,
		timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes the socket if absent. Send connects lazily, so
// calling Connect is only needed to fail fast at startup.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", c.host, c.port))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	c.conn = conn
	return nil
}

// Close tears down the socket, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// IsConnected reports whether a socket is currently held.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send issues one command and blocks until a complete response decodes
// or the receive timeout elapses. On success it returns the raw result
// value; a host error envelope comes back as *RemoteError.
func (c *Client) Send(cmdType string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return nil, err
	}

	cmd, err := protocol.NewCommand(cmdType, params)
	if err != nil {
		return nil, err
	}
	if err := protocol.NewWriter(c.conn).WriteCommand(cmd); err != nil {
		c.invalidateLocked()
		return nil, fmt.Errorf("send %s: %w", cmdType, err)
	}

	resp, err := c.receiveLocked()
	if err != nil {
		c.invalidateLocked()
		return nil, fmt.Errorf("%s: %w", cmdType, err)
	}

	if resp.Status == protocol.StatusError {
		msg := resp.Message
		if msg == "" {
			msg = "unknown error from scene host"
		}
		return nil, &RemoteError{Message: msg}
	}
	return resp.Result, nil
}

// receiveLocked performs the framed read: chunks accumulate under an
// overall deadline until they parse as one JSON value.
func (c *Client) receiveLocked() (*protocol.RawResponse, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	defer c.conn.SetReadDeadline(time.Time{})

	dec := protocol.NewDecoder(c.conn)
	var resp protocol.RawResponse
	if err := dec.Decode(&resp); err != nil {
		if err == io.EOF {
			if dec.Buffered() == 0 {
				return nil, fmt.Errorf("%w: connection closed before any data", ErrIncompleteResponse)
			}
			return nil, ErrIncompleteResponse
		}
		return nil, err
	}
	return &resp, nil
}

// invalidateLocked discards the socket after a fault. A socket that
// faulted once is never trusted again.
func (c *Client) invalidateLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
