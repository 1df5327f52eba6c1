package bridge

import (
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/scenemcp/scenemcp/internal/protocol"
)

// connection owns one accepted socket and its receiver loop. The
// protocol is half-duplex per connection: the receiver blocks until a
// full command frames off the buffer before issuing the next read, and
// the matching response is written later, from the main context.
type connection struct {
	id   int64
	conn net.Conn
	srv  *Server

	mu     sync.Mutex // serializes writes and close
	closed bool
}

func newConnection(id int64, conn net.Conn, srv *Server) *connection {
	return &connection{id: id, conn: conn, srv: srv}
}

// receive turns the byte stream into decoded commands and submits one
// deferred task per command. No read timeout: a client may idle
// indefinitely. Any receive failure ends only this connection.
func (c *connection) receive() {
	defer c.close()

	dec := protocol.NewDecoder(c.conn)
	for c.srv.running.Load() {
		var cmd protocol.Command
		if err := dec.Decode(&cmd); err != nil {
			if err == io.EOF {
				log.Printf("scene host: client %d disconnected", c.id)
			} else if !isClosedError(err) {
				log.Printf("scene host: client %d receive error: %v", c.id, err)
			}
			return
		}

		// Deferred task: dispatch on the main context and answer on
		// this socket. Runs exactly once; responses on one connection
		// keep request order because this loop submits sequentially.
		c.srv.exec.Submit(func() {
			resp := c.srv.dispatcher.Dispatch(cmd)
			if err := c.writeResponse(resp); err != nil {
				// Peer gone. Must not raise out of the main context.
				log.Printf("scene host: client %d response dropped: %v", c.id, err)
			}
		})
	}
}

func (c *connection) writeResponse(resp protocol.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	return protocol.NewWriter(c.conn).WriteResponse(resp)
}

func (c *connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.conn.Close()
}

// isClosedError reports whether err is the local side closing the
// socket out from under a blocked read (normal during shutdown).
func isClosedError(err error) bool {
	if err == nil {
		return false
	}
	return err == net.ErrClosed ||
		strings.Contains(err.Error(), "use of closed network connection")
}
