package client

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scenemcp/scenemcp/internal/protocol"
)

// fakeHost answers the scene command protocol on a loopback listener.
type fakeHost struct {
	listener net.Listener
	handler  func(cmd protocol.Command) *protocol.Response

	mu    sync.Mutex
	conns []net.Conn
}

func startFakeHost(t *testing.T, handler func(cmd protocol.Command) *protocol.Response) *fakeHost {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	h := &fakeHost{listener: ln, handler: handler}
	go h.acceptLoop()
	t.Cleanup(h.stop)
	return h
}

func (h *fakeHost) acceptLoop() {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			return
		}
		h.mu.Lock()
		h.conns = append(h.conns, conn)
		h.mu.Unlock()
		go h.serve(conn)
	}
}

func (h *fakeHost) serve(conn net.Conn) {
	dec := protocol.NewDecoder(conn)
	w := protocol.NewWriter(conn)
	for {
		var cmd protocol.Command
		if err := dec.Decode(&cmd); err != nil {
			return
		}
		if resp := h.handler(cmd); resp != nil {
			if err := w.WriteResponse(*resp); err != nil {
				return
			}
		}
	}
}

func (h *fakeHost) port() int {
	return h.listener.Addr().(*net.TCPAddr).Port
}

// dropConnections force-closes every accepted socket.
func (h *fakeHost) dropConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.conns {
		c.Close()
	}
	h.conns = nil
}

func (h *fakeHost) stop() {
	h.listener.Close()
	h.dropConnections()
}

func newTestClient(h *fakeHost, opts ...Option) *Client {
	opts = append([]Option{WithAddress("127.0.0.1", h.port())}, opts...)
	return New(opts...)
}

// respond adapts an envelope value to the handler's pointer return.
func respond(r protocol.Response) *protocol.Response {
	return &r
}

func echoHandler(cmd protocol.Command) *protocol.Response {
	return respond(protocol.Success(map[string]any{"type": cmd.Type}))
}

func TestSendRoundTrip(t *testing.T) {
	h := startFakeHost(t, echoHandler)
	c := newTestClient(h)
	defer c.Close()

	result, err := c.Send("query-scene-state", nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	var got struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(result, &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got.Type != "query-scene-state" {
		t.Errorf("echoed type = %q", got.Type)
	}
	if !c.IsConnected() {
		t.Error("socket dropped after successful request")
	}
}

func TestSendRemoteError(t *testing.T) {
	h := startFakeHost(t, func(cmd protocol.Command) *protocol.Response {
		return respond(protocol.Error("entity not found: Ghost"))
	})
	c := newTestClient(h)
	defer c.Close()

	_, err := c.Send("query-entity-detail", map[string]any{"name": "Ghost"})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if remote.Message != "entity not found: Ghost" {
		t.Errorf("message = %q", remote.Message)
	}
	// An error envelope is a completed exchange, not a socket fault.
	if !c.IsConnected() {
		t.Error("socket invalidated by error envelope")
	}
}

func TestSendReconnectsAfterDrop(t *testing.T) {
	h := startFakeHost(t, echoHandler)
	c := newTestClient(h)
	defer c.Close()

	if _, err := c.Send("query-scene-state", nil); err != nil {
		t.Fatalf("first Send: %v", err)
	}

	h.dropConnections()

	// The request racing the close fails and discards the socket.
	var sawErr bool
	for i := 0; i < 10; i++ {
		if _, err := c.Send("query-scene-state", nil); err != nil {
			sawErr = true
			break
		}
		h.dropConnections()
		time.Sleep(10 * time.Millisecond)
	}
	if !sawErr {
		t.Fatal("never observed a failure after connection drop")
	}
	if c.IsConnected() {
		t.Fatal("socket survived a receive fault")
	}

	// The next call reconnects on its own.
	if _, err := c.Send("query-scene-state", nil); err != nil {
		t.Fatalf("Send after drop: %v", err)
	}
}

func TestSendIncompleteResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// Read the command, reply with a truncated value, then close.
		dec := protocol.NewDecoder(conn)
		var cmd protocol.Command
		dec.Decode(&cmd)
		io.WriteString(conn, `{"status": "success", "result"`)
		conn.Close()
	}()

	c := New(WithAddress("127.0.0.1", ln.Addr().(*net.TCPAddr).Port))
	defer c.Close()

	_, err = c.Send("query-scene-state", nil)
	if !errors.Is(err, ErrIncompleteResponse) {
		t.Fatalf("err = %v, want ErrIncompleteResponse", err)
	}
	if c.IsConnected() {
		t.Error("socket survived an incomplete response")
	}
}

func TestSendTimeout(t *testing.T) {
	h := startFakeHost(t, func(cmd protocol.Command) *protocol.Response {
		return nil // never answer
	})
	c := newTestClient(h, WithTimeout(100*time.Millisecond))
	defer c.Close()

	start := time.Now()
	_, err := c.Send("query-scene-state", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("err = %v, want net timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
	if c.IsConnected() {
		t.Error("socket survived a receive timeout")
	}
}

func TestConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := New(WithAddress("127.0.0.1", port))
	if err := c.Connect(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Connect err = %v, want ErrNotConnected", err)
	}
	if _, err := c.Send("query-scene-state", nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send err = %v, want ErrNotConnected", err)
	}
}

func TestTypedCommandsWireShapes(t *testing.T) {
	var seen struct {
		mu   sync.Mutex
		cmds []protocol.Command
	}
	h := startFakeHost(t, func(cmd protocol.Command) *protocol.Response {
		seen.mu.Lock()
		seen.cmds = append(seen.cmds, cmd)
		seen.mu.Unlock()
		switch cmd.Type {
		case "check-named-group-exists":
			return respond(protocol.Success(true))
		case "set-group-input":
			return respond(protocol.Success(map[string]any{
				"modified_modifiers": 2,
				"group":              "Scatter",
				"input":              "Density",
				"new_value":          0.5,
			}))
		case "swap-named-part":
			return respond(protocol.Success(map[string]any{"message": "replaced Head Head_Base with Head_Slim"}))
		default:
			return respond(protocol.Error("Unknown command type: %s", cmd.Type))
		}
	})
	c := newTestClient(h)
	defer c.Close()

	exists, err := c.HasNodeGroup("Scatter")
	if err != nil || !exists {
		t.Fatalf("HasNodeGroup = %v, %v", exists, err)
	}

	result, err := c.SetGroupInput("Scatter", "Density", 0.5)
	if err != nil {
		t.Fatalf("SetGroupInput: %v", err)
	}
	if result.ModifiedModifiers != 2 || result.Group != "Scatter" {
		t.Errorf("SetGroupInput result = %+v", result)
	}

	msg, err := c.SwapPart("Head", "Head_Slim")
	if err != nil {
		t.Fatalf("SwapPart: %v", err)
	}
	if !strings.Contains(msg, "Head_Slim") {
		t.Errorf("SwapPart message = %q", msg)
	}

	seen.mu.Lock()
	defer seen.mu.Unlock()
	if len(seen.cmds) != 3 {
		t.Fatalf("host saw %d commands, want 3", len(seen.cmds))
	}
	if got := string(seen.cmds[0].Params); got != `{"group_name":"Scatter"}` {
		t.Errorf("group params = %s", got)
	}
	if got := string(seen.cmds[2].Params); got != `{"new_name":"Head_Slim","part_type":"Head"}` {
		t.Errorf("swap params = %s", got)
	}
}
