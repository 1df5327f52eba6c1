package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/scenemcp/scenemcp/internal/protocol"
)

// HandlerFunc executes one command against host state. It runs on the
// main execution context and may freely mutate the scene. A returned
// error or a panic becomes an error envelope; neither reaches the
// caller's goroutine.
type HandlerFunc func(params json.RawMessage) (any, error)

// Gate is a runtime feature toggle read before routing to a gated
// handler. It is external state owned by the host's configuration
// surface; the dispatcher only consults it.
type Gate func() bool

type registration struct {
	handler HandlerFunc
	gate    Gate
	feature string
}

// Dispatcher resolves command names to handlers and normalizes every
// outcome into a well-formed response envelope. The table is populated
// at startup and read-only afterwards, so dispatch needs no locking.
type Dispatcher struct {
	handlers map[string]registration
}

// NewDispatcher creates an empty dispatch table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]registration)}
}

// Register installs a handler under a command name. Registration happens
// during host startup only.
func (d *Dispatcher) Register(name string, handler HandlerFunc) {
	d.handlers[name] = registration{handler: handler}
}

// RegisterGated installs a handler behind a feature gate. When the gate
// reports false the command resolves to an error envelope naming the
// disabled feature, and the handler does not run.
func (d *Dispatcher) RegisterGated(name, feature string, gate Gate, handler HandlerFunc) {
	d.handlers[name] = registration{handler: handler, gate: gate, feature: feature}
}

// Commands returns the registered command names, for diagnostics.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// Typed adapts a handler taking a strongly typed parameter struct into
// the dispatch table. Wire params are bound to P by JSON field name;
// malformed params surface as a handler fault, not a dispatcher fault.
func Typed[P any](fn func(P) (any, error)) HandlerFunc {
	return func(params json.RawMessage) (any, error) {
		var p P
		if len(params) > 0 {
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, fmt.Errorf("invalid params: %v", err)
			}
		}
		return fn(p)
	}
}

// Dispatch resolves and runs one command. It always produces a
// well-formed envelope: unknown names, disabled features, handler errors
// and handler panics all map to error envelopes.
func (d *Dispatcher) Dispatch(cmd protocol.Command) protocol.Response {
	reg, ok := d.handlers[cmd.Type]
	if !ok {
		return protocol.Error("Unknown command type: %s", cmd.Type)
	}
	if reg.gate != nil && !reg.gate() {
		return protocol.Error("Command %q is unavailable: the %s feature is disabled", cmd.Type, reg.feature)
	}

	result, err := d.invoke(reg.handler, cmd.Params)
	if err != nil {
		return protocol.Error("%s", err)
	}
	return protocol.Success(result)
}

// invoke runs a handler, converting panics into errors.
func (d *Dispatcher) invoke(handler HandlerFunc, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return handler(params)
}
