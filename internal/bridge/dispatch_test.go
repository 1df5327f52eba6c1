package bridge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/scenemcp/scenemcp/internal/protocol"
)

func command(t *testing.T, cmdType string, params any) protocol.Command {
	t.Helper()
	cmd, err := protocol.NewCommand(cmdType, params)
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	return cmd
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d := NewDispatcher()

	resp := d.Dispatch(command(t, "does-not-exist", nil))
	if resp.Status != protocol.StatusError {
		t.Fatalf("Status = %q, want error", resp.Status)
	}
	if resp.Message != "Unknown command type: does-not-exist" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestDispatch_Success(t *testing.T) {
	d := NewDispatcher()
	d.Register("ping", func(json.RawMessage) (any, error) {
		return "pong", nil
	})

	resp := d.Dispatch(command(t, "ping", nil))
	if resp.Status != protocol.StatusSuccess {
		t.Fatalf("Status = %q, want success", resp.Status)
	}
	if resp.Result != "pong" {
		t.Errorf("Result = %v", resp.Result)
	}
}

func TestDispatch_HandlerError(t *testing.T) {
	d := NewDispatcher()
	d.Register("boom", func(json.RawMessage) (any, error) {
		return nil, errors.New("entity not found: Cube")
	})

	resp := d.Dispatch(command(t, "boom", nil))
	if resp.Status != protocol.StatusError {
		t.Fatalf("Status = %q, want error", resp.Status)
	}
	if resp.Message != "entity not found: Cube" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestDispatch_HandlerPanicRecovered(t *testing.T) {
	d := NewDispatcher()
	d.Register("panic", func(json.RawMessage) (any, error) {
		panic("index out of range")
	})

	resp := d.Dispatch(command(t, "panic", nil))
	if resp.Status != protocol.StatusError {
		t.Fatalf("Status = %q, want error", resp.Status)
	}
	if resp.Message != "index out of range" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestDispatch_GatedFeature(t *testing.T) {
	enabled := false
	ran := 0

	d := NewDispatcher()
	d.RegisterGated("initialize-base-asset", "assets", func() bool { return enabled },
		func(json.RawMessage) (any, error) {
			ran++
			return "ok", nil
		})

	resp := d.Dispatch(command(t, "initialize-base-asset", nil))
	if resp.Status != protocol.StatusError {
		t.Fatalf("Status = %q, want error", resp.Status)
	}
	if want := `Command "initialize-base-asset" is unavailable: the assets feature is disabled`; resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
	if ran != 0 {
		t.Errorf("handler ran %d times with gate off", ran)
	}

	enabled = true
	resp = d.Dispatch(command(t, "initialize-base-asset", nil))
	if resp.Status != protocol.StatusSuccess {
		t.Fatalf("Status = %q after enabling gate", resp.Status)
	}
	if ran != 1 {
		t.Errorf("handler ran %d times with gate on", ran)
	}
}

func TestTyped_BindsParams(t *testing.T) {
	type params struct {
		Name  string  `json:"name"`
		Count float64 `json:"count"`
	}

	handler := Typed(func(p params) (any, error) {
		return p.Name, nil
	})

	result, err := handler(json.RawMessage(`{"name":"Cube","count":3}`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result != "Cube" {
		t.Errorf("result = %v", result)
	}
}

func TestTyped_MalformedParams(t *testing.T) {
	type params struct {
		Name string `json:"name"`
	}

	handler := Typed(func(p params) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	})

	_, err := handler(json.RawMessage(`{"name":42}`))
	if err == nil {
		t.Fatal("expected error for mistyped params")
	}
}

// Every dispatch outcome must be a well-formed envelope with exactly one
// of result or message.
func TestDispatch_EnvelopeInvariant(t *testing.T) {
	d := NewDispatcher()
	d.Register("ok", func(json.RawMessage) (any, error) { return false, nil })
	d.Register("nil", func(json.RawMessage) (any, error) { return nil, nil })
	d.Register("err", func(json.RawMessage) (any, error) { return nil, errors.New("x") })
	d.RegisterGated("gated", "assets", func() bool { return false },
		func(json.RawMessage) (any, error) { return nil, nil })

	for _, name := range []string{"ok", "nil", "err", "gated", "missing"} {
		data, err := json.Marshal(d.Dispatch(command(t, name, nil)))
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		_, hasResult := keys["result"]
		_, hasMessage := keys["message"]
		if hasResult == hasMessage {
			t.Errorf("%s: envelope %s violates exactly-one invariant", name, data)
		}
	}
}
