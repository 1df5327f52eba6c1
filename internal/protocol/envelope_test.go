package protocol

import (
	"encoding/json"
	"testing"
)

func TestResponse_ExactlyOneOfResultOrMessage(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{name: "object result", resp: Success(map[string]any{"name": "Scene"})},
		{name: "false result", resp: Success(false)},
		{name: "zero result", resp: Success(0)},
		{name: "empty string result", resp: Success("")},
		{name: "nil result", resp: Success(nil)},
		{name: "error", resp: Error("entity not found: %s", "Cube")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var keys map[string]json.RawMessage
			if err := json.Unmarshal(data, &keys); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			_, hasResult := keys["result"]
			_, hasMessage := keys["message"]
			if hasResult == hasMessage {
				t.Errorf("envelope %s has result=%v message=%v, want exactly one", data, hasResult, hasMessage)
			}
			if tt.resp.Status == StatusSuccess && !hasResult {
				t.Errorf("success envelope %s missing result", data)
			}
			if tt.resp.Status == StatusError && !hasMessage {
				t.Errorf("error envelope %s missing message", data)
			}
		})
	}
}

func TestNewCommand(t *testing.T) {
	cmd, err := NewCommand("set-group-input", map[string]any{
		"group_name": "Scatter",
		"input_name": "Density",
		"value":      2.5,
	})
	if err != nil {
		t.Fatalf("NewCommand() error = %v", err)
	}
	if cmd.Type != "set-group-input" {
		t.Errorf("Type = %q", cmd.Type)
	}

	var params map[string]any
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		t.Fatalf("params: %v", err)
	}
	if params["input_name"] != "Density" {
		t.Errorf("input_name = %v", params["input_name"])
	}
}

func TestNewCommand_NilParams(t *testing.T) {
	cmd, err := NewCommand("query-scene-state", nil)
	if err != nil {
		t.Fatalf("NewCommand() error = %v", err)
	}
	if string(cmd.Params) != "{}" {
		t.Errorf("Params = %s, want {}", cmd.Params)
	}
}
