package tools

import (
	"encoding/json"

	"github.com/scenemcp/scenemcp/internal/client"
)

// SceneInput defines input for the scene tool.
type SceneInput struct {
	Action string `json:"action,omitempty" jsonschema:"Action: summary (default) or object"`
	Name   string `json:"name,omitempty" jsonschema:"Object name (required for object)"`
}

// SceneOutput defines output for the scene tool.
type SceneOutput struct {
	Summary *client.SceneSummary `json:"summary,omitempty"`
	Object  *client.EntityDetail `json:"object,omitempty"`
}

// ExecuteInput defines input for the execute tool.
type ExecuteInput struct {
	Code string `json:"code" jsonschema:"Lua script to run on the scene host"`
}

// ExecuteOutput defines output for the execute tool.
type ExecuteOutput struct {
	Executed bool   `json:"executed"`
	Output   string `json:"output"`
}

// GroupsInput defines input for the groups tool.
type GroupsInput struct {
	Action    string          `json:"action,omitempty" jsonschema:"Action: exists (default), inputs, or set"`
	GroupName string          `json:"group_name" jsonschema:"Node group name"`
	InputName string          `json:"input_name,omitempty" jsonschema:"Input socket name (required for set)"`
	Value     json.RawMessage `json:"value,omitempty" jsonschema:"New input value (required for set)"`
}

// GroupsOutput defines output for the groups tool.
type GroupsOutput struct {
	Exists *bool                  `json:"exists,omitempty"`
	Inputs []client.GroupInput    `json:"inputs,omitempty"`
	Set    *client.SetInputResult `json:"set,omitempty"`
}

// PartsInput defines input for the parts tool.
type PartsInput struct {
	Action   string `json:"action,omitempty" jsonschema:"Action: list (default), init, or swap"`
	PartType string `json:"part_type,omitempty" jsonschema:"Part category (required for swap)"`
	NewName  string `json:"new_name,omitempty" jsonschema:"Replacement asset name (required for swap)"`
}

// PartsOutput defines output for the parts tool.
type PartsOutput struct {
	Parts   map[string][]string `json:"parts,omitempty"`
	Message string              `json:"message,omitempty"`
}
