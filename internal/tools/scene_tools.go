// Package tools exposes the scene host to MCP clients as typed tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scenemcp/scenemcp/internal/client"
	"github.com/scenemcp/scenemcp/internal/config"
)

// SceneTools wraps a scene host client for MCP tool handlers.
type SceneTools struct {
	client *client.Client
	config *config.Config
}

// NewSceneTools creates a tools wrapper. The connection is established
// lazily on first tool call.
func NewSceneTools(cfg *config.Config) *SceneTools {
	return &SceneTools{config: cfg}
}

// ensureConnected ensures we have a connection to the scene host.
func (st *SceneTools) ensureConnected() error {
	if st.client == nil {
		st.client = client.New(
			client.WithAddress(st.config.Host, st.config.Port),
			client.WithTimeout(st.config.Timeout),
		)
	}
	if st.client.IsConnected() {
		return nil
	}
	if err := st.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to scene host at %s: %v", st.config.Address(), err)
	}
	return nil
}

// Close closes the scene host connection.
func (st *SceneTools) Close() error {
	if st.client != nil {
		return st.client.Close()
	}
	return nil
}

// RegisterSceneTools adds all MCP tools that communicate with the
// scene host.
func RegisterSceneTools(server *mcp.Server, st *SceneTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "scene",
		Description: `Inspect the current scene.

Actions:
  summary (default): Object count, material count, and the first few objects
  object: Full detail for one object (transform, materials, mesh stats, world bounds)

Examples:
  scene {}
  scene {action: "object", name: "Cube"}`,
	}, st.makeSceneHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name: "execute",
		Description: `Run a Lua script inside the scene host and return its printed output.

The script runs on the host's main execution context with full access to a
'scene' table (object_count, material_count, exists, add, remove, move,
location). Keep scripts short; the host is blocked while they run.

Example:
  execute {code: "scene.add('Tower', 'MESH')\nprint(scene.object_count())"}`,
	}, st.makeExecuteHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name: "groups",
		Description: `Query and edit node groups.

Actions:
  exists: Check whether a named node group exists
  inputs: List a group's input sockets in declaration order
  set: Set an input value on every modifier that uses the group

Examples:
  groups {action: "exists", group_name: "Scatter"}
  groups {action: "inputs", group_name: "Scatter"}
  groups {action: "set", group_name: "Scatter", input_name: "Density", value: 2.5}`,
	}, st.makeGroupsHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name: "parts",
		Description: `Work with the swappable part library. Requires the host's
"assets" feature.

Actions:
  list: Part categories and their asset variants
  init: Load the base asset (one base part plus placement marker per category)
  swap: Replace a category's current part with a named variant

Examples:
  parts {action: "list"}
  parts {action: "init"}
  parts {action: "swap", part_type: "Head", new_name: "Head_Slim"}`,
	}, st.makePartsHandler())
}

func (st *SceneTools) makeSceneHandler() func(context.Context, *mcp.CallToolRequest, SceneInput) (*mcp.CallToolResult, SceneOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SceneInput) (*mcp.CallToolResult, SceneOutput, error) {
		if err := st.ensureConnected(); err != nil {
			return errorResult(err.Error()), SceneOutput{}, nil
		}

		switch input.Action {
		case "", "summary":
			summary, err := st.client.SceneState()
			if err != nil {
				return hostErrorResult(err, "scene"), SceneOutput{}, nil
			}
			return nil, SceneOutput{Summary: summary}, nil

		case "object":
			if input.Name == "" {
				return errorResult("name required for object"), SceneOutput{}, nil
			}
			detail, err := st.client.EntityDetail(input.Name)
			if err != nil {
				return hostErrorResult(err, "scene"), SceneOutput{}, nil
			}
			return nil, SceneOutput{Object: detail}, nil

		default:
			return errorResult(fmt.Sprintf("unknown action %q", input.Action)), SceneOutput{}, nil
		}
	}
}

func (st *SceneTools) makeExecuteHandler() func(context.Context, *mcp.CallToolRequest, ExecuteInput) (*mcp.CallToolResult, ExecuteOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteInput) (*mcp.CallToolResult, ExecuteOutput, error) {
		if input.Code == "" {
			return errorResult("code required"), ExecuteOutput{}, nil
		}
		if err := st.ensureConnected(); err != nil {
			return errorResult(err.Error()), ExecuteOutput{}, nil
		}

		output, err := st.client.ExecuteCode(input.Code)
		if err != nil {
			return hostErrorResult(err, "execute"), ExecuteOutput{}, nil
		}
		return nil, ExecuteOutput{Executed: true, Output: output}, nil
	}
}

func (st *SceneTools) makeGroupsHandler() func(context.Context, *mcp.CallToolRequest, GroupsInput) (*mcp.CallToolResult, GroupsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GroupsInput) (*mcp.CallToolResult, GroupsOutput, error) {
		if input.GroupName == "" {
			return errorResult("group_name required"), GroupsOutput{}, nil
		}
		if err := st.ensureConnected(); err != nil {
			return errorResult(err.Error()), GroupsOutput{}, nil
		}

		switch input.Action {
		case "", "exists":
			exists, err := st.client.HasNodeGroup(input.GroupName)
			if err != nil {
				return hostErrorResult(err, "groups"), GroupsOutput{}, nil
			}
			return nil, GroupsOutput{Exists: &exists}, nil

		case "inputs":
			inputs, err := st.client.GroupInputs(input.GroupName)
			if err != nil {
				return hostErrorResult(err, "groups"), GroupsOutput{}, nil
			}
			if inputs == nil {
				inputs = []client.GroupInput{}
			}
			return nil, GroupsOutput{Inputs: inputs}, nil

		case "set":
			if input.InputName == "" {
				return errorResult("input_name required for set"), GroupsOutput{}, nil
			}
			var value any
			if len(input.Value) > 0 {
				if err := json.Unmarshal(input.Value, &value); err != nil {
					return errorResult(fmt.Sprintf("invalid value: %v", err)), GroupsOutput{}, nil
				}
			}
			result, err := st.client.SetGroupInput(input.GroupName, input.InputName, value)
			if err != nil {
				return hostErrorResult(err, "groups"), GroupsOutput{}, nil
			}
			return nil, GroupsOutput{Set: result}, nil

		default:
			return errorResult(fmt.Sprintf("unknown action %q", input.Action)), GroupsOutput{}, nil
		}
	}
}

func (st *SceneTools) makePartsHandler() func(context.Context, *mcp.CallToolRequest, PartsInput) (*mcp.CallToolResult, PartsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PartsInput) (*mcp.CallToolResult, PartsOutput, error) {
		if err := st.ensureConnected(); err != nil {
			return errorResult(err.Error()), PartsOutput{}, nil
		}

		switch input.Action {
		case "", "list":
			parts, err := st.client.Parts()
			if err != nil {
				return hostErrorResult(err, "parts"), PartsOutput{}, nil
			}
			return nil, PartsOutput{Parts: parts}, nil

		case "init":
			msg, err := st.client.InitBaseAsset()
			if err != nil {
				return hostErrorResult(err, "parts"), PartsOutput{}, nil
			}
			return nil, PartsOutput{Message: msg}, nil

		case "swap":
			if input.PartType == "" || input.NewName == "" {
				return errorResult("part_type and new_name required for swap"), PartsOutput{}, nil
			}
			msg, err := st.client.SwapPart(input.PartType, input.NewName)
			if err != nil {
				return hostErrorResult(err, "parts"), PartsOutput{}, nil
			}
			return nil, PartsOutput{Message: msg}, nil

		default:
			return errorResult(fmt.Sprintf("unknown action %q", input.Action)), PartsOutput{}, nil
		}
	}
}

// hostErrorResult turns a client error into a tool error result. Remote
// error envelopes carry their message verbatim; transport faults get
// the tool name prefixed for context.
func hostErrorResult(err error, tool string) *mcp.CallToolResult {
	var remote *client.RemoteError
	if errors.As(err, &remote) {
		return errorResult(remote.Message)
	}
	return errorResult(fmt.Sprintf("%s: %v", tool, err))
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
