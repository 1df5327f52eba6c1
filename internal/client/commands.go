package client

import (
	"encoding/json"
	"fmt"
)

// SceneSummary is the result of query-scene-state.
type SceneSummary struct {
	Name           string          `json:"name"`
	ObjectCount    int             `json:"object_count"`
	Objects        []ObjectSummary `json:"objects"`
	MaterialsCount int             `json:"materials_count"`
}

// ObjectSummary is one entry in a scene summary.
type ObjectSummary struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Location [3]float64 `json:"location"`
}

// EntityDetail is the result of query-entity-detail.
type EntityDetail struct {
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Location         [3]float64     `json:"location"`
	Rotation         [3]float64     `json:"rotation"`
	Scale            [3]float64     `json:"scale"`
	Visible          bool           `json:"visible"`
	Materials        []string       `json:"materials"`
	WorldBoundingBox *[2][3]float64 `json:"world_bounding_box,omitempty"`
	Mesh             *MeshDetail    `json:"mesh,omitempty"`
}

// MeshDetail holds mesh statistics inside an entity detail.
type MeshDetail struct {
	Vertices int `json:"vertices"`
	Edges    int `json:"edges"`
	Polygons int `json:"polygons"`
}

// GroupInput describes one node group input socket.
type GroupInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default"`
}

// SetInputResult is the result of set-group-input.
type SetInputResult struct {
	ModifiedModifiers int    `json:"modified_modifiers"`
	Group             string `json:"group"`
	Input             string `json:"input"`
	NewValue          any    `json:"new_value"`
}

// SceneState queries the scene summary.
func (c *Client) SceneState() (*SceneSummary, error) {
	var summary SceneSummary
	if err := c.call("query-scene-state", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// EntityDetail queries one entity by name.
func (c *Client) EntityDetail(name string) (*EntityDetail, error) {
	var detail EntityDetail
	if err := c.call("query-entity-detail", map[string]any{"name": name}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExecuteCode runs a script on the host and returns its captured
// output.
func (c *Client) ExecuteCode(code string) (string, error) {
	var result struct {
		Executed bool   `json:"executed"`
		Output   string `json:"output"`
	}
	if err := c.call("run-arbitrary-code", map[string]any{"code": code}, &result); err != nil {
		return "", err
	}
	return result.Output, nil
}

// HasNodeGroup checks whether a node group exists.
func (c *Client) HasNodeGroup(groupName string) (bool, error) {
	var exists bool
	if err := c.call("check-named-group-exists", map[string]any{"group_name": groupName}, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GroupInputs lists a node group's input sockets in declaration order.
func (c *Client) GroupInputs(groupName string) ([]GroupInput, error) {
	var inputs []GroupInput
	if err := c.call("list-group-inputs", map[string]any{"group_name": groupName}, &inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}

// SetGroupInput sets an input value on every modifier using the group.
func (c *Client) SetGroupInput(groupName, inputName string, value any) (*SetInputResult, error) {
	params := map[string]any{
		"group_name": groupName,
		"input_name": inputName,
		"value":      value,
	}
	var result SetInputResult
	if err := c.call("set-group-input", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Parts lists the taggable part categories and their asset variants.
func (c *Client) Parts() (map[string][]string, error) {
	var parts map[string][]string
	if err := c.call("list-taggable-parts", nil, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// InitBaseAsset loads the base asset into the scene.
func (c *Client) InitBaseAsset() (string, error) {
	return c.statusCall("initialize-base-asset", nil)
}

// SwapPart replaces the named part category with a new asset.
func (c *Client) SwapPart(partType, newName string) (string, error) {
	return c.statusCall("swap-named-part", map[string]any{
		"part_type": partType,
		"new_name":  newName,
	})
}

// call sends a command and binds the result into out.
func (c *Client) call(cmdType string, params any, out any) error {
	result, err := c.Send(cmdType, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("%s: unmarshal result: %w", cmdType, err)
	}
	return nil
}

// statusCall sends a command whose result is a status message.
func (c *Client) statusCall(cmdType string, params any) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	if err := c.call(cmdType, params, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}
