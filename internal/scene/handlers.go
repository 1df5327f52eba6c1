package scene

import (
	"fmt"

	"github.com/scenemcp/scenemcp/internal/bridge"
)

// Command names exposed through the dispatch table.
const (
	CmdSceneState  = "query-scene-state"
	CmdEntityInfo  = "query-entity-detail"
	CmdExecuteCode = "run-arbitrary-code"
	CmdGroupExists = "check-named-group-exists"
	CmdGroupInputs = "list-group-inputs"
	CmdSetInput    = "set-group-input"
	CmdListParts   = "list-taggable-parts"
	CmdInitBase    = "initialize-base-asset"
	CmdSwapPart    = "swap-named-part"
)

// FeatureAssets gates the part-library commands.
const FeatureAssets = "assets"

type entityParams struct {
	Name string `json:"name"`
}

type groupParams struct {
	GroupName string `json:"group_name"`
}

type setInputParams struct {
	GroupName string `json:"group_name"`
	InputName string `json:"input_name"`
	Value     any    `json:"value"`
}

type codeParams struct {
	Code string `json:"code"`
}

type swapParams struct {
	PartType string `json:"part_type"`
	NewName  string `json:"new_name"`
}

// RegisterHandlers installs the scene command set into the dispatch
// table. The assets gate controls the part-library commands; when it
// reports false they resolve to gated-feature errors without touching
// the scene.
func RegisterHandlers(d *bridge.Dispatcher, s *Scene, assets bridge.Gate) {
	d.Register(CmdSceneState, bridge.Typed(func(struct{}) (any, error) {
		return s.Summary(), nil
	}))

	d.Register(CmdEntityInfo, bridge.Typed(func(p entityParams) (any, error) {
		return s.Detail(p.Name)
	}))

	d.Register(CmdExecuteCode, bridge.Typed(func(p codeParams) (any, error) {
		output, err := s.ExecuteScript(p.Code)
		if err != nil {
			return nil, err
		}
		return map[string]any{"executed": true, "output": output}, nil
	}))

	d.Register(CmdGroupExists, bridge.Typed(func(p groupParams) (any, error) {
		return s.Group(p.GroupName) != nil, nil
	}))

	d.Register(CmdGroupInputs, bridge.Typed(func(p groupParams) (any, error) {
		g := s.Group(p.GroupName)
		if g == nil {
			return nil, fmt.Errorf("node group not found: %s", p.GroupName)
		}
		return g.Inputs, nil
	}))

	d.Register(CmdSetInput, bridge.Typed(func(p setInputParams) (any, error) {
		g := s.Group(p.GroupName)
		if g == nil {
			return nil, fmt.Errorf("node group not found: %s", p.GroupName)
		}
		modified := 0
		for _, e := range s.Entities() {
			for _, mod := range e.Modifiers {
				if mod.Group != p.GroupName {
					continue
				}
				if mod.Inputs == nil {
					mod.Inputs = make(map[string]any)
				}
				mod.Inputs[p.InputName] = p.Value
				modified++
			}
		}
		return map[string]any{
			"modified_modifiers": modified,
			"group":              p.GroupName,
			"input":              p.InputName,
			"new_value":          p.Value,
		}, nil
	}))

	d.RegisterGated(CmdListParts, FeatureAssets, assets, bridge.Typed(func(struct{}) (any, error) {
		return s.TaggableParts(), nil
	}))

	d.RegisterGated(CmdInitBase, FeatureAssets, assets, bridge.Typed(func(struct{}) (any, error) {
		return map[string]any{"message": s.InitializeBaseAsset()}, nil
	}))

	d.RegisterGated(CmdSwapPart, FeatureAssets, assets, bridge.Typed(func(p swapParams) (any, error) {
		msg, err := s.SwapPart(p.PartType, p.NewName)
		if err != nil {
			return nil, err
		}
		return map[string]any{"message": msg}, nil
	}))
}
