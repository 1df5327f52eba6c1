// Package scene implements the host's in-memory scene graph and the
// command handlers that operate on it.
//
// Scene is not safe for concurrent use. Every access must happen on the
// bridge's main execution context; handlers registered through
// RegisterHandlers are only ever invoked there.
package scene

import (
	"fmt"
	"math"
)

// Entity kinds.
const (
	KindMesh   = "MESH"
	KindLight  = "LIGHT"
	KindCamera = "CAMERA"
	KindEmpty  = "EMPTY"
)

// summaryObjectLimit caps how many objects a scene summary lists; the
// summary is meant to stay small enough for an LLM context window.
const summaryObjectLimit = 10

// Entity is one object in the scene graph.
type Entity struct {
	Name      string
	Kind      string
	Location  [3]float64
	Rotation  [3]float64 // Euler XYZ, radians
	Scale     [3]float64
	Visible   bool
	Materials []string
	Asset     string // source asset name for library parts
	Mesh      *Mesh
	Modifiers []*Modifier
}

// Mesh holds geometry statistics and the local-space bounding box.
type Mesh struct {
	Vertices int
	Edges    int
	Polygons int
	Bounds   [2][3]float64 // local min/max corners
}

// Modifier applies a node group to an entity with per-modifier input
// overrides.
type Modifier struct {
	Group  string
	Inputs map[string]any
}

// NodeGroup is a named group with ordered input sockets.
type NodeGroup struct {
	Name   string
	Inputs []GroupInput
}

// GroupInput is one input socket declaration.
type GroupInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default"`
}

// Scene is the mutable scene graph owned by the host.
type Scene struct {
	Name string

	entities  map[string]*Entity
	order     []string
	groups    map[string]*NodeGroup
	materials map[string]bool

	library  *PartLibrary
	assembly map[string]string // part category -> current asset
}

// New creates an empty scene with the default part library.
func New(name string) *Scene {
	return &Scene{
		Name:      name,
		entities:  make(map[string]*Entity),
		groups:    make(map[string]*NodeGroup),
		materials: make(map[string]bool),
		library:   DefaultPartLibrary(),
		assembly:  make(map[string]string),
	}
}

// Add inserts an entity, replacing any previous entity of the same
// name while keeping its position in the scene order.
func (s *Scene) Add(e *Entity) {
	if e.Scale == ([3]float64{}) {
		e.Scale = [3]float64{1, 1, 1}
	}
	if _, exists := s.entities[e.Name]; !exists {
		s.order = append(s.order, e.Name)
	}
	s.entities[e.Name] = e
	for _, m := range e.Materials {
		s.materials[m] = true
	}
}

// Remove deletes an entity by name and reports whether it existed.
func (s *Scene) Remove(name string) bool {
	if _, ok := s.entities[name]; !ok {
		return false
	}
	delete(s.entities, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns an entity by name, or nil.
func (s *Scene) Get(name string) *Entity {
	return s.entities[name]
}

// Entities returns all entities in scene order.
func (s *Scene) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entities[name])
	}
	return out
}

// Count returns the number of entities.
func (s *Scene) Count() int {
	return len(s.order)
}

// AddGroup registers a node group.
func (s *Scene) AddGroup(g *NodeGroup) {
	s.groups[g.Name] = g
}

// Group returns a node group by name, or nil.
func (s *Scene) Group(name string) *NodeGroup {
	return s.groups[name]
}

// RegisterMaterial records a material name for the scene-wide count.
func (s *Scene) RegisterMaterial(name string) {
	s.materials[name] = true
}

// MaterialCount returns the number of distinct materials.
func (s *Scene) MaterialCount() int {
	return len(s.materials)
}

// Summary types mirror the wire shapes of query-scene-state.

// Summary is the query-scene-state result.
type Summary struct {
	Name           string          `json:"name"`
	ObjectCount    int             `json:"object_count"`
	Objects        []ObjectSummary `json:"objects"`
	MaterialsCount int             `json:"materials_count"`
}

// ObjectSummary is one abbreviated entity entry.
type ObjectSummary struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Location [3]float64 `json:"location"`
}

// Summary builds the scene summary: total counts plus the first few
// objects with locations rounded to two decimals.
func (s *Scene) Summary() Summary {
	summary := Summary{
		Name:           s.Name,
		ObjectCount:    s.Count(),
		Objects:        []ObjectSummary{},
		MaterialsCount: s.MaterialCount(),
	}
	for i, name := range s.order {
		if i >= summaryObjectLimit {
			break
		}
		e := s.entities[name]
		summary.Objects = append(summary.Objects, ObjectSummary{
			Name: e.Name,
			Type: e.Kind,
			Location: [3]float64{
				round2(e.Location[0]),
				round2(e.Location[1]),
				round2(e.Location[2]),
			},
		})
	}
	return summary
}

// Detail is the query-entity-detail result.
type Detail struct {
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

// MeshDetail holds the geometry statistics inside a Detail.
type MeshDetail struct {
	Vertices int `json:"vertices"`
	Edges    int `json:"edges"`
	Polygons int `json:"polygons"`
}

// Detail builds the full description of one entity.
func (s *Scene) Detail(name string) (Detail, error) {
	e := s.entities[name]
	if e == nil {
		return Detail{}, fmt.Errorf("entity not found: %s", name)
	}

	detail := Detail{
		Name:      e.Name,
		Type:      e.Kind,
		Location:  e.Location,
		Rotation:  e.Rotation,
		Scale:     e.Scale,
		Visible:   e.Visible,
		Materials: append([]string{}, e.Materials...),
	}
	if e.Mesh != nil {
		box := worldBounds(e)
		detail.WorldBoundingBox = &box
		detail.Mesh = &MeshDetail{
			Vertices: e.Mesh.Vertices,
			Edges:    e.Mesh.Edges,
			Polygons: e.Mesh.Polygons,
		}
	}
	return detail, nil
}

// worldBounds computes the world-space axis-aligned bounding box of a
// mesh entity: each local corner is scaled, rotated (Euler XYZ), and
// translated, then min/maxed.
func worldBounds(e *Entity) [2][3]float64 {
	lo, hi := e.Mesh.Bounds[0], e.Mesh.Bounds[1]

	var out [2][3]float64
	first := true
	for _, x := range []float64{lo[0], hi[0]} {
		for _, y := range []float64{lo[1], hi[1]} {
			for _, z := range []float64{lo[2], hi[2]} {
				corner := [3]float64{x * e.Scale[0], y * e.Scale[1], z * e.Scale[2]}
				corner = rotateXYZ(corner, e.Rotation)
				for i := range corner {
					corner[i] += e.Location[i]
				}
				if first {
					out[0], out[1] = corner, corner
					first = false
					continue
				}
				for i := range corner {
					out[0][i] = math.Min(out[0][i], corner[i])
					out[1][i] = math.Max(out[1][i], corner[i])
				}
			}
		}
	}
	return out
}

// rotateXYZ applies intrinsic X, then Y, then Z rotation.
func rotateXYZ(v, euler [3]float64) [3]float64 {
	sx, cx := math.Sincos(euler[0])
	sy, cy := math.Sincos(euler[1])
	sz, cz := math.Sincos(euler[2])

	// X axis
	v = [3]float64{v[0], cx*v[1] - sx*v[2], sx*v[1] + cx*v[2]}
	// Y axis
	v = [3]float64{cy*v[0] + sy*v[2], v[1], -sy*v[0] + cy*v[2]}
	// Z axis
	return [3]float64{cz*v[0] - sz*v[1], sz*v[0] + cz*v[1], v[2]}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
