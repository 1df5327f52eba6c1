package scene

// Demo builds a small starter scene so a fresh host has real content to
// answer queries with: a ground plane, a cube with a scatter modifier,
// a camera, a light, and the Scatter node group.
func Demo() *Scene {
	s := New("Scene")

	s.AddGroup(&NodeGroup{
		Name: "Scatter",
		Inputs: []GroupInput{
			{Name: "Density", Type: "FLOAT", Default: 1.0},
			{Name: "Seed", Type: "INT", Default: 0},
			{Name: "Align to Normal", Type: "BOOLEAN", Default: true},
		},
	})

	s.Add(&Entity{
		Name:      "Ground",
		Kind:      KindMesh,
		Visible:   true,
		Materials: []string{"GroundMat"},
		Mesh: &Mesh{
			Vertices: 4, Edges: 4, Polygons: 1,
			Bounds: [2][3]float64{{-10, -10, 0}, {10, 10, 0}},
		},
	})
	s.Add(&Entity{
		Name:      "Cube",
		Kind:      KindMesh,
		Location:  [3]float64{0, 0, 1},
		Visible:   true,
		Materials: []string{"CubeMat"},
		Mesh: &Mesh{
			Vertices: 8, Edges: 12, Polygons: 6,
			Bounds: [2][3]float64{{-1, -1, -1}, {1, 1, 1}},
		},
		Modifiers: []*Modifier{{Group: "Scatter"}},
	})
	s.Add(&Entity{
		Name:     "Camera",
		Kind:     KindCamera,
		Location: [3]float64{7.36, -6.93, 4.96},
		Rotation: [3]float64{1.11, 0, 0.81},
		Visible:  true,
	})
	s.Add(&Entity{
		Name:     "KeyLight",
		Kind:     KindLight,
		Location: [3]float64{4.08, 1.01, 5.9},
		Visible:  true,
	})

	return s
}
