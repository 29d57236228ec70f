package kernel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyMesh is returned when a mesh has no vertices or no faces.
	ErrEmptyMesh = errors.New("mesh has no geometry")

	// ErrFaceIndex is returned when a face references a vertex that does
	// not exist.
	ErrFaceIndex = errors.New("face references out-of-range vertex")
)

// Mesh is an indexed triangle mesh. It is the interchange format between
// model sources (kernels, OBJ files, the host application) and the query
// structures built on top of it.
type Mesh struct {
	Vertices []r3.Vec `json:"vertices"`
	Faces    [][3]int `json:"faces"` // vertex indices, counter-clockwise seen from outside
	Name     string   `json:"name"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Faces) == 0
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// yields inverted infinite bounds.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range m.Vertices {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
		max.Z = math.Max(max.Z, v.Z)
	}
	return min, max
}

// Validate reports whether the mesh can back a query structure: it must
// have at least one vertex and one face, and every face index must refer
// to an existing vertex.
func (m *Mesh) Validate() error {
	if m.IsEmpty() {
		return fmt.Errorf("%d vertices, %d faces: %w", len(m.Vertices), len(m.Faces), ErrEmptyMesh)
	}
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("face %d index %d (have %d vertices): %w", i, idx, n, ErrFaceIndex)
			}
		}
	}
	return nil
}
