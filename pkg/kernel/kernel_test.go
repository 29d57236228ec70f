package kernel

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []r3.Vec
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []r3.Vec{{X: 1, Y: 2, Z: 3}}, 1},
		{"four vertices", []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name  string
		faces [][3]int
		want  int
	}{
		{"empty", nil, 0},
		{"one triangle", [][3]int{{0, 1, 2}}, 1},
		{"two triangles", [][3]int{{0, 1, 2}, {2, 3, 0}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Faces: tt.faces}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("points without faces", func(t *testing.T) {
		m := &Mesh{Vertices: []r3.Vec{{X: 1, Y: 2, Z: 3}}}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for mesh without faces, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}}, Faces: [][3]int{{0, 1, 2}}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []r3.Vec{{X: -1, Y: 2, Z: 3}, {X: 4, Y: -5, Z: 6}, {X: 0, Y: 0, Z: -7}}}
	min, max := m.Bounds()
	if min != (r3.Vec{X: -1, Y: -5, Z: -7}) {
		t.Errorf("min = %v, want {-1 -5 -7}", min)
	}
	if max != (r3.Vec{X: 4, Y: 2, Z: 6}) {
		t.Errorf("max = %v, want {4 2 6}", max)
	}
}

func TestMeshValidate(t *testing.T) {
	tri := []r3.Vec{{}, {X: 1}, {Y: 1}}
	tests := []struct {
		name string
		mesh Mesh
		want error
	}{
		{"valid", Mesh{Vertices: tri, Faces: [][3]int{{0, 1, 2}}}, nil},
		{"no vertices", Mesh{}, ErrEmptyMesh},
		{"no faces", Mesh{Vertices: tri}, ErrEmptyMesh},
		{"index too large", Mesh{Vertices: tri, Faces: [][3]int{{0, 1, 3}}}, ErrFaceIndex},
		{"negative index", Mesh{Vertices: tri, Faces: [][3]int{{-1, 1, 2}}}, ErrFaceIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{maxBB: [3]float64{x, y, z}}
}

func (k *stubKernel) Cylinder(height, radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *stubKernel) Sphere(radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -radius},
		maxBB: [3]float64{radius, radius, radius},
	}
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelSphereBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	min, max := k.Sphere(2).BoundingBox()
	if min != [3]float64{-2, -2, -2} {
		t.Errorf("Sphere min = %v, want [-2 -2 -2]", min)
	}
	if max != [3]float64{2, 2, 2} {
		t.Errorf("Sphere max = %v, want [2 2 2]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	m, err := k.ToMesh(k.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
