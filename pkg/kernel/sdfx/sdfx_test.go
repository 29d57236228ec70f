package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/sla/pkg/kernel"
)

// testCells keeps marching cubes fast in tests.
const testCells = 48

func TestBox(t *testing.T) {
	k := NewWithResolution(testCells)
	mesh, err := k.ToMesh(k.Box(100, 50, 25))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	min, max := mesh.Bounds()
	const tol = 5.0
	if math.Abs(min.Z) > tol || math.Abs(max.Z-25) > tol {
		t.Errorf("box Z range = [%.2f, %.2f], want about [0, 25]", min.Z, max.Z)
	}
	if math.Abs(max.X-100) > tol {
		t.Errorf("box max X = %.2f, want about 100", max.X)
	}
}

func TestToMeshWeldsVertices(t *testing.T) {
	k := NewWithResolution(testCells)
	mesh, err := k.ToMesh(k.Sphere(10))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	// A welded closed surface shares each vertex between several triangles,
	// so there are far fewer vertices than triangle corners.
	if mesh.VertexCount() >= mesh.TriangleCount()*3 {
		t.Errorf("vertices = %d, triangles = %d: soup was not welded",
			mesh.VertexCount(), mesh.TriangleCount())
	}
	for i, f := range mesh.Faces {
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			t.Fatalf("face %d is collapsed: %v", i, f)
		}
	}
}

func TestSphereRadius(t *testing.T) {
	k := NewWithResolution(testCells)
	mesh, err := k.ToMesh(k.Sphere(10))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	for i, v := range mesh.Vertices {
		r := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		if math.Abs(r-10) > 1 {
			t.Fatalf("vertex %d at radius %.3f, want about 10", i, r)
		}
	}
}

func TestCylinder(t *testing.T) {
	k := NewWithResolution(testCells)
	mesh, err := k.ToMesh(k.Cylinder(50, 10))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	min, max := mesh.Bounds()
	if math.Abs(min.Z+25) > 3 || math.Abs(max.Z-25) > 3 {
		t.Errorf("cylinder Z range = [%.2f, %.2f], want about [-25, 25]", min.Z, max.Z)
	}
}

func TestDifferenceShrinksVolume(t *testing.T) {
	k := NewWithResolution(testCells)
	box := k.Box(100, 100, 100)
	hole := k.Translate(k.Cylinder(200, 20), 50, 50, 50)
	cut := k.Difference(box, hole)

	minA, maxA := box.BoundingBox()
	minB, maxB := cut.BoundingBox()
	if minA != minB || maxA != maxB {
		t.Errorf("difference bounding box = %v..%v, want %v..%v", minB, maxB, minA, maxA)
	}

	mesh, err := k.ToMesh(cut)
	if err != nil {
		t.Fatalf("ToMesh(cut) failed: %v", err)
	}
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}
	if mesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Errorf("cut mesh has %d triangles, plain box %d: the bore added no surface",
			mesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestTranslate(t *testing.T) {
	k := NewWithResolution(testCells)
	s := k.Translate(k.Sphere(5), 10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{5, 15, 25} || max != [3]float64{15, 25, 35} {
		t.Errorf("translated bounds = %v..%v", min, max)
	}
}

func TestRotateKeepsSphereBounds(t *testing.T) {
	k := NewWithResolution(testCells)
	s := k.Rotate(k.Sphere(5), 30, 45, 60)
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if min[i] > -4.9 || max[i] < 4.9 {
			t.Errorf("rotated sphere bounds axis %d = [%.3f, %.3f]", i, min[i], max[i])
		}
	}
}

var _ kernel.Solid = (*sdfxSolid)(nil)
