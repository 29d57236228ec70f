package sla

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/pkg/kernel"
)

// IndexedMesh is a raw container of points with triangle and quad faces.
// Quads are kept as quads until a triangle-only consumer needs them.
type IndexedMesh struct {
	Points []r3.Vec
	Faces3 [][3]int
	Faces4 [][4]int
}

// NewIndexedMesh copies a triangle mesh into a raw container. A nil mesh
// yields an empty container.
func NewIndexedMesh(m *kernel.Mesh) *IndexedMesh {
	im := &IndexedMesh{}
	if m == nil {
		return im
	}
	im.Points = append(im.Points, m.Vertices...)
	im.Faces3 = append(im.Faces3, m.Faces...)
	return im
}

// IndexedMeshFromSpatial copies the arrays of a SpatialMesh.
func IndexedMeshFromSpatial(sm *SpatialMesh) *IndexedMesh {
	return &IndexedMesh{
		Points: append([]r3.Vec(nil), sm.vertices...),
		Faces3: append([][3]int(nil), sm.faces...),
	}
}

// ToTriangleMesh converts to the interchange format. Triangles come
// first, then each quad a-b-c-d as the pair a-b-c, a-c-d.
func (im *IndexedMesh) ToTriangleMesh() *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices: append([]r3.Vec(nil), im.Points...),
		Faces:    make([][3]int, 0, len(im.Faces3)+2*len(im.Faces4)),
	}
	m.Faces = append(m.Faces, im.Faces3...)
	for _, q := range im.Faces4 {
		m.Faces = append(m.Faces, [3]int{q[0], q[1], q[2]}, [3]int{q[0], q[2], q[3]})
	}
	return m
}

// Merge appends other's geometry, shifting its face indices by the
// receiver's point count before the merge. It returns the receiver so
// calls can be chained. Merging a mesh into itself doubles it.
func (im *IndexedMesh) Merge(other *IndexedMesh) *IndexedMesh {
	if other == nil {
		return im
	}
	offset := len(im.Points)
	points, faces3, faces4 := other.Points, other.Faces3, other.Faces4

	im.Points = append(im.Points, points...)
	for _, f := range faces3 {
		im.Faces3 = append(im.Faces3, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
	}
	for _, f := range faces4 {
		im.Faces4 = append(im.Faces4, [4]int{f[0] + offset, f[1] + offset, f[2] + offset, f[3] + offset})
	}
	return im
}

// MergeTriangles appends a flat list of positions as independent
// triangles, three points each. A trailing partial triangle is ignored.
func (im *IndexedMesh) MergeTriangles(pts []r3.Vec) *IndexedMesh {
	for i := 0; i+3 <= len(pts); i += 3 {
		base := len(im.Points)
		im.Points = append(im.Points, pts[i], pts[i+1], pts[i+2])
		im.Faces3 = append(im.Faces3, [3]int{base, base + 1, base + 2})
	}
	return im
}

// Empty reports whether there is nothing to render: no points, or points
// without any faces.
func (im *IndexedMesh) Empty() bool {
	return len(im.Points) == 0 || (len(im.Faces3) == 0 && len(im.Faces4) == 0)
}
