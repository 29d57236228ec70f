// Package meshtest builds small meshes for tests.
package meshtest

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/pkg/kernel"
)

// cubeFaces are the twelve triangles of a box over the corner layout of
// Box, wound counter-clockwise seen from outside. Faces 0,1 are the
// bottom (-Z) and 2,3 the top (+Z).
var cubeFaces = [][3]int{
	{0, 2, 1}, {0, 3, 2}, // -Z
	{4, 5, 6}, {4, 6, 7}, // +Z
	{0, 1, 5}, {0, 5, 4}, // -Y
	{3, 7, 6}, {3, 6, 2}, // +Y
	{0, 4, 7}, {0, 7, 3}, // -X
	{1, 2, 6}, {1, 6, 5}, // +X
}

// Box returns a closed, outward-wound box spanning lo..hi.
func Box(lo, hi r3.Vec) *kernel.Mesh {
	faces := make([][3]int, len(cubeFaces))
	copy(faces, cubeFaces)
	return &kernel.Mesh{
		Name: "box",
		Vertices: []r3.Vec{
			{X: lo.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: hi.Y, Z: lo.Z},
			{X: lo.X, Y: hi.Y, Z: lo.Z},
			{X: lo.X, Y: lo.Y, Z: hi.Z},
			{X: hi.X, Y: lo.Y, Z: hi.Z},
			{X: hi.X, Y: hi.Y, Z: hi.Z},
			{X: lo.X, Y: hi.Y, Z: hi.Z},
		},
		Faces: faces,
	}
}

// UnitCube returns Box((0,0,0), (1,1,1)).
func UnitCube() *kernel.Mesh {
	return Box(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
}

// Soup returns n independent triangles with vertices drawn uniformly from
// [0, size)^3. The same seed always yields the same soup.
func Soup(seed int64, n int, size float64) *kernel.Mesh {
	rng := rand.New(rand.NewSource(seed))
	m := &kernel.Mesh{Name: "soup"}
	for i := 0; i < n; i++ {
		base := len(m.Vertices)
		for k := 0; k < 3; k++ {
			m.Vertices = append(m.Vertices, r3.Vec{
				X: rng.Float64() * size,
				Y: rng.Float64() * size,
				Z: rng.Float64() * size,
			})
		}
		m.Faces = append(m.Faces, [3]int{base, base + 1, base + 2})
	}
	return m
}

// Points returns n points drawn uniformly from [lo, hi)^3.
func Points(seed int64, n int, lo, hi float64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = r3.Vec{
			X: lo + rng.Float64()*(hi-lo),
			Y: lo + rng.Float64()*(hi-lo),
			Z: lo + rng.Float64()*(hi-lo),
		}
	}
	return pts
}
