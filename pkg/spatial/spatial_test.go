package spatial

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/internal/meshtest"
)

func builders() map[string]Builder {
	return map[string]Builder{
		"linear":  NewLinear,
		"aabb":    TreeBuilder(),
		"aabb-1":  TreeBuilder(WithLeafSize(1)),
		"aabb-16": TreeBuilder(WithLeafSize(16)),
	}
}

func TestCubeRayHits(t *testing.T) {
	cube := meshtest.UnitCube()
	for name, build := range builders() {
		t.Run(name, func(t *testing.T) {
			idx := build(cube.Vertices, cube.Faces)

			// Through the interior of one triangle of each cap.
			hits := idx.RayHits(r3.Vec{X: 0.75, Y: 0.25, Z: -1}, r3.Vec{Z: 1})
			require.Len(t, hits, 2)
			assert.InDelta(t, 1, hits[0].T, 1e-12)
			assert.InDelta(t, 2, hits[1].T, 1e-12)
			assert.Equal(t, 0, hits[0].Face)
			assert.Equal(t, 2, hits[1].Face)

			hit, ok := idx.RayHit(r3.Vec{X: 0.75, Y: 0.25, Z: -1}, r3.Vec{Z: 1})
			require.True(t, ok)
			assert.Equal(t, hits[0], hit)
		})
	}
}

func TestCubeRayThroughSharedEdge(t *testing.T) {
	cube := meshtest.UnitCube()
	for name, build := range builders() {
		t.Run(name, func(t *testing.T) {
			idx := build(cube.Vertices, cube.Faces)

			// (0.5, 0.5) lies on the diagonal shared by both cap triangles.
			hits := idx.RayHits(r3.Vec{X: 0.5, Y: 0.5, Z: -1}, r3.Vec{Z: 1})
			require.Len(t, hits, 4)
			assert.Equal(t, []int{0, 1, 2, 3}, []int{hits[0].Face, hits[1].Face, hits[2].Face, hits[3].Face})

			hit, ok := idx.RayHit(r3.Vec{X: 0.5, Y: 0.5, Z: -1}, r3.Vec{Z: 1})
			require.True(t, ok)
			assert.Equal(t, 0, hit.Face)
		})
	}
}

func TestCubeMiss(t *testing.T) {
	cube := meshtest.UnitCube()
	for name, build := range builders() {
		t.Run(name, func(t *testing.T) {
			idx := build(cube.Vertices, cube.Faces)
			hit, ok := idx.RayHit(r3.Vec{X: 5, Y: 5, Z: -1}, r3.Vec{Z: 1})
			assert.False(t, ok)
			assert.Equal(t, -1, hit.Face)
			assert.Empty(t, idx.RayHits(r3.Vec{X: 5, Y: 5, Z: -1}, r3.Vec{Z: 1}))

			// Pointing away from the cube.
			_, ok = idx.RayHit(r3.Vec{X: 0.75, Y: 0.25, Z: -1}, r3.Vec{Z: -1})
			assert.False(t, ok)
		})
	}
}

func TestCubeNearest(t *testing.T) {
	cube := meshtest.UnitCube()
	for name, build := range builders() {
		t.Run(name, func(t *testing.T) {
			idx := build(cube.Vertices, cube.Faces)

			n := idx.Nearest(r3.Vec{X: 0.75, Y: 0.25, Z: -2})
			assert.InDelta(t, 4, n.Dist2, 1e-12)
			assert.Equal(t, 0, n.Face)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(n.Point, r3.Vec{X: 0.75, Y: 0.25})), 1e-12)

			// On the surface.
			n = idx.Nearest(r3.Vec{X: 1, Y: 0.5, Z: 0.25})
			assert.InDelta(t, 0, n.Dist2, 1e-18)

			// Inside, closest to the +X wall.
			n = idx.Nearest(r3.Vec{X: 0.9, Y: 0.5, Z: 0.4})
			assert.InDelta(t, 0.01, n.Dist2, 1e-12)
			assert.Contains(t, []int{10, 11}, n.Face)
		})
	}
}

func TestEmptyIndex(t *testing.T) {
	for name, build := range builders() {
		t.Run(name, func(t *testing.T) {
			idx := build(nil, nil)
			_, ok := idx.RayHit(r3.Vec{}, r3.Vec{Z: 1})
			assert.False(t, ok)
			assert.Empty(t, idx.RayHits(r3.Vec{}, r3.Vec{Z: 1}))
			assert.Equal(t, -1, idx.Nearest(r3.Vec{}).Face)
		})
	}
}

// The tree must agree exactly with brute force, including tie-breaks.
func TestTreeMatchesLinear(t *testing.T) {
	soup := meshtest.Soup(7, 300, 10)
	ref := NewLinear(soup.Vertices, soup.Faces)

	origins := meshtest.Points(11, 200, -2, 12)
	targets := meshtest.Points(13, 200, 0, 10)

	for _, leaf := range []int{1, 2, 4, 8, 32} {
		tree := NewAABBTree(soup.Vertices, soup.Faces, WithLeafSize(leaf))
		for i := range origins {
			dir := r3.Sub(targets[i], origins[i])

			wantHit, wantOK := ref.RayHit(origins[i], dir)
			gotHit, gotOK := tree.RayHit(origins[i], dir)
			require.Equal(t, wantOK, gotOK, "leaf %d ray %d", leaf, i)
			require.Equal(t, wantHit, gotHit, "leaf %d ray %d", leaf, i)

			if diff := cmp.Diff(ref.RayHits(origins[i], dir), tree.RayHits(origins[i], dir)); diff != "" {
				t.Fatalf("leaf %d ray %d hits mismatch (-linear +tree):\n%s", leaf, i, diff)
			}

			if diff := cmp.Diff(ref.Nearest(origins[i]), tree.Nearest(origins[i])); diff != "" {
				t.Fatalf("leaf %d point %d nearest mismatch (-linear +tree):\n%s", leaf, i, diff)
			}
		}
	}
}

func TestLeafSize(t *testing.T) {
	soup := meshtest.Soup(3, 64, 10)

	fine := NewAABBTree(soup.Vertices, soup.Faces, WithLeafSize(1))
	coarse := NewAABBTree(soup.Vertices, soup.Faces, WithLeafSize(16))
	ignored := NewAABBTree(soup.Vertices, soup.Faces, WithLeafSize(0))

	assert.Equal(t, 127, fine.NodeCount())
	assert.Equal(t, 7, fine.Depth())
	assert.Equal(t, 7, coarse.NodeCount())
	assert.Equal(t, 3, coarse.Depth())
	assert.Equal(t, NewAABBTree(soup.Vertices, soup.Faces).NodeCount(), ignored.NodeCount())
}
