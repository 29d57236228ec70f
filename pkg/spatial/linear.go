package spatial

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Linear is a brute-force Index that tests every triangle. It serves as
// the reference the tree is checked against and is adequate for small
// meshes.
type Linear struct {
	vertices []r3.Vec
	faces    [][3]int
}

// NewLinear returns a brute-force index. It satisfies Builder.
func NewLinear(vertices []r3.Vec, faces [][3]int) Index {
	return &Linear{vertices: vertices, faces: faces}
}

// RayHit implements Index.
func (l *Linear) RayHit(origin, dir r3.Vec) (Hit, bool) {
	best := Hit{T: math.Inf(1), Face: -1}
	for i := range l.faces {
		h, ok := rayFace(origin, dir, l.vertices, l.faces, i)
		if ok && h.T < best.T {
			best = h
		}
	}
	return best, best.Face >= 0
}

// RayHits implements Index.
func (l *Linear) RayHits(origin, dir r3.Vec) []Hit {
	var hits []Hit
	for i := range l.faces {
		if h, ok := rayFace(origin, dir, l.vertices, l.faces, i); ok {
			hits = append(hits, h)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return less(hits[i], hits[j]) })
	return hits
}

// Nearest implements Index.
func (l *Linear) Nearest(p r3.Vec) Nearest {
	best := Nearest{Dist2: math.Inf(1), Face: -1}
	for i := range l.faces {
		if n := nearestOnFace(p, l.vertices, l.faces, i); n.Dist2 < best.Dist2 {
			best = n
		}
	}
	return best
}
