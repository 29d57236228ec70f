// Package spatial provides acceleration indexes over triangle meshes.
// An Index answers ray intersection and nearest-surface queries; the
// implementations are interchangeable and return identical results, so
// callers pick one for speed without changing behavior.
//
// Ray distances are multiples of the supplied direction vector: a hit at
// T lies at origin + T*dir. Directions are never normalised.
package spatial

import "gonum.org/v1/gonum/spatial/r3"

// Hit is a single ray/triangle intersection.
type Hit struct {
	T    float64 // distance along the ray in units of the direction length
	Face int     // index of the intersected triangle
}

// Nearest is the result of a closest-point query.
type Nearest struct {
	Dist2 float64 // squared Euclidean distance to the surface
	Face  int     // closest triangle
	Point r3.Vec  // closest point on that triangle
}

// Index is the query capability a mesh delegates to. Implementations are
// immutable after construction and safe for concurrent use.
type Index interface {
	// RayHit returns the closest hit at T >= 0. Equal distances resolve to
	// the lower face index.
	RayHit(origin, dir r3.Vec) (Hit, bool)

	// RayHits returns every hit at T >= 0 ordered by (T, Face).
	RayHits(origin, dir r3.Vec) []Hit

	// Nearest returns the closest surface point to p. Equal distances
	// resolve to the lower face index.
	Nearest(p r3.Vec) Nearest
}

// Builder constructs an Index over the given triangles. The slices are
// owned by the caller and must not change while the index is in use.
type Builder func(vertices []r3.Vec, faces [][3]int) Index

// less orders hits by distance, then face.
func less(a, b Hit) bool {
	if a.T != b.T {
		return a.T < b.T
	}
	return a.Face < b.Face
}

// better reports whether candidate n beats the current best.
func better(n, best Nearest) bool {
	if n.Dist2 != best.Dist2 {
		return n.Dist2 < best.Dist2
	}
	return n.Face < best.Face
}
