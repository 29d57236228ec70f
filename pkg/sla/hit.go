package sla

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// HitResult is an immutable ray query result. Results produced by a
// successful query are valid and carry a face; a miss or a placeholder
// has Face() == -1 and only its distance is meaningful.
type HitResult struct {
	distance  float64
	source    r3.Vec
	direction r3.Vec
	face      int
	normal    r3.Vec
	hasNormal bool
}

// PlaceholderHit returns an invalid result that carries only a distance,
// for example a capped search length standing in for a real hit.
func PlaceholderHit(distance float64) HitResult {
	return HitResult{distance: distance, face: -1}
}

func missHit(origin, dir r3.Vec) HitResult {
	return HitResult{
		distance:  math.Inf(1),
		source:    origin,
		direction: dir,
		face:      -1,
	}
}

// Distance is the hit distance in multiples of the ray direction length.
func (h HitResult) Distance() float64 { return h.distance }

// Source returns the ray origin.
func (h HitResult) Source() r3.Vec { return h.source }

// Direction returns the ray direction as given to the query.
func (h HitResult) Direction() r3.Vec { return h.direction }

// Face returns the hit triangle, or -1.
func (h HitResult) Face() int { return h.face }

// Position returns source + distance*direction.
func (h HitResult) Position() r3.Vec {
	return r3.Add(h.source, r3.Scale(h.distance, h.direction))
}

// IsValid reports whether the result came from a query that hit a face.
func (h HitResult) IsValid() bool { return h.face >= 0 }

// IsHit reports whether the result describes a real intersection.
func (h HitResult) IsHit() bool {
	return h.IsValid() && !math.IsInf(h.distance, 0) && !math.IsNaN(h.distance)
}

// Normal returns the unit normal of the hit face. It is false for
// invalid results and zero-area faces. The normal points outward only if
// the mesh is wound consistently.
func (h HitResult) Normal() (r3.Vec, bool) {
	if !h.IsValid() || !h.hasNormal {
		return r3.Vec{}, false
	}
	return h.normal, true
}

// IsInside reports whether the ray struck the surface from the inside,
// that is the face normal and ray direction are not opposed.
func (h HitResult) IsInside() bool {
	n, ok := h.Normal()
	return ok && r3.Dot(n, h.direction) > 0
}
