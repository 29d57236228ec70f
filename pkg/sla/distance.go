package sla

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SquaredDistance returns the squared distance from p to the surface, the
// closest face and the closest point on it.
func (sm *SpatialMesh) SquaredDistance(p r3.Vec) (d2 float64, face int, closest r3.Vec) {
	n := sm.index.Nearest(p)
	return n.Dist2, n.Face, n.Point
}

// SquaredDistanceTo returns only the squared distance from p to the
// surface.
func (sm *SpatialMesh) SquaredDistanceTo(p r3.Vec) float64 {
	return sm.index.Nearest(p).Dist2
}

// SignedResult is a signed nearest-surface query result. Value is
// negative for points inside the mesh.
type SignedResult struct {
	Value float64
	Face  int
	Point r3.Vec
}

// SignedDistancer answers inside/outside queries. It is only available on
// meshes built with WithSignedDistance.
type SignedDistancer interface {
	SignedDistance(p r3.Vec) SignedResult
	Inside(p r3.Vec) bool
}

// SignedDistancer returns the signed distance capability, if enabled.
func (sm *SpatialMesh) SignedDistancer() (SignedDistancer, bool) {
	if !sm.opts.signed {
		return nil, false
	}
	return signedDistance{sm}, true
}

type signedDistance struct {
	sm *SpatialMesh
}

// signedEps is the vertex/edge snapping distance used to pick the normal
// that decides the sign, relative to the mesh size.
const signedEps = 1e-9

func (s signedDistance) SignedDistance(p r3.Vec) SignedResult {
	d2, face, closest := s.sm.SquaredDistance(p)
	r := SignedResult{Value: math.Sqrt(d2), Face: face, Point: closest}
	if face < 0 || d2 == 0 {
		return r
	}
	// At an edge or vertex the single face normal can give the wrong
	// sign, so the averaged neighbourhood normal is used there.
	n, _ := s.sm.surfaceNormal(face, closest, signedEps*s.sm.size)
	if r3.Dot(r3.Sub(p, closest), n) < 0 {
		r.Value = -r.Value
	}
	return r
}

func (s signedDistance) Inside(p r3.Vec) bool {
	return s.SignedDistance(p).Value < 0
}

// extent returns the longest side of the bounding box of vs, at least 1.
func extent(vs []r3.Vec) float64 {
	if len(vs) == 0 {
		return 1
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	d := r3.Sub(hi, lo)
	return math.Max(1, math.Max(d.X, math.Max(d.Y, d.Z)))
}
