package sla

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the tolerance for comparing radii and heights of support
// points and drain holes.
const Epsilon float32 = 1e-4

// Vec3f is a single precision position or direction as stored in
// project files.
type Vec3f struct {
	X, Y, Z float32
}

// Vec returns v in double precision.
func (v Vec3f) Vec() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Vec3fFrom narrows a double precision vector.
func Vec3fFrom(v r3.Vec) Vec3f {
	return Vec3f{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// SupportPoint is an anchor where a support touches the model.
type SupportPoint struct {
	Pos             Vec3f
	HeadFrontRadius float32
	// IsNewIsland marks the first point of an island that appears in a
	// layer without support from below.
	IsNewIsland bool
}

// NewSupportPointFromData builds a point from x, y, z, radius and an
// island flag (non-zero is true).
func NewSupportPointFromData(data [5]float32) SupportPoint {
	return SupportPoint{
		Pos:             Vec3f{X: data[0], Y: data[1], Z: data[2]},
		HeadFrontRadius: data[3],
		IsNewIsland:     data[4] != 0,
	}
}

// Equal compares position and flag exactly and the radius within
// Epsilon.
func (p SupportPoint) Equal(o SupportPoint) bool {
	return p.Pos == o.Pos &&
		p.IsNewIsland == o.IsNewIsland &&
		abs32(p.HeadFrontRadius-o.HeadFrontRadius) < Epsilon
}

// SupportPoints is a list of anchors.
type SupportPoints []SupportPoint

// PointFunc maps an index into the list to its position, for clustering.
func (ps SupportPoints) PointFunc() func(int) r3.Vec {
	return func(i int) r3.Vec { return ps[i].Pos.Vec() }
}

// DrainHole is a hole drilled into a hollowed model to let resin out.
type DrainHole struct {
	Pos    Vec3f
	Normal Vec3f
	Radius float32
	Height float32
}

// DefaultDrainHole returns a hole at the origin pointing up with radius 5
// and height 10.
func DefaultDrainHole() DrainHole {
	return DrainHole{Normal: Vec3f{Z: 1}, Radius: 5, Height: 10}
}

// Equal compares position and normal exactly, radius and height within
// Epsilon.
func (h DrainHole) Equal(o DrainHole) bool {
	return h.Pos == o.Pos &&
		h.Normal == o.Normal &&
		abs32(h.Radius-o.Radius) < Epsilon &&
		abs32(h.Height-o.Height) < Epsilon
}

// DrainHoles is a list of drain holes.
type DrainHoles []DrainHole

// PointsStatus tracks where the support points of an object came from.
type PointsStatus int

const (
	NoPoints      PointsStatus = iota // no points were generated so far
	Generating                        // the autogeneration is in progress
	AutoGenerated                     // points were autogenerated
	UserModified                      // the user has modified the points
)

func (s PointsStatus) String() string {
	switch s {
	case NoPoints:
		return "no-points"
	case Generating:
		return "generating"
	case AutoGenerated:
		return "auto-generated"
	case UserModified:
		return "user-modified"
	default:
		return fmt.Sprintf("PointsStatus(%d)", int(s))
	}
}
