// Package sla holds the spatial core used to plan supports for resin
// prints: an accelerated triangle mesh answering ray and nearest-surface
// queries, a raw triangle/quad container for merging and export, per-point
// normal estimation, and the support point and drain hole records the
// planner consumes.
package sla

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/internal/logger"
	"github.com/chazu/sla/pkg/kernel"
	"github.com/chazu/sla/pkg/spatial"
)

// MeshOption configures NewSpatialMesh.
type MeshOption func(*meshOptions)

type meshOptions struct {
	build  spatial.Builder
	signed bool
}

// WithIndex selects the acceleration index implementation. The default
// is an AABB tree with the default leaf size.
func WithIndex(b spatial.Builder) MeshOption {
	return func(o *meshOptions) {
		if b != nil {
			o.build = b
		}
	}
}

// WithSignedDistance enables the inside/outside capability returned by
// SignedDistancer.
func WithSignedDistance() MeshOption {
	return func(o *meshOptions) { o.signed = true }
}

// SpatialMesh is a triangle mesh with an acceleration index built once at
// construction. Queries are safe for concurrent use. The ground level
// offset is the only mutable state and needs external synchronisation if
// it is changed while other goroutines read it.
type SpatialMesh struct {
	vertices []r3.Vec
	faces    [][3]int

	// vertexFaces lists, per vertex, the faces using it in ascending order.
	vertexFaces [][]int

	opts  meshOptions
	index spatial.Index

	groundLevel  float64
	groundOffset float64
	size         float64

	winding WindingReport
}

// NewSpatialMesh copies m and builds the acceleration index over it. An
// empty mesh or a face referencing a missing vertex is an error; such a
// mesh can never back a usable SpatialMesh.
//
// Faces are assumed to be wound counter-clockwise seen from outside.
// Inconsistent winding is logged, never repaired.
func NewSpatialMesh(m *kernel.Mesh, opts ...MeshOption) (*SpatialMesh, error) {
	if m == nil {
		return nil, fmt.Errorf("new spatial mesh: %w", kernel.ErrEmptyMesh)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("new spatial mesh %q: %w", m.Name, err)
	}

	o := meshOptions{build: spatial.TreeBuilder()}
	for _, opt := range opts {
		opt(&o)
	}

	sm := &SpatialMesh{
		vertices: append([]r3.Vec(nil), m.Vertices...),
		faces:    append([][3]int(nil), m.Faces...),
		opts:     o,
	}
	sm.groundLevel = math.Inf(1)
	for _, v := range sm.vertices {
		sm.groundLevel = math.Min(sm.groundLevel, v.Z)
	}

	start := time.Now()
	sm.buildIndex()
	logger.Debug("spatial index built",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(sm.vertices)),
		zap.Int("faces", len(sm.faces)),
		zap.Duration("elapsed", time.Since(start)),
	)

	sm.winding = CheckWinding(m)
	if !sm.winding.Consistent() {
		logger.Warn("mesh winding is inconsistent; inside tests may be wrong",
			zap.String("mesh", m.Name),
			zap.Int("boundary_edges", sm.winding.BoundaryEdges),
			zap.Int("non_manifold_edges", sm.winding.NonManifoldEdges),
			zap.Int("flipped_edges", sm.winding.FlippedEdges),
		)
	}
	return sm, nil
}

// NewSpatialMeshFromIndexed builds a SpatialMesh from a raw container.
// Quads are split into two triangles.
func NewSpatialMeshFromIndexed(im *IndexedMesh, opts ...MeshOption) (*SpatialMesh, error) {
	if im == nil {
		return nil, fmt.Errorf("new spatial mesh: %w", kernel.ErrEmptyMesh)
	}
	return NewSpatialMesh(im.ToTriangleMesh(), opts...)
}

// buildIndex derives the index and adjacency from the stored arrays.
func (sm *SpatialMesh) buildIndex() {
	sm.index = sm.opts.build(sm.vertices, sm.faces)
	sm.size = extent(sm.vertices)
	sm.vertexFaces = make([][]int, len(sm.vertices))
	for fi, f := range sm.faces {
		for k, v := range f {
			// A collapsed face may repeat a vertex.
			if k > 0 && (v == f[0] || (k == 2 && v == f[1])) {
				continue
			}
			sm.vertexFaces[v] = append(sm.vertexFaces[v], fi)
		}
	}
}

// Clone returns an independent copy with its own arrays and a freshly
// built index. The ground level offset is carried over.
func (sm *SpatialMesh) Clone() *SpatialMesh {
	c := &SpatialMesh{
		vertices:     append([]r3.Vec(nil), sm.vertices...),
		faces:        append([][3]int(nil), sm.faces...),
		opts:         sm.opts,
		groundLevel:  sm.groundLevel,
		groundOffset: sm.groundOffset,
		winding:      sm.winding,
	}
	c.buildIndex()
	return c
}

// Vertices returns the vertex positions. The slice must not be modified.
func (sm *SpatialMesh) Vertices() []r3.Vec { return sm.vertices }

// Faces returns the triangles. The slice must not be modified.
func (sm *SpatialMesh) Faces() [][3]int { return sm.faces }

// Winding returns the result of the winding check run at construction.
func (sm *SpatialMesh) Winding() WindingReport { return sm.winding }

// GroundLevel returns the lowest vertex Z plus the current offset.
func (sm *SpatialMesh) GroundLevel() float64 { return sm.groundLevel + sm.groundOffset }

// GroundLevelOffset returns the user adjustable ground offset.
func (sm *SpatialMesh) GroundLevelOffset() float64 { return sm.groundOffset }

// SetGroundLevelOffset sets the ground offset.
func (sm *SpatialMesh) SetGroundLevelOffset(v float64) { sm.groundOffset = v }

// coincident reports whether two hit distances describe the same surface
// crossing, as happens when a ray passes through a shared edge.
func coincident(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*(1+math.Abs(b))
}

// QueryRayHit returns the closest hit along origin + t*dir, t >= 0. On a
// miss the returned result has Face() == -1, an infinite distance, and
// ok is false.
func (sm *SpatialMesh) QueryRayHit(origin, dir r3.Vec) (HitResult, bool) {
	h, ok := sm.index.RayHit(origin, dir)
	if !ok {
		return missHit(origin, dir), false
	}
	return sm.hitResult(origin, dir, h), true
}

// QueryRayHits returns every surface crossing along the ray ordered by
// distance. Hits of neighbouring triangles at the same distance, from a
// ray through their shared edge or vertex, are reported once. The first
// element always equals the QueryRayHit result.
func (sm *SpatialMesh) QueryRayHits(origin, dir r3.Vec) []HitResult {
	hits := sm.index.RayHits(origin, dir)
	if len(hits) == 0 {
		return nil
	}
	out := make([]HitResult, 0, len(hits))
	for _, h := range hits {
		if n := len(out); n > 0 && coincident(h.T, out[n-1].Distance()) {
			continue
		}
		out = append(out, sm.hitResult(origin, dir, h))
	}
	return out
}

func (sm *SpatialMesh) hitResult(origin, dir r3.Vec, h spatial.Hit) HitResult {
	n, ok := sm.faceNormal(h.Face)
	return HitResult{
		distance:  h.T,
		source:    origin,
		direction: dir,
		face:      h.Face,
		normal:    n,
		hasNormal: ok,
	}
}

// faceNormal returns the unit normal (p2-p1)x(p3-p1) of a face. Zero-area
// faces have no normal.
func (sm *SpatialMesh) faceNormal(face int) (r3.Vec, bool) {
	f := sm.faces[face]
	p1, p2, p3 := sm.vertices[f[0]], sm.vertices[f[1]], sm.vertices[f[2]]
	n := r3.Cross(r3.Sub(p2, p1), r3.Sub(p3, p1))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/l, n), true
}
