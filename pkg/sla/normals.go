package sla

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/internal/logger"
	"github.com/chazu/sla/pkg/spatial"
)

// ErrSelection is returned when a selected point index is out of range.
var ErrSelection = errors.New("selected point out of range")

// DefaultEdgeEpsilon is the distance within which a projected point is
// considered to lie on a triangle edge or vertex.
const DefaultEdgeEpsilon = 0.05

// normalTol is the component tolerance under which two face normals are
// treated as the same direction.
const normalTol = 1e-6

// EdgeProximity classifies where a point projects onto its nearest face.
type EdgeProximity int

const (
	// Interior means the projection is clear of every edge.
	Interior EdgeProximity = iota
	// NearEdge means the projection is within epsilon of an edge.
	NearEdge
	// NearVertex means the projection is within epsilon of a vertex.
	NearVertex
)

func (p EdgeProximity) String() string {
	switch p {
	case Interior:
		return "interior"
	case NearEdge:
		return "edge"
	case NearVertex:
		return "vertex"
	default:
		return fmt.Sprintf("EdgeProximity(%d)", int(p))
	}
}

// NormalsConfig controls Normals.
type NormalsConfig struct {
	// EdgeEpsilon is the edge and vertex snapping distance.
	EdgeEpsilon float64
	// Selected restricts estimation to these rows of the point set. All
	// rows are used when empty.
	Selected []int
	// Workers is the number of goroutines sharing the work.
	Workers int
	// CheckEvery is how many points a worker handles between
	// cancellation checks.
	CheckEvery int
}

// DefaultNormalsConfig returns the standard configuration.
func DefaultNormalsConfig() NormalsConfig {
	return NormalsConfig{
		EdgeEpsilon: DefaultEdgeEpsilon,
		Workers:     runtime.GOMAXPROCS(0),
		CheckEvery:  64,
	}
}

// NormalsResult holds one row per selected point, in selection order.
type NormalsResult struct {
	Normals   *mat.Dense
	Proximity []EdgeProximity
}

// Normals estimates a unit surface normal for each selected point of the
// N×3 point set. Each point is projected onto its nearest face. When the
// projection lands within EdgeEpsilon of a vertex or an edge the normal
// is the normalised sum of the distinct normals of every face sharing
// it; otherwise it is the face normal.
//
// If ctx is cancelled the zero result and ctx.Err() are returned.
func Normals(ctx context.Context, points mat.Matrix, mesh *SpatialMesh, cfg NormalsConfig) (NormalsResult, error) {
	rows, cols := points.Dims()
	if rows > 0 && cols != 3 {
		return NormalsResult{}, fmt.Errorf("normals: point set has %d columns, want 3", cols)
	}

	sel := cfg.Selected
	if len(sel) == 0 {
		sel = make([]int, rows)
		for i := range sel {
			sel[i] = i
		}
	}
	for _, idx := range sel {
		if idx < 0 || idx >= rows {
			return NormalsResult{}, fmt.Errorf("normals: index %d of %d points: %w", idx, rows, ErrSelection)
		}
	}
	if len(sel) == 0 {
		return NormalsResult{Normals: &mat.Dense{}}, nil
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, len(sel))
	checkEvery := cfg.CheckEvery
	if checkEvery < 1 {
		checkEvery = 1
	}

	out := mat.NewDense(len(sel), 3, nil)
	prox := make([]EdgeProximity, len(sel))

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(sel) + workers - 1) / workers
	for start := 0; start < len(sel); start += chunk {
		end := min(start+chunk, len(sel))
		g.Go(func() error {
			for k := start; k < end; k++ {
				if (k-start)%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				p := r3.Vec{X: points.At(sel[k], 0), Y: points.At(sel[k], 1), Z: points.At(sel[k], 2)}
				_, face, closest := mesh.SquaredDistance(p)
				n, pr := mesh.surfaceNormal(face, closest, cfg.EdgeEpsilon)
				out.SetRow(k, []float64{n.X, n.Y, n.Z})
				prox[k] = pr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("normal estimation cancelled", zap.Error(err))
		return NormalsResult{}, err
	}

	var edges, vertices int
	for _, p := range prox {
		switch p {
		case NearEdge:
			edges++
		case NearVertex:
			vertices++
		}
	}
	logger.Debug("normals estimated",
		zap.Int("points", len(sel)),
		zap.Int("workers", workers),
		zap.Int("near_edge", edges),
		zap.Int("near_vertex", vertices),
	)
	return NormalsResult{Normals: out, Proximity: prox}, nil
}

// surfaceNormal returns the normal at point p lying on face, averaging
// over the faces around a vertex or edge within eps of p.
func (sm *SpatialMesh) surfaceNormal(face int, p r3.Vec, eps float64) (r3.Vec, EdgeProximity) {
	f := sm.faces[face]
	var neigh []int
	prox := Interior

	for _, v := range f {
		if r3.Norm(r3.Sub(p, sm.vertices[v])) < eps {
			neigh, prox = sm.vertexFaces[v], NearVertex
			break
		}
	}
	if prox == Interior {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			q := spatial.ClosestPointOnSegment(p, sm.vertices[a], sm.vertices[b])
			if r3.Norm(r3.Sub(p, q)) < eps {
				neigh, prox = sharedFaces(sm.vertexFaces[a], sm.vertexFaces[b]), NearEdge
				break
			}
		}
	}

	own, _ := sm.faceNormal(face)
	if prox == Interior {
		return own, Interior
	}

	var distinct []r3.Vec
	for _, nf := range neigh {
		n, ok := sm.faceNormal(nf)
		if !ok {
			continue
		}
		dup := false
		for _, d := range distinct {
			if sameDirection(n, d) {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, n)
		}
	}
	var sum r3.Vec
	for _, n := range distinct {
		sum = r3.Add(sum, n)
	}
	if l := r3.Norm(sum); l > 0 {
		return r3.Scale(1/l, sum), prox
	}
	// Opposing faces cancel out.
	return own, prox
}

func sameDirection(a, b r3.Vec) bool {
	d := r3.Sub(a, b)
	return math.Abs(d.X) < normalTol && math.Abs(d.Y) < normalTol && math.Abs(d.Z) < normalTol
}

// sharedFaces intersects two ascending face lists.
func sharedFaces(a, b []int) []int {
	var out []int
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
