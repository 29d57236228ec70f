// Package cluster groups candidate support points that lie close to each
// other. Grouping is single-linkage under a closeness rule, with a hard
// cap on cluster size: a merge that would exceed the cap is rejected and
// both groups keep their members.
//
// Results are deterministic. Candidate pairs are considered in input
// order (i < j, j ascending), which fixes which merges win when the cap
// is reached.
package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/internal/logger"
)

// Unbounded disables the cluster size cap.
const Unbounded = 0

// checkEvery is how many candidates are processed between cancellation
// checks.
const checkEvery = 256

// R-tree node fan-out.
const (
	treeMinChildren = 25
	treeMaxChildren = 50
)

// Cluster lists the point indices of one group in input order.
type Cluster []int

// Clusters is a partition of the input indices, ordered by the input
// position of each cluster's first member.
type Clusters []Cluster

// PointFunc maps a point index to its position.
type PointFunc func(i int) r3.Vec

// Candidate couples a point index with its position.
type Candidate struct {
	Pos   r3.Vec
	Index int
}

// Predicate reports whether two candidates belong together.
type Predicate func(a, b Candidate) bool

// ByDistance clusters indices whose positions are closer than dist,
// directly or through a chain of close points. maxPoints caps the size
// of a cluster; Unbounded removes the cap.
func ByDistance(ctx context.Context, indices []int, pointfn PointFunc, dist float64, maxPoints int) (Clusters, error) {
	cands := candidates(indices, pointfn)
	var tree *rtreego.Rtree
	if dist > 0 && len(cands) > 0 {
		items := make([]rtreego.Spatial, len(cands))
		for i, c := range cands {
			items[i] = &item{pos: i, rect: point(c.Pos).ToRect(0)}
		}
		tree = rtreego.NewTree(3, treeMinChildren, treeMaxChildren, items...)
	}

	neighbours := func(i int) []int {
		if tree == nil {
			return nil
		}
		p := cands[i].Pos
		var out []int
		for _, s := range tree.SearchIntersect(point(p).ToRect(dist)) {
			j := s.(*item).pos
			if j > i && r3.Norm(r3.Sub(cands[j].Pos, p)) < dist {
				out = append(out, j)
			}
		}
		sort.Ints(out)
		return out
	}
	return link(ctx, cands, neighbours, maxPoints)
}

// Points clusters every row of an N×3 point set by distance. Cluster
// members are row numbers.
func Points(ctx context.Context, points mat.Matrix, dist float64, maxPoints int) (Clusters, error) {
	rows, cols := points.Dims()
	if rows == 0 {
		return nil, nil
	}
	if cols != 3 {
		return nil, fmt.Errorf("cluster points: point set has %d columns, want 3", cols)
	}
	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	pointfn := func(i int) r3.Vec {
		return r3.Vec{X: points.At(i, 0), Y: points.At(i, 1), Z: points.At(i, 2)}
	}
	return ByDistance(ctx, indices, pointfn, dist, maxPoints)
}

// ByPredicate clusters indices using an arbitrary closeness rule. Every
// pair is tested, so this costs O(n²) predicate calls.
func ByPredicate(ctx context.Context, indices []int, pointfn PointFunc, pred Predicate, maxPoints int) (Clusters, error) {
	cands := candidates(indices, pointfn)
	neighbours := func(i int) []int {
		var out []int
		for j := i + 1; j < len(cands); j++ {
			if pred(cands[i], cands[j]) {
				out = append(out, j)
			}
		}
		return out
	}
	return link(ctx, cands, neighbours, maxPoints)
}

func candidates(indices []int, pointfn PointFunc) []Candidate {
	cands := make([]Candidate, len(indices))
	for i, idx := range indices {
		cands[i] = Candidate{Pos: pointfn(idx), Index: idx}
	}
	return cands
}

// link runs capped single linkage. neighbours(i) must return the
// positions j > i linked to i, ascending.
func link(ctx context.Context, cands []Candidate, neighbours func(i int) []int, maxPoints int) (Clusters, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	uf := newUnionFind(len(cands), maxPoints)
	for i := range cands {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				logger.Warn("clustering cancelled", zap.Int("processed", i), zap.Error(err))
				return nil, err
			}
		}
		for _, j := range neighbours(i) {
			uf.union(i, j)
		}
	}

	var out Clusters
	slot := make(map[int]int)
	for i, c := range cands {
		root := uf.find(i)
		k, ok := slot[root]
		if !ok {
			k = len(out)
			slot[root] = k
			out = append(out, nil)
		}
		out[k] = append(out[k], c.Index)
	}

	logger.Debug("clustered candidates",
		zap.Int("candidates", len(cands)),
		zap.Int("clusters", len(out)),
		zap.Int("rejected_merges", uf.rejected),
	)
	return out, nil
}

// item is an R-tree entry for the candidate at position pos.
type item struct {
	pos  int
	rect rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

func point(v r3.Vec) rtreego.Point { return rtreego.Point{v.X, v.Y, v.Z} }
