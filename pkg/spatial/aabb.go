package spatial

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultLeafSize is the number of triangles stored per tree leaf unless
// overridden with WithLeafSize.
const DefaultLeafSize = 4

// TreeOption configures NewAABBTree.
type TreeOption func(*treeOptions)

type treeOptions struct {
	leafSize int
}

// WithLeafSize sets the maximum triangle count of a leaf. Values below 1
// are ignored.
func WithLeafSize(n int) TreeOption {
	return func(o *treeOptions) {
		if n >= 1 {
			o.leafSize = n
		}
	}
}

// node is one box of the hierarchy. Leaves have left == -1 and own the
// range order[start:end].
type node struct {
	min, max    r3.Vec
	left, right int
	start, end  int
}

func (n *node) leaf() bool { return n.left < 0 }

// AABBTree is a bounding-volume hierarchy of axis-aligned boxes over the
// mesh triangles. Nodes are stored flat; the root is nodes[0].
type AABBTree struct {
	vertices []r3.Vec
	faces    [][3]int
	nodes    []node
	order    []int
	pad      float64
	leafSize int
}

// NewAABBTree builds a tree over the triangles. Each split sorts the
// node's triangles by centroid along the longest axis of their centroid
// bounds and cuts at the median.
func NewAABBTree(vertices []r3.Vec, faces [][3]int, opts ...TreeOption) *AABBTree {
	o := treeOptions{leafSize: DefaultLeafSize}
	for _, opt := range opts {
		opt(&o)
	}
	t := &AABBTree{
		vertices: vertices,
		faces:    faces,
		order:    make([]int, len(faces)),
		leafSize: o.leafSize,
	}
	for i := range t.order {
		t.order[i] = i
	}
	if len(faces) == 0 {
		return t
	}

	centroids := make([]r3.Vec, len(faces))
	lo, hi := t.faceBounds(0)
	for i := range faces {
		a, b := t.faceBounds(i)
		lo, hi = union(lo, hi, a, b)
		f := faces[i]
		centroids[i] = r3.Scale(1.0/3, r3.Add(vertices[f[0]], r3.Add(vertices[f[1]], vertices[f[2]])))
	}
	// Boxes are inflated so that hits accepted by the barycentric
	// tolerance, and rounding in the slab test, never fall outside them.
	extent := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	t.pad = 1e-7 * math.Max(extent, 1)

	t.nodes = make([]node, 0, 2*len(faces)/t.leafSize+1)
	t.build(0, len(faces), centroids)
	return t
}

// TreeBuilder returns a Builder that constructs trees with the given
// options.
func TreeBuilder(opts ...TreeOption) Builder {
	return func(vertices []r3.Vec, faces [][3]int) Index {
		return NewAABBTree(vertices, faces, opts...)
	}
}

// NodeCount returns the number of boxes in the hierarchy.
func (t *AABBTree) NodeCount() int { return len(t.nodes) }

// Depth returns the length of the longest root-to-leaf path.
func (t *AABBTree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	var depth func(i int) int
	depth = func(i int) int {
		n := &t.nodes[i]
		if n.leaf() {
			return 1
		}
		return 1 + max(depth(n.left), depth(n.right))
	}
	return depth(0)
}

func (t *AABBTree) build(start, end int, centroids []r3.Vec) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{left: -1, right: -1, start: start, end: end})

	lo, hi := t.faceBounds(t.order[start])
	clo, chi := centroids[t.order[start]], centroids[t.order[start]]
	for _, f := range t.order[start+1 : end] {
		a, b := t.faceBounds(f)
		lo, hi = union(lo, hi, a, b)
		clo, chi = union(clo, chi, centroids[f], centroids[f])
	}
	pad := r3.Vec{X: t.pad, Y: t.pad, Z: t.pad}
	t.nodes[idx].min = r3.Sub(lo, pad)
	t.nodes[idx].max = r3.Add(hi, pad)

	if end-start <= t.leafSize {
		return idx
	}

	axis := longestAxis(r3.Sub(chi, clo))
	span := t.order[start:end]
	sort.SliceStable(span, func(i, j int) bool {
		ci, cj := component(centroids[span[i]], axis), component(centroids[span[j]], axis)
		if ci != cj {
			return ci < cj
		}
		return span[i] < span[j]
	})
	mid := start + (end-start)/2

	left := t.build(start, mid, centroids)
	right := t.build(mid, end, centroids)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

func (t *AABBTree) faceBounds(face int) (lo, hi r3.Vec) {
	f := t.faces[face]
	lo, hi = t.vertices[f[0]], t.vertices[f[0]]
	for _, v := range f[1:] {
		lo, hi = union(lo, hi, t.vertices[v], t.vertices[v])
	}
	return lo, hi
}

// RayHit implements Index.
func (t *AABBTree) RayHit(origin, dir r3.Vec) (Hit, bool) {
	best := Hit{T: math.Inf(1), Face: -1}
	if len(t.nodes) == 0 {
		return best, false
	}
	inv := inverse(dir)
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[i]
		tmin, _, ok := intersectBox(origin, inv, n.min, n.max)
		// Equal distances must still be visited for the face tie-break.
		if !ok || tmin > best.T {
			continue
		}
		if n.leaf() {
			for _, f := range t.order[n.start:n.end] {
				h, ok := rayFace(origin, dir, t.vertices, t.faces, f)
				if ok && less(h, best) {
					best = h
				}
			}
			continue
		}
		stack = append(stack, n.right, n.left)
	}
	return best, best.Face >= 0
}

// RayHits implements Index.
func (t *AABBTree) RayHits(origin, dir r3.Vec) []Hit {
	if len(t.nodes) == 0 {
		return nil
	}
	var hits []Hit
	inv := inverse(dir)
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[i]
		if _, _, ok := intersectBox(origin, inv, n.min, n.max); !ok {
			continue
		}
		if n.leaf() {
			for _, f := range t.order[n.start:n.end] {
				if h, ok := rayFace(origin, dir, t.vertices, t.faces, f); ok {
					hits = append(hits, h)
				}
			}
			continue
		}
		stack = append(stack, n.right, n.left)
	}
	sort.Slice(hits, func(i, j int) bool { return less(hits[i], hits[j]) })
	return hits
}

// Nearest implements Index. Children are visited nearer box first and
// boxes farther than the current best are pruned.
func (t *AABBTree) Nearest(p r3.Vec) Nearest {
	best := Nearest{Dist2: math.Inf(1), Face: -1}
	if len(t.nodes) == 0 {
		return best
	}
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[i]
		if boxDist2(p, n.min, n.max) > best.Dist2 {
			continue
		}
		if n.leaf() {
			for _, f := range t.order[n.start:n.end] {
				if c := nearestOnFace(p, t.vertices, t.faces, f); better(c, best) {
					best = c
				}
			}
			continue
		}
		l, r := &t.nodes[n.left], &t.nodes[n.right]
		if boxDist2(p, l.min, l.max) <= boxDist2(p, r.min, r.max) {
			stack = append(stack, n.right, n.left)
		} else {
			stack = append(stack, n.left, n.right)
		}
	}
	return best
}

func union(lo, hi, a, b r3.Vec) (r3.Vec, r3.Vec) {
	return r3.Vec{X: math.Min(lo.X, a.X), Y: math.Min(lo.Y, a.Y), Z: math.Min(lo.Z, a.Z)},
		r3.Vec{X: math.Max(hi.X, b.X), Y: math.Max(hi.Y, b.Y), Z: math.Max(hi.Z, b.Z)}
}

func longestAxis(d r3.Vec) int {
	switch {
	case d.X >= d.Y && d.X >= d.Z:
		return 0
	case d.Y >= d.Z:
		return 1
	default:
		return 2
	}
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
