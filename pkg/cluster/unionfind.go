package cluster

// unionFind tracks group membership with a size cap on merges.
type unionFind struct {
	parent   []int
	size     []int
	max      int
	rejected int
}

func newUnionFind(n, limit int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n), max: limit}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		uf.parent[i], i = root, uf.parent[i]
	}
	return root
}

// union merges the groups of a and b unless they are already joined or
// the merged group would exceed the cap. The lower root survives.
func (uf *unionFind) union(a, b int) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	if uf.max > 0 && uf.size[ra]+uf.size[rb] > uf.max {
		uf.rejected++
		return false
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return true
}
