package sla

import "github.com/chazu/sla/pkg/kernel"

// WindingReport summarises edge usage of a triangle mesh. A closed,
// consistently wound mesh uses every edge exactly twice, once in each
// direction.
type WindingReport struct {
	// BoundaryEdges are used by a single face.
	BoundaryEdges int
	// NonManifoldEdges are used by more than two faces.
	NonManifoldEdges int
	// FlippedEdges are shared by two faces traversing them in the same
	// direction, meaning one of the faces is wound the wrong way.
	FlippedEdges int
}

// Consistent reports whether the mesh is closed, manifold and
// consistently wound.
func (r WindingReport) Consistent() bool {
	return r.BoundaryEdges == 0 && r.NonManifoldEdges == 0 && r.FlippedEdges == 0
}

// CheckWinding counts edges violating consistent winding. The mesh is
// not modified.
func CheckWinding(m *kernel.Mesh) WindingReport {
	type use struct{ forward, backward int }
	edges := make(map[[2]int]use, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if a == b {
				continue
			}
			if a < b {
				u := edges[[2]int{a, b}]
				u.forward++
				edges[[2]int{a, b}] = u
			} else {
				u := edges[[2]int{b, a}]
				u.backward++
				edges[[2]int{b, a}] = u
			}
		}
	}

	var r WindingReport
	for _, u := range edges {
		switch total := u.forward + u.backward; {
		case total == 1:
			r.BoundaryEdges++
		case total > 2:
			r.NonManifoldEdges++
		case u.forward != 1:
			r.FlippedEdges++
		}
	}
	return r
}
