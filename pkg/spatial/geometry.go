package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// baryEps widens the barycentric acceptance range so rays through shared
// edges and vertices are never lost to rounding. Such rays may then hit
// both neighbouring triangles at the same distance.
const baryEps = 1e-9

// parallelEps is the relative determinant below which a ray is treated
// as parallel to the triangle plane.
const parallelEps = 1e-14

// IntersectTriangle tests the ray origin + t*dir against triangle abc
// using the Möller–Trumbore algorithm. Both sides of the triangle are
// hit. Only intersections with t >= 0 are reported.
func IntersectTriangle(origin, dir, a, b, c r3.Vec) (t float64, ok bool) {
	edge1 := r3.Sub(b, a)
	edge2 := r3.Sub(c, a)
	h := r3.Cross(dir, edge2)
	det := r3.Dot(edge1, h)
	scale := r3.Norm(edge1) * r3.Norm(edge2) * r3.Norm(dir)
	if math.Abs(det) <= parallelEps*scale || det != det {
		return 0, false
	}
	invDet := 1 / det
	s := r3.Sub(origin, a)
	u := invDet * r3.Dot(s, h)
	if u < -baryEps || u > 1+baryEps {
		return 0, false
	}
	q := r3.Cross(s, edge1)
	v := invDet * r3.Dot(dir, q)
	if v < -baryEps || u+v > 1+baryEps {
		return 0, false
	}
	t = invDet * r3.Dot(edge2, q)
	if t < 0 {
		return 0, false
	}
	return t, true
}

// intersectBox clips the ray against an axis-aligned box and returns the
// parametric entry and exit distances, restricted to t >= 0.
func intersectBox(origin, invDir r3.Vec, min, max r3.Vec) (tmin, tmax float64, ok bool) {
	tmin, tmax = 0, math.Inf(1)

	// X slab
	t1 := (min.X - origin.X) * invDir.X
	t2 := (max.X - origin.X) * invDir.X
	tmin, tmax = narrow(tmin, tmax, t1, t2)
	// Y slab
	t1 = (min.Y - origin.Y) * invDir.Y
	t2 = (max.Y - origin.Y) * invDir.Y
	tmin, tmax = narrow(tmin, tmax, t1, t2)
	// Z slab
	t1 = (min.Z - origin.Z) * invDir.Z
	t2 = (max.Z - origin.Z) * invDir.Z
	tmin, tmax = narrow(tmin, tmax, t1, t2)

	return tmin, tmax, tmin <= tmax
}

// narrow intersects [tmin, tmax] with the slab interval [t1, t2]. A zero
// direction component yields infinities of equal sign when the origin is
// outside the slab (empty interval) and opposite signs when inside. A
// NaN (origin exactly on the slab plane) leaves the interval unchanged.
func narrow(tmin, tmax, t1, t2 float64) (float64, float64) {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > tmin {
		tmin = t1
	}
	if t2 < tmax {
		tmax = t2
	}
	return tmin, tmax
}

// inverse returns the component-wise reciprocal of dir.
func inverse(dir r3.Vec) r3.Vec {
	return r3.Vec{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}
}

// boxDist2 returns the squared distance from p to the box, zero inside.
func boxDist2(p, min, max r3.Vec) float64 {
	dx := math.Max(math.Max(min.X-p.X, 0), p.X-max.X)
	dy := math.Max(math.Max(min.Y-p.Y, 0), p.Y-max.Y)
	dz := math.Max(math.Max(min.Z-p.Z, 0), p.Z-max.Z)
	return dx*dx + dy*dy + dz*dz
}

// ClosestPointOnTriangle returns the point of triangle abc closest to p,
// following Ericson, Real-Time Collision Detection §5.1.5. Zero-area
// triangles fall back to the closest point on their edges.
func ClosestPointOnTriangle(p, a, b, c r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	if r3.Norm2(r3.Cross(ab, ac)) == 0 {
		return closestOnEdges(p, a, b, c)
	}

	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab))
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// ClosestPointOnSegment returns the point of segment ab closest to p.
func ClosestPointOnSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r3.Add(a, r3.Scale(t, ab))
}

func closestOnEdges(p, a, b, c r3.Vec) r3.Vec {
	best := ClosestPointOnSegment(p, a, b)
	bestD := r3.Norm2(r3.Sub(p, best))
	for _, e := range [2][2]r3.Vec{{b, c}, {c, a}} {
		q := ClosestPointOnSegment(p, e[0], e[1])
		if d := r3.Norm2(r3.Sub(p, q)); d < bestD {
			best, bestD = q, d
		}
	}
	return best
}

// nearestOnFace evaluates the closest-point query for one triangle.
func nearestOnFace(p r3.Vec, vertices []r3.Vec, faces [][3]int, face int) Nearest {
	f := faces[face]
	q := ClosestPointOnTriangle(p, vertices[f[0]], vertices[f[1]], vertices[f[2]])
	return Nearest{Dist2: r3.Norm2(r3.Sub(p, q)), Face: face, Point: q}
}

// rayFace evaluates the ray query for one triangle.
func rayFace(origin, dir r3.Vec, vertices []r3.Vec, faces [][3]int, face int) (Hit, bool) {
	f := faces[face]
	t, ok := IntersectTriangle(origin, dir, vertices[f[0]], vertices[f[1]], vertices[f[2]])
	return Hit{T: t, Face: face}, ok
}
