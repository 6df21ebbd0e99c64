package numerics

import (
	"fmt"
	"math"
	"math/big"
)

// Sign is the result of a predicate: -1, 0, or +1, never anything else.
type Sign int

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

func signOf(x float64) Sign {
	switch {
	case x > 0:
		return Positive
	case x < 0:
		return Negative
	default:
		return Zero
	}
}

// dblEpsilon is the unit roundoff for float64 (2^-53), the same constant
// the grounding predicate file (golang.org/x/geo/s2, vendored as
// _examples/other_examples/cockroachdb-cockroach__predicates.go) calls
// dblEpsilon.
const dblEpsilon = 1.1102230246251565e-16

// Orient3D returns the sign of the determinant
//
//	| ax-dx  ay-dy  az-dz |
//	| bx-dx  by-dy  bz-dz |
//	| cx-dx  cy-dy  cz-dz |
//
// which is positive iff d lies below the plane through a,b,c oriented
// counterclockwise when viewed from above (the usual Shewchuk
// convention). Exact and deterministic for all float64 inputs, per
// spec.md §4.A.
func Orient3D(a, b, c, d *Vertex) Sign {
	if a.Kind == KindInput && b.Kind == KindInput && c.Kind == KindInput && d.Kind == KindInput {
		if s, ok := orient3dFast(a.Approx, b.Approx, c.Approx, d.Approx); ok {
			return s
		}
		if s, ok := orient3dStable(a.Approx, b.Approx, c.Approx, d.Approx); ok {
			return s
		}
	}
	return orient3dExact(a, b, c, d)
}

// InSphere returns the sign of the determinant that tests whether e lies
// inside (positive) or outside (negative) the sphere through a,b,c,d,
// assuming a,b,c,d are positively oriented (Orient3D(a,b,c,d) > 0). A
// point exactly on the sphere is reported as Negative (see
// symbolicInSphere), so InSphere never returns Zero. Exact and
// deterministic for all float64 inputs, per spec.md §4.A.
func InSphere(a, b, c, d, e *Vertex) Sign {
	if allInput(a, b, c, d, e) {
		if s, ok := insphereFast(a.Approx, b.Approx, c.Approx, d.Approx, e.Approx); ok {
			return s
		}
	}
	return insphereExact(a, b, c, d, e)
}

func allInput(vs ...*Vertex) bool {
	for _, v := range vs {
		if v.Kind != KindInput {
			return false
		}
	}
	return true
}

// --- Tier 1: double-precision filter with a static a priori error bound.

func det3x3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func sub3(p, q [3]float64) [3]float64 {
	return [3]float64{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

func absMax3(v [3]float64) float64 {
	return math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
}

// orient3dFast evaluates the Orient3D determinant directly in float64 and
// checks the result against a conservative a priori error bound (the
// "filter" tier of spec.md §4.A). ok is false when the magnitude of the
// determinant does not exceed that bound, meaning the sign is uncertain
// and a higher tier must be consulted.
func orient3dFast(a, b, c, d [3]float64) (Sign, bool) {
	m := [3][3]float64{sub3(a, d), sub3(b, d), sub3(c, d)}
	det := det3x3(m)

	// Conservative bound: 7 rounding units times the product of the
	// largest-magnitude entries that could contribute to the determinant,
	// following the structure of Shewchuk's published orient3d bound.
	permanent := absMax3(m[0]) * absMax3(m[1]) * absMax3(m[2]) * 6
	errBound := 7.0 * dblEpsilon * permanent

	if det > errBound || det < -errBound {
		return signOf(det), true
	}
	return Zero, false
}

// orient3dStable recomputes the determinant as the triple product
// ad·(bd×cd) and accepts its sign only when it exceeds an error bound
// scaled by the product of the three edge-vector norms. Still float64;
// ok is false when the sign remains uncertain.
func orient3dStable(a, b, c, d [3]float64) (Sign, bool) {
	ad := sub3(a, d)
	bd := sub3(b, d)
	cd := sub3(c, d)

	bdxcd := cross3(bd, cd)
	det := dot3(ad, bdxcd)

	// Error bound scaled by the norms of the three edge vectors, matching
	// the "detErrorMultiplier" style bound in the grounding file.
	errBound := 4.0 * dblEpsilon * norm3(ad) * norm3(bd) * norm3(cd)
	if det > errBound || det < -errBound {
		return signOf(det), true
	}
	return Zero, false
}

func cross3(u, v [3]float64) [3]float64 {
	return [3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
}

func dot3(u, v [3]float64) float64 {
	return u[0]*v[0] + u[1]*v[1] + u[2]*v[2]
}

func norm3(u [3]float64) float64 {
	return math.Sqrt(dot3(u, u))
}

// orient3dExact evaluates the determinant with exact rational arithmetic;
// a true zero (coplanar or coincident points) is reported as Zero. This is the
// "multi-precision expansion arithmetic" fallback tier of spec.md §4.A;
// big.Rat is exact (not merely high precision) for these inputs since
// every float64 and every segment/triangle intersection coordinate this
// module constructs is itself rational, so there is no precision bound to
// pick — see SPEC_FULL.md §4.A.
func orient3dExact(a, b, c, d *Vertex) Sign {
	A, B, C, D := ratVecOf(a), ratVecOf(b), ratVecOf(c), ratVecOf(d)
	ad := A.sub(D)
	bd := B.sub(D)
	cd := C.sub(D)

	det := ad.dot(bd.cross(cd))
	return Sign(det.Sign())
}

// --- InSphere, mirroring Orient3D's tier structure.

// insphereFast evaluates the 5x5 InSphere determinant (expanded to the
// standard lifted-paraboloid 4x4 form) directly in float64 with an a
// priori error bound.
func insphereFast(a, b, c, d, e [3]float64) (Sign, bool) {
	det, permanent := insphereDetAndMagnitude(a, b, c, d, e)
	errBound := 16.0 * dblEpsilon * permanent
	if det > errBound || det < -errBound {
		return signOf(det), true
	}
	return Zero, false
}

// insphereDetAndMagnitude computes the InSphere determinant via the
// lifted-paraboloid formulation: for each of a,b,c,d,e construct the row
// (x-ex, y-ey, z-ez, (x-ex)^2+(y-ey)^2+(z-ez)^2) relative to e and take the
// 4x4 determinant of the rows for a,b,c,d. This is the standard reduction
// used throughout computational geometry (e.g. Shewchuk's predicates)
// and keeps InSphere expressed as a single determinant, exactly like
// Orient3D, so the same tiering machinery applies to both.
func insphereDetAndMagnitude(a, b, c, d, e [3]float64) (det, magnitude float64) {
	rows := [4][4]float64{}
	pts := [4][3]float64{a, b, c, d}
	var mag float64
	for i, p := range pts {
		dx, dy, dz := p[0]-e[0], p[1]-e[1], p[2]-e[2]
		rows[i] = [4]float64{dx, dy, dz, dx*dx + dy*dy + dz*dz}
		mag = math.Max(mag, math.Max(math.Abs(dx), math.Max(math.Abs(dy), math.Abs(dz))))
	}
	det = det4x4(rows)
	// Each of the 24 terms of the expansion is a product of three
	// coordinate differences (each at most mag) and one squared length
	// (at most 3*mag^2), so it is bounded by 3*mag^5.
	magnitude = mag * mag * mag * mag * mag * 72
	return det, magnitude
}

func det4x4(m [4][4]float64) float64 {
	// Cofactor expansion along the first row.
	minor := func(skipCol int) [3][3]float64 {
		var out [3][3]float64
		for r := 1; r < 4; r++ {
			col := 0
			for c := 0; c < 4; c++ {
				if c == skipCol {
					continue
				}
				out[r-1][col] = m[r][c]
				col++
			}
		}
		return out
	}
	var det float64
	sign := 1.0
	for c := 0; c < 4; c++ {
		det += sign * m[0][c] * det3x3(minor(c))
		sign = -sign
	}
	return det
}

// insphereExact evaluates InSphere with exact rational arithmetic.
func insphereExact(a, b, c, d, e *Vertex) Sign {
	pts := [4]*Vertex{a, b, c, d}
	E := ratVecOf(e)

	var rows [4][4]*big.Rat
	for i, p := range pts {
		P := ratVecOf(p)
		dx := new(big.Rat).Sub(P[0], E[0])
		dy := new(big.Rat).Sub(P[1], E[1])
		dz := new(big.Rat).Sub(P[2], E[2])
		sq := new(big.Rat).Add(new(big.Rat).Mul(dx, dx), new(big.Rat).Mul(dy, dy))
		sq.Add(sq, new(big.Rat).Mul(dz, dz))
		rows[i] = [4]*big.Rat{dx, dy, dz, sq}
	}

	det := ratDet4x4(rows)
	if s := det.Sign(); s != 0 {
		return Sign(s)
	}
	return symbolicInSphere(a, b, c, d, e)
}

func ratDet4x4(m [4][4]*big.Rat) *big.Rat {
	minor := func(skipCol int) [3][3]*big.Rat {
		var out [3][3]*big.Rat
		for r := 1; r < 4; r++ {
			col := 0
			for c := 0; c < 4; c++ {
				if c == skipCol {
					continue
				}
				out[r-1][col] = m[r][c]
				col++
			}
		}
		return out
	}
	det := new(big.Rat)
	sign := int64(1)
	for c := 0; c < 4; c++ {
		term := new(big.Rat).Mul(m[0][c], ratDet3x3(minor(c)))
		if sign < 0 {
			term.Neg(term)
		}
		det.Add(det, term)
		sign = -sign
	}
	return det
}

func ratDet3x3(m [3][3]*big.Rat) *big.Rat {
	t1 := new(big.Rat).Mul(m[0][0], new(big.Rat).Sub(new(big.Rat).Mul(m[1][1], m[2][2]), new(big.Rat).Mul(m[1][2], m[2][1])))
	t2 := new(big.Rat).Mul(m[0][1], new(big.Rat).Sub(new(big.Rat).Mul(m[1][0], m[2][2]), new(big.Rat).Mul(m[1][2], m[2][0])))
	t3 := new(big.Rat).Mul(m[0][2], new(big.Rat).Sub(new(big.Rat).Mul(m[1][0], m[2][1]), new(big.Rat).Mul(m[1][1], m[2][0])))
	out := new(big.Rat).Sub(t1, t2)
	out.Add(out, t3)
	return out
}

// Inconsistent is the category-5 error of spec.md §7: a predicate sign
// contradicted a prior sign for the same inputs. This is a bug, not a
// recoverable condition, so it is raised as a panic carrying a diagnostic
// rather than returned as an error.
type Inconsistent struct {
	Op       string
	Args     [][3]float64
	Previous Sign
	Current  Sign
}

func (e *Inconsistent) Error() string {
	return fmt.Sprintf("numerics: inconsistent %s sign for %v: had %v, now %v", e.Op, e.Args, e.Previous, e.Current)
}

// CheckedOrient3D calls Orient3D and panics with an *Inconsistent if the
// result contradicts want (a sign a caller has already committed to,
// e.g. because it built a tetrahedron assuming positive orientation).
// No pipeline stage calls it; internal/delaunay and internal/segrecover
// raise *Inconsistent directly when a walk exceeds its step limit.
func CheckedOrient3D(a, b, c, d *Vertex, want Sign) Sign {
	got := Orient3D(a, b, c, d)
	if want != Zero && got != Zero && got != want {
		panic(&Inconsistent{
			Op:       "orient3d",
			Args:     [][3]float64{a.Approx, b.Approx, c.Approx, d.Approx},
			Previous: want,
			Current:  got,
		})
	}
	return got
}
