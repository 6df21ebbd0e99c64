package numerics

import "math/big"

// ratVec is a 3-vector of exact rationals.
type ratVec [3]*big.Rat

func ratVecOf(v *Vertex) ratVec {
	r := v.Rat()
	return ratVec{r[0], r[1], r[2]}
}

func (a ratVec) sub(b ratVec) ratVec {
	return ratVec{
		new(big.Rat).Sub(a[0], b[0]),
		new(big.Rat).Sub(a[1], b[1]),
		new(big.Rat).Sub(a[2], b[2]),
	}
}

func (a ratVec) add(b ratVec) ratVec {
	return ratVec{
		new(big.Rat).Add(a[0], b[0]),
		new(big.Rat).Add(a[1], b[1]),
		new(big.Rat).Add(a[2], b[2]),
	}
}

func (a ratVec) scale(s *big.Rat) ratVec {
	return ratVec{
		new(big.Rat).Mul(a[0], s),
		new(big.Rat).Mul(a[1], s),
		new(big.Rat).Mul(a[2], s),
	}
}

func (a ratVec) cross(b ratVec) ratVec {
	return ratVec{
		new(big.Rat).Sub(new(big.Rat).Mul(a[1], b[2]), new(big.Rat).Mul(a[2], b[1])),
		new(big.Rat).Sub(new(big.Rat).Mul(a[2], b[0]), new(big.Rat).Mul(a[0], b[2])),
		new(big.Rat).Sub(new(big.Rat).Mul(a[0], b[1]), new(big.Rat).Mul(a[1], b[0])),
	}
}

func (a ratVec) dot(b ratVec) *big.Rat {
	xy := new(big.Rat).Mul(a[0], b[0])
	xy.Add(xy, new(big.Rat).Mul(a[1], b[1]))
	xy.Add(xy, new(big.Rat).Mul(a[2], b[2]))
	return xy
}

// exactSegTriIntersection computes the exact intersection of segment
// (s0,s1) with the plane of triangle (t0,t1,t2), as rational coordinates.
// Callers (segment/face recovery) only ever construct an Intersection
// vertex once they have already established, via orient3d, that the
// segment transversely crosses the triangle's plane, so the denominator
// computed here is guaranteed nonzero.
func exactSegTriIntersection(s0, s1, t0, t1, t2 *Vertex) [3]*big.Rat {
	S0, S1 := ratVecOf(s0), ratVecOf(s1)
	T0, T1, T2 := ratVecOf(t0), ratVecOf(t1), ratVecOf(t2)

	n := T1.sub(T0).cross(T2.sub(T0))
	dir := S1.sub(S0)

	denom := n.dot(dir)
	if denom.Sign() == 0 {
		// Segment lies in (or parallel to) the triangle's plane. The
		// caller mis-detected a transverse crossing; fall back to the
		// segment's own midpoint rather than dividing by zero.
		mid := S0.add(S1).scale(big.NewRat(1, 2))
		return [3]*big.Rat{mid[0], mid[1], mid[2]}
	}

	numer := n.dot(T0.sub(S0))
	u := new(big.Rat).Quo(numer, denom)

	p := S0.add(dir.scale(u))
	return [3]*big.Rat{p[0], p[1], p[2]}
}

// exactSegSegIntersection computes the exact intersection of two
// coplanar, transversely-crossing segments (s0,s1) and (u0,u1). Used for
// KindEdgeCross vertices, which face recovery creates where a mesh edge
// crosses an input triangle's edge in the triangle's plane. Solves s0 + a*(s1-s0) == u0 + b*(u1-u0) in the plane
// spanned by the two segments using Cramer's rule on the 2x2 system
// obtained by projecting out the shared cross-product normal.
func exactSegSegIntersection(s0, s1, u0, u1 *Vertex) [3]*big.Rat {
	S0, S1 := ratVecOf(s0), ratVecOf(s1)
	U0, U1 := ratVecOf(u0), ratVecOf(u1)

	d1 := S1.sub(S0)
	d2 := U1.sub(U0)
	w := U0.sub(S0)

	// Pick the coordinate pair with the largest-magnitude 2x2 determinant
	// among the three axis-pair projections, to avoid dividing by a
	// (numerically, though here exactly) tiny denominator.
	type pair struct{ i, j int }
	pairs := [3]pair{{0, 1}, {0, 2}, {1, 2}}

	var bestDet *big.Rat
	var bestA *big.Rat
	for _, pr := range pairs {
		det := new(big.Rat).Sub(
			new(big.Rat).Mul(d1[pr.i], new(big.Rat).Neg(d2[pr.j])),
			new(big.Rat).Mul(d1[pr.j], new(big.Rat).Neg(d2[pr.i])),
		)
		if det.Sign() == 0 {
			continue
		}
		// Solve [d1 -d2][a;b] = w for this axis pair.
		numA := new(big.Rat).Sub(
			new(big.Rat).Mul(w[pr.i], new(big.Rat).Neg(d2[pr.j])),
			new(big.Rat).Mul(w[pr.j], new(big.Rat).Neg(d2[pr.i])),
		)
		a := new(big.Rat).Quo(numA, det)
		if bestDet == nil || absRat(det).Cmp(absRat(bestDet)) > 0 {
			bestDet, bestA = det, a
		}
	}
	if bestDet == nil {
		mid := S0.add(U0).scale(big.NewRat(1, 2))
		return [3]*big.Rat{mid[0], mid[1], mid[2]}
	}

	p := S0.add(d1.scale(bestA))
	return [3]*big.Rat{p[0], p[1], p[2]}
}

func absRat(r *big.Rat) *big.Rat {
	if r.Sign() < 0 {
		return new(big.Rat).Neg(r)
	}
	return r
}
