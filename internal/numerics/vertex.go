// Package numerics implements the robust geometric predicates the rest of
// this module builds on: orient3d and insphere, evaluated with certified
// correctness over arbitrary double-precision input, including the
// symbolic vertices introduced by segment/face recovery.
package numerics

import "math/big"

// VertexKind tags how a Vertex's coordinates are represented.
type VertexKind uint8

const (
	// KindInput marks a vertex copied verbatim from the caller's input
	// array; its coordinates are exact as given.
	KindInput VertexKind = iota
	// KindIntersection marks a Steiner vertex introduced by segment or
	// face recovery: the exact intersection of a segment and a triangle,
	// carried symbolically so predicates involving it stay exact. See
	// spec.md §9.
	KindIntersection
	// KindEdgeCross marks a Steiner vertex introduced when face recovery
	// finds a mesh edge crossing an input triangle's interior along a
	// line rather than through a face: the exact intersection of two
	// coplanar segments.
	KindEdgeCross
)

// Vertex is the symbolic/exact representation predicates operate on.
// Approximate double coordinates (Approx) are always present and are what
// gets serialized into a Result; exact coordinates are computed lazily, on
// first use, for Intersection and EdgeCross vertices.
type Vertex struct {
	Kind   VertexKind
	Approx [3]float64

	// Defining geometry for KindIntersection vertices: the segment
	// (Seg0,Seg1) and the triangle (Tri0,Tri1,Tri2) whose exact
	// intersection this vertex is. Coordinates of the defining points
	// are themselves Vertex values, so intersections can (in principle)
	// be defined in terms of other intersections.
	Seg0, Seg1       *Vertex
	Tri0, Tri1, Tri2 *Vertex

	// Defining geometry for KindEdgeCross vertices: two coplanar
	// segments (Seg0,Seg1) and (Cross0,Cross1) whose exact intersection
	// this vertex is.
	Cross0, Cross1 *Vertex

	exact    [3]*big.Rat // lazily computed exact rational coordinates
	hasExact bool
}

// NewInputVertex wraps a plain coordinate triple as an input vertex.
func NewInputVertex(x, y, z float64) *Vertex {
	return &Vertex{Kind: KindInput, Approx: [3]float64{x, y, z}}
}

// NewIntersectionVertex creates a Steiner vertex defined as the exact
// intersection of segment (s0,s1) and triangle (t0,t1,t2). approx is the
// double-precision approximation of that intersection point, used for
// fast-tier predicates and for serialization; it is not itself the source
// of truth once exact arithmetic is required.
func NewIntersectionVertex(s0, s1, t0, t1, t2 *Vertex, approx [3]float64) *Vertex {
	return &Vertex{
		Kind:   KindIntersection,
		Approx: approx,
		Seg0:   s0, Seg1: s1,
		Tri0: t0, Tri1: t1, Tri2: t2,
	}
}

// NewEdgeCrossVertex creates a Steiner vertex defined as the exact
// intersection of two coplanar segments (s0,s1) and (c0,c1). approx is
// the double-precision approximation, used the same way as in
// NewIntersectionVertex.
func NewEdgeCrossVertex(s0, s1, c0, c1 *Vertex, approx [3]float64) *Vertex {
	return &Vertex{
		Kind:   KindEdgeCross,
		Approx: approx,
		Seg0:   s0, Seg1: s1,
		Cross0: c0, Cross1: c1,
	}
}

// IsExact reports whether v's coordinates are already known to be exact
// (input vertices always are; intersection vertices become exact lazily).
func (v *Vertex) IsExact() bool {
	return v.Kind == KindInput || v.hasExact
}

// Rat returns v's coordinates as exact rationals, computing them on first
// use for KindIntersection and KindEdgeCross vertices.
func (v *Vertex) Rat() [3]*big.Rat {
	if v.Kind == KindInput {
		return [3]*big.Rat{
			ratFromFloat(v.Approx[0]),
			ratFromFloat(v.Approx[1]),
			ratFromFloat(v.Approx[2]),
		}
	}
	if !v.hasExact {
		if v.Kind == KindEdgeCross {
			v.exact = exactSegSegIntersection(v.Seg0, v.Seg1, v.Cross0, v.Cross1)
		} else {
			v.exact = exactSegTriIntersection(v.Seg0, v.Seg1, v.Tri0, v.Tri1, v.Tri2)
		}
		v.hasExact = true
	}
	return v.exact
}

// ratFromFloat converts an IEEE-754 double into the exact rational it
// represents. This is always exact: float64 values are dyadic rationals.
func ratFromFloat(f float64) *big.Rat {
	r := new(big.Rat)
	r.SetFloat64(f)
	return r
}
