// Package facerecover implements face recovery: forcing every input
// triangle to appear as a union of mesh faces, per spec.md §4.G. Grounded
// on the cavity/retetrahedrization machinery of internal/delaunay (face
// recovery is "insertion with a different acceptance test", per
// SPEC_FULL.md §4.G) and, for the edge/edge crossing case, on the same
// exact-intersection construction internal/segrecover uses for
// segment/face crossings.
package facerecover

import (
	"math"

	"github.com/chazu/cdt3d/internal/delaunay"
	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/splc"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

const maxStepsPerTriangle = 1 << 12

// Recover attempts to ensure every input triangle in overlay is present
// as a set of mesh faces whose union equals that triangle, per spec.md
// §4.G. It assumes overlay's edges are already recovered (segrecover has
// run). Returns false if any triangle could not be recovered — a
// non-fatal outcome per spec.md §4.G/§7: the rest of the pipeline still
// runs, the caller just sees success=false.
func Recover(builder *delaunay.Builder, overlay *splc.Overlay) bool {
	r := &recoverer{mesh: builder.Mesh, builder: builder}
	success := true
	for i := 0; i < overlay.PLC.NumTriangles(); i++ {
		if !r.recoverTriangle(overlay, i) {
			success = false
		}
	}
	return success
}

type recoverer struct {
	mesh    *tetmesh.Mesh
	builder *delaunay.Builder
}

func (r *recoverer) vtx(h tetmesh.VertexHandle) *numerics.Vertex { return r.mesh.Vertex(h) }

// recoverTriangle drives triangle i to a tiled state by alternately
// checking coverage and, if incomplete, eliminating one offending
// crossing at a time, per spec.md §4.G's "repeat" loop. Termination
// follows the same argument spec.md gives for segment recovery: each
// inserted Steiner point strictly reduces the (finite) set of remaining
// offending crossings.
func (r *recoverer) recoverTriangle(overlay *splc.Overlay, i int) bool {
	a, b, c := overlay.TriangleVertices(i)
	for step := 0; step < maxStepsPerTriangle; step++ {
		faces := r.tilingFaces(a, b, c)
		if r.coversTriangle(faces, a, b, c) {
			overlay.RecordTriangleFaces(i, faces)
			return true
		}
		if r.eliminateOneCrossing(a, b, c) {
			continue
		}
		return false
	}
	return false
}

// eliminateOneCrossing finds one offending crossing of triangle (a,b,c)
// and resolves it by inserting a Steiner vertex, per spec.md §4.G:
// "where flips do not suffice, insert a Steiner vertex at the
// intersection of T with an offending mesh edge and locally re-Delaunay."
// This implementation always uses Steiner insertion rather than
// attempting face-preserving flips first — insertion alone already
// guarantees termination and recoverability, which is all spec.md
// requires; flips are purely an optimization to reduce Steiner count that
// this module trades away for simplicity (recorded in DESIGN.md).
func (r *recoverer) eliminateOneCrossing(a, b, c tetmesh.VertexHandle) bool {
	if p, q, ok := r.findTransverseEdge(a, b, c); ok {
		return r.insertCrossing(p, q, a, b, c)
	}
	if s0, s1, u0, u1, ok := r.findInPlaneCrossing(a, b, c); ok {
		return r.insertEdgeCross(s0, s1, u0, u1)
	}
	return false
}

// findTransverseEdge scans every live, non-ghost tet's six edges for one
// whose endpoints lie strictly on opposite sides of triangle (a,b,c)'s
// plane and whose plane-crossing point lies inside the closed triangle
// (approxPointInTriangle, with a small tolerance) —
// the "offending mesh edge" of spec.md §4.G.
func (r *recoverer) findTransverseEdge(a, b, c tetmesh.VertexHandle) (p, q tetmesh.VertexHandle, ok bool) {
	var found [2]tetmesh.VertexHandle
	hit := false
	r.mesh.Tets(func(t tetmesh.TetHandle) bool {
		if r.mesh.IsGhost(t) {
			return true
		}
		v0, v1, v2, v3 := r.mesh.Vertices4(t)
		verts := [4]tetmesh.VertexHandle{v0, v1, v2, v3}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				p0, p1 := verts[i], verts[j]
				if r.sameVertexAsAny(p0, a, b, c) || r.sameVertexAsAny(p1, a, b, c) {
					continue
				}
				s0 := numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(p0))
				s1 := numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(p1))
				if s0 == numerics.Zero || s1 == numerics.Zero || s0 == s1 {
					continue
				}
				ip := approxSegTriIntersection(r.mesh, p0, p1, a, b, c)
				if !approxPointInTriangle(ip, r.mesh.Vertex(a).Approx, r.mesh.Vertex(b).Approx, r.mesh.Vertex(c).Approx) {
					continue
				}
				found = [2]tetmesh.VertexHandle{p0, p1}
				hit = true
				return false
			}
		}
		return true
	})
	if !hit {
		return 0, 0, false
	}
	return found[0], found[1], true
}

// findInPlaneCrossing handles the rarer degenerate case where two
// already-coplanar mesh edges (both lying in triangle (a,b,c)'s plane)
// cross each other inside the triangle without either edge having been
// recorded as a boundary or tiling edge yet. Grounded on the same
// "find two middle vertices, interpolate" edge-intersection idiom
// internal/segrecover is grounded on, specialized to two segments
// instead of a segment and a triangle.
func (r *recoverer) findInPlaneCrossing(a, b, c tetmesh.VertexHandle) (s0, s1, u0, u1 tetmesh.VertexHandle, ok bool) {
	type seg struct{ p, q tetmesh.VertexHandle }
	var inPlane []seg
	seen := map[[2]tetmesh.VertexHandle]bool{}
	r.mesh.Tets(func(t tetmesh.TetHandle) bool {
		if r.mesh.IsGhost(t) {
			return true
		}
		v0, v1, v2, v3 := r.mesh.Vertices4(t)
		verts := [4]tetmesh.VertexHandle{v0, v1, v2, v3}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				p, q := verts[i], verts[j]
				if p > q {
					p, q = q, p
				}
				key := [2]tetmesh.VertexHandle{p, q}
				if seen[key] {
					continue
				}
				seen[key] = true
				if numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(p)) != numerics.Zero ||
					numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(q)) != numerics.Zero {
					continue
				}
				inPlane = append(inPlane, seg{p, q})
			}
		}
		return true
	})
	for i := 0; i < len(inPlane); i++ {
		for j := i + 1; j < len(inPlane); j++ {
			si, sj := inPlane[i], inPlane[j]
			if si.p == sj.p || si.p == sj.q || si.q == sj.p || si.q == sj.q {
				continue
			}
			if segmentsCross2DInPlane(r.mesh, a, b, c, si.p, si.q, sj.p, sj.q) {
				return si.p, si.q, sj.p, sj.q, true
			}
		}
	}
	return 0, 0, 0, 0, false
}

func (r *recoverer) sameVertexAsAny(v tetmesh.VertexHandle, cands ...tetmesh.VertexHandle) bool {
	for _, c := range cands {
		if v == c {
			return true
		}
	}
	return false
}

func (r *recoverer) insertCrossing(p, q, a, b, c tetmesh.VertexHandle) bool {
	approx := approxSegTriIntersection(r.mesh, p, q, a, b, c)
	sv := numerics.NewIntersectionVertex(r.vtx(p), r.vtx(q), r.vtx(a), r.vtx(b), r.vtx(c), approx)
	h := r.mesh.AddVertex(sv)
	r.builder.InsertVertex(h)
	return true
}

func (r *recoverer) insertEdgeCross(s0, s1, u0, u1 tetmesh.VertexHandle) bool {
	approx := approxSegSegIntersection(r.mesh, s0, s1, u0, u1)
	sv := numerics.NewEdgeCrossVertex(r.vtx(s0), r.vtx(s1), r.vtx(u0), r.vtx(u1), approx)
	h := r.mesh.AddVertex(sv)
	r.builder.InsertVertex(h)
	return true
}

// tilingFaces collects every live mesh face coplanar with (a,b,c) whose
// centroid lies within the closed triangle, per spec.md §8's
// own acceptance test ("point-in-triangle for the centroid of each
// candidate child face"). Each internal face is visited from both
// incident tets; only the first visit is kept (canonicalized by its
// sorted vertex triple) to avoid double-counting area.
func (r *recoverer) tilingFaces(a, b, c tetmesh.VertexHandle) []splc.ChildFace {
	triA, triB, triC := r.mesh.Vertex(a).Approx, r.mesh.Vertex(b).Approx, r.mesh.Vertex(c).Approx

	seen := map[[3]tetmesh.VertexHandle]bool{}

	var out []splc.ChildFace
	r.mesh.Tets(func(t tetmesh.TetHandle) bool {
		if r.mesh.IsGhost(t) {
			return true
		}
		for f := 0; f < 4; f++ {
			x, y, z := r.mesh.FaceVertices(t, f)
			if numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(x)) != numerics.Zero ||
				numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(y)) != numerics.Zero ||
				numerics.Orient3D(r.vtx(a), r.vtx(b), r.vtx(c), r.vtx(z)) != numerics.Zero {
				continue
			}
			cx := r.mesh.Vertex(x).Approx
			cy := r.mesh.Vertex(y).Approx
			cz := r.mesh.Vertex(z).Approx
			centroid := [3]float64{
				(cx[0] + cy[0] + cz[0]) / 3,
				(cx[1] + cy[1] + cz[1]) / 3,
				(cx[2] + cy[2] + cz[2]) / 3,
			}
			if !approxPointInTriangle(centroid, triA, triB, triC) {
				continue
			}
			sorted := [3]tetmesh.VertexHandle{x, y, z}
			sortTriple(&sorted)
			if seen[sorted] {
				continue
			}
			seen[sorted] = true
			out = append(out, splc.ChildFace{Tet: t, LocalFace: f})
		}
		return true
	})
	return out
}

// coversTriangle reports whether faces' combined area equals (a,b,c)'s
// own area within tolerance, spec.md §8's "equal area sums" test.
// Segment recovery has already made (a,b,c)'s edges mesh edges, which no
// coplanar mesh face crosses, so a face tilingFaces admits by its
// centroid lies wholly inside (a,b,c); an area match then rules out both
// gaps and (impossible, by construction of a simplicial mesh) overlaps.
func (r *recoverer) coversTriangle(faces []splc.ChildFace, a, b, c tetmesh.VertexHandle) bool {
	want := triangleArea(r.mesh.Vertex(a).Approx, r.mesh.Vertex(b).Approx, r.mesh.Vertex(c).Approx)
	var got float64
	for _, f := range faces {
		x, y, z := r.mesh.FaceVertices(f.Tet, f.LocalFace)
		got += triangleArea(r.mesh.Vertex(x).Approx, r.mesh.Vertex(y).Approx, r.mesh.Vertex(z).Approx)
	}
	const relTol = 1e-7
	return math.Abs(got-want) <= relTol*math.Max(want, 1e-12)
}

func sortTriple(s *[3]tetmesh.VertexHandle) {
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
	if s[1] > s[2] {
		s[1], s[2] = s[2], s[1]
	}
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
}

func triangleArea(a, b, c [3]float64) float64 {
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	return 0.5 * math.Sqrt(nx*nx+ny*ny+nz*nz)
}

// approxPointInTriangle reports whether p (assumed coplanar with a,b,c)
// lies within or on the closed triangle, via the standard
// same-sign-of-cross-products barycentric test. Approximate by design —
// see internal/segrecover's snapToVertex for why a float64 containment
// test is the right tradeoff here: callers only use this to pick which
// faces/crossings to act on, not to certify the final recovered result,
// and real inputs are not adversarially built to land a point within
// rounding distance of a boundary on purpose.
func approxPointInTriangle(p, a, b, c [3]float64) bool {
	n := triNormal(a, b, c)
	s0 := sideSign(a, b, p, n)
	s1 := sideSign(b, c, p, n)
	s2 := sideSign(c, a, p, n)
	const eps = -1e-9
	return (s0 >= eps && s1 >= eps && s2 >= eps) || (s0 <= -eps && s1 <= -eps && s2 <= -eps)
}

func triNormal(a, b, c [3]float64) [3]float64 {
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	return [3]float64{uy*vz - uz*vy, uz*vx - ux*vz, ux*vy - uy*vx}
}

// sideSign returns a quantity whose sign indicates which side of line
// (p0,p1), within the plane with normal n, the point q falls on.
func sideSign(p0, p1, q, n [3]float64) float64 {
	ex, ey, ez := p1[0]-p0[0], p1[1]-p0[1], p1[2]-p0[2]
	fx, fy, fz := q[0]-p0[0], q[1]-p0[1], q[2]-p0[2]
	cx, cy, cz := ey*fz-ez*fy, ez*fx-ex*fz, ex*fy-ey*fx
	return cx*n[0] + cy*n[1] + cz*n[2]
}

// segmentsCross2DInPlane reports whether two coplanar segments (known to
// lie in triangle (a,b,c)'s plane) cross transversally, rather than
// merely sharing an endpoint or running parallel.
func segmentsCross2DInPlane(mesh *tetmesh.Mesh, a, b, c, p0, p1, q0, q1 tetmesh.VertexHandle) bool {
	A, B, C := mesh.Vertex(a).Approx, mesh.Vertex(b).Approx, mesh.Vertex(c).Approx
	n := triNormal(A, B, C)
	P0, P1 := mesh.Vertex(p0).Approx, mesh.Vertex(p1).Approx
	Q0, Q1 := mesh.Vertex(q0).Approx, mesh.Vertex(q1).Approx
	s0 := sideSign(P0, P1, Q0, n)
	s1 := sideSign(P0, P1, Q1, n)
	s2 := sideSign(Q0, Q1, P0, n)
	s3 := sideSign(Q0, Q1, P1, n)
	const eps = 1e-12
	return (s0 > eps) != (s1 > eps) && (s2 > eps) != (s3 > eps) &&
		math.Abs(s0) > eps && math.Abs(s1) > eps && math.Abs(s2) > eps && math.Abs(s3) > eps
}

func approxSegTriIntersection(mesh *tetmesh.Mesh, p, q, a, b, c tetmesh.VertexHandle) [3]float64 {
	P := mesh.Vertex(p).Approx
	Q := mesh.Vertex(q).Approx
	A := mesh.Vertex(a).Approx
	B := mesh.Vertex(b).Approx
	C := mesh.Vertex(c).Approx
	n := triNormal(A, B, C)
	dir := [3]float64{Q[0] - P[0], Q[1] - P[1], Q[2] - P[2]}
	denom := n[0]*dir[0] + n[1]*dir[1] + n[2]*dir[2]
	if denom == 0 {
		return [3]float64{(P[0] + Q[0]) / 2, (P[1] + Q[1]) / 2, (P[2] + Q[2]) / 2}
	}
	toA := [3]float64{A[0] - P[0], A[1] - P[1], A[2] - P[2]}
	t := (n[0]*toA[0] + n[1]*toA[1] + n[2]*toA[2]) / denom
	return [3]float64{P[0] + dir[0]*t, P[1] + dir[1]*t, P[2] + dir[2]*t}
}

func approxSegSegIntersection(mesh *tetmesh.Mesh, s0, s1, u0, u1 tetmesh.VertexHandle) [3]float64 {
	S0, S1 := mesh.Vertex(s0).Approx, mesh.Vertex(s1).Approx
	U0, U1 := mesh.Vertex(u0).Approx, mesh.Vertex(u1).Approx
	d1 := [3]float64{S1[0] - S0[0], S1[1] - S0[1], S1[2] - S0[2]}
	d2 := [3]float64{U1[0] - U0[0], U1[1] - U0[1], U1[2] - U0[2]}
	w := [3]float64{U0[0] - S0[0], U0[1] - S0[1], U0[2] - S0[2]}

	type pair struct{ i, j int }
	pairs := [3]pair{{0, 1}, {0, 2}, {1, 2}}
	var bestDet, bestA float64
	haveBest := false
	for _, pr := range pairs {
		det := d1[pr.i]*(-d2[pr.j]) - d1[pr.j]*(-d2[pr.i])
		if det == 0 {
			continue
		}
		numA := w[pr.i]*(-d2[pr.j]) - w[pr.j]*(-d2[pr.i])
		a := numA / det
		if !haveBest || math.Abs(det) > math.Abs(bestDet) {
			bestDet, bestA, haveBest = det, a, true
		}
	}
	if !haveBest {
		return [3]float64{(S0[0] + U0[0]) / 2, (S0[1] + U0[1]) / 2, (S0[2] + U0[2]) / 2}
	}
	return [3]float64{S0[0] + d1[0]*bestA, S0[1] + d1[1]*bestA, S0[2] + d1[2]*bestA}
}
