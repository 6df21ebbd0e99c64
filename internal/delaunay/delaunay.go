// Package delaunay builds and incrementally maintains a Delaunay
// tetrahedralization of a point set via Bowyer-Watson insertion, per
// spec.md §4.D. Grounded on the incremental-insertion structure of
// _examples/other_examples/viamrobotics-rdk__triangulator.go (a 2D
// Delaunay triangulator: seed selection, then one point at a time,
// walking to the containing triangle and retriangulating the cavity),
// generalized here to three dimensions with the convex hull represented
// by ghost tetrahedra rather than a special-cased boundary list.
package delaunay

import (
	"errors"
	"sort"

	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

// ErrDegenerateSeed is returned when no four of the candidate vertices
// are affinely independent (every quadruple is coplanar), so no seed
// tetrahedron can be formed. Per spec.md §7 category 1.
var ErrDegenerateSeed = errors.New("delaunay: no four points are affinely independent")

// Builder incrementally constructs a Delaunay tetrahedralization over a
// tetmesh.Mesh, maintaining the convex hull as a ring of ghost
// tetrahedra anchored at tetmesh.Infinite.
type Builder struct {
	Mesh *tetmesh.Mesh

	seed *seedIndex

	// interiorWitness is a fixed point known to remain strictly inside
	// the hull for the builder's whole lifetime (the centroid of the seed
	// tet; the hull only grows). New ghost tets use it to fix their
	// orientation the same way buildSeedTet fixes the first four.
	interiorWitness *numerics.Vertex
}

// NewBuilder returns a Builder over mesh, which must already contain its
// vertices (via Mesh.AddVertex) but no tets.
func NewBuilder(mesh *tetmesh.Mesh) *Builder {
	return &Builder{Mesh: mesh, seed: newSeedIndex(mesh)}
}

// Build constructs the Delaunay tetrahedralization of every vertex in
// handles, in the given order, per spec.md §5's determinism requirement
// (insertion order is part of the input, not an implementation detail).
func Build(mesh *tetmesh.Mesh, handles []tetmesh.VertexHandle) (*Builder, error) {
	b := NewBuilder(mesh)
	quad, rest, err := b.pickSeed(handles)
	if err != nil {
		return nil, err
	}
	b.buildSeedTet(quad)
	for _, v := range rest {
		b.InsertVertex(v)
	}
	return b, nil
}

// --- Seed selection.

func (b *Builder) vtx(h tetmesh.VertexHandle) *numerics.Vertex { return b.Mesh.Vertex(h) }

// pickSeed finds the first quadruple (in candidate order) that is not
// coplanar, returning it positively oriented along with every other
// candidate. The four nested loops are O(n^4) in the worst case but exit
// on the first non-coplanar quadruple.
func (b *Builder) pickSeed(cands []tetmesh.VertexHandle) (quad [4]tetmesh.VertexHandle, rest []tetmesh.VertexHandle, err error) {
	n := len(cands)
	if n < 4 {
		return quad, nil, ErrDegenerateSeed
	}
	for i0 := 0; i0 < n; i0++ {
		for i1 := i0 + 1; i1 < n; i1++ {
			for i2 := i1 + 1; i2 < n; i2++ {
				for i3 := i2 + 1; i3 < n; i3++ {
					a, bb, c, d := cands[i0], cands[i1], cands[i2], cands[i3]
					if numerics.Orient3D(b.vtx(a), b.vtx(bb), b.vtx(c), b.vtx(d)) == numerics.Zero {
						continue
					}
					quad = b.orientedQuad(a, bb, c, d)
					rest = make([]tetmesh.VertexHandle, 0, n-4)
					skip := map[int]bool{i0: true, i1: true, i2: true, i3: true}
					for i, h := range cands {
						if !skip[i] {
							rest = append(rest, h)
						}
					}
					return quad, rest, nil
				}
			}
		}
	}
	return quad, nil, ErrDegenerateSeed
}

// orientedQuad returns (a,b,c,d) if Orient3D(a,b,c,d) is already
// Positive, or (a,b,d,c) otherwise — a single fixed swap always suffices
// because swapping any two of the four arguments negates the
// determinant's sign exactly once.
func (b *Builder) orientedQuad(a, bb, c, d tetmesh.VertexHandle) [4]tetmesh.VertexHandle {
	if numerics.Orient3D(b.vtx(a), b.vtx(bb), b.vtx(c), b.vtx(d)) == numerics.Positive {
		return [4]tetmesh.VertexHandle{a, bb, c, d}
	}
	return [4]tetmesh.VertexHandle{a, bb, d, c}
}

// ghostOrder returns (x,y,z) ordered so that Orient3D(x,y,z,witness) is
// Negative, the invariant every ghost tet's real face maintains: a point
// sees a hull face "from outside" exactly when it disagrees with that
// sign (see inCavity).
func (b *Builder) ghostOrder(x, y, z tetmesh.VertexHandle) (tetmesh.VertexHandle, tetmesh.VertexHandle, tetmesh.VertexHandle) {
	if numerics.Orient3D(b.vtx(x), b.vtx(y), b.vtx(z), b.interiorWitness) == numerics.Negative {
		return x, y, z
	}
	return x, z, y
}

// --- Seed tetrahedron + its enclosing ghost ring.

func (b *Builder) buildSeedTet(quad [4]tetmesh.VertexHandle) {
	a, bb, c, d := quad[0], quad[1], quad[2], quad[3]
	var cen [3]float64
	for _, h := range quad {
		p := b.vtx(h).Approx
		for k := 0; k < 3; k++ {
			cen[k] += p[k] / 4
		}
	}
	b.interiorWitness = numerics.NewInputVertex(cen[0], cen[1], cen[2])

	t := b.Mesh.AllocTet(a, bb, c, d, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	b.seed.Insert(t)

	pending := make(map[faceKey3]pendingFace)
	for i := 0; i < 4; i++ {
		x, y, z := b.Mesh.FaceVertices(t, i)
		gx, gy, gz := b.ghostOrder(x, y, z)
		g := b.Mesh.AllocTet(gx, gy, gz, tetmesh.Infinite, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
		b.Mesh.LinkNeighbors(t, i, g, 3)
		b.wireRing(g, pending)
	}
}

// --- Insertion.

// InsertVertex adds v to the triangulation via Bowyer-Watson cavity
// retetrahedrization.
func (b *Builder) InsertVertex(v tetmesh.VertexHandle) {
	p := b.vtx(v).Approx
	start := b.seed.Seed(p)
	found := b.locate(start, v)
	members := b.growCavity(found, v)
	b.retetrahedrize(members, v)
}

// locate walks from start toward v, crossing whichever face v is on the
// outside of, until it reaches a tet (real or ghost) that contains v —
// equivalently, the first tet for which v fails to be strictly outside
// every face. Terminates because each step strictly decreases distance
// to v along a path through tets whose union is the (connected, convex)
// whole space including the ghost ring.
func (b *Builder) locate(start tetmesh.TetHandle, v tetmesh.VertexHandle) tetmesh.TetHandle {
	cur := start
	p := b.vtx(v)
	const maxSteps = 1 << 20
	for step := 0; step < maxSteps; step++ {
		if b.Mesh.IsGhost(cur) {
			if b.inCavity(cur, v) {
				return cur
			}
			// v is inside the existing hull after all; retreat across
			// the ghost's real face to keep walking.
			cur = b.Mesh.Neighbor(cur, 3)
			continue
		}
		moved := false
		for i := 0; i < 4; i++ {
			a, bb, c := b.Mesh.FaceVertices(cur, i)
			if numerics.Orient3D(b.vtx(a), b.vtx(bb), b.vtx(c), p) != numerics.Negative {
				cur = b.Mesh.Neighbor(cur, i)
				moved = true
				break
			}
		}
		if !moved {
			return cur
		}
	}
	panic(&numerics.Inconsistent{Op: "delaunay.locate", Previous: numerics.Zero, Current: numerics.Zero})
}

// inCavity reports whether t must be removed from the triangulation to
// insert v: for a real tet, v lies strictly inside its circumsphere; for
// a ghost, v lies on or outside its real face (the hull must extend).
func (b *Builder) inCavity(t tetmesh.TetHandle, v tetmesh.VertexHandle) bool {
	if b.Mesh.IsGhost(t) {
		a, bb, c := b.Mesh.VertexAt(t, 0), b.Mesh.VertexAt(t, 1), b.Mesh.VertexAt(t, 2)
		return numerics.Orient3D(b.vtx(a), b.vtx(bb), b.vtx(c), b.vtx(v)) != numerics.Negative
	}
	v0, v1, v2, v3 := b.Mesh.Vertices4(t)
	return numerics.InSphere(b.vtx(v0), b.vtx(v1), b.vtx(v2), b.vtx(v3), b.vtx(v)) == numerics.Positive
}

// growCavity breadth-first expands from a known member tet, testing each
// unvisited neighbor for cavity membership and only continuing the
// search through tets that pass. The result is exactly the Bowyer-Watson
// cavity: every tet whose circumsphere (or, for a ghost, hull face)
// v violates.
func (b *Builder) growCavity(start tetmesh.TetHandle, v tetmesh.VertexHandle) map[tetmesh.TetHandle]bool {
	member := make(map[tetmesh.TetHandle]bool)
	visited := map[tetmesh.TetHandle]bool{start: true}
	queue := []tetmesh.TetHandle{start}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if !b.inCavity(t, v) {
			continue
		}
		member[t] = true
		for i := 0; i < 4; i++ {
			n := b.Mesh.Neighbor(t, i)
			if n == tetmesh.NullTet || visited[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return member
}

// retetrahedrize replaces every member tet with a fan of new tets from
// v to the cavity's boundary, wiring each new tet's outward-facing slot
// to the cavity's existing exterior neighbor and its remaining slots to
// its siblings in the new fan, via wireRing's shared face-key bookkeeping.
func (b *Builder) retetrahedrize(member map[tetmesh.TetHandle]bool, v tetmesh.VertexHandle) {
	type boundary struct {
		faceVerts      [3]tetmesh.VertexHandle
		outside        tetmesh.TetHandle
		outsideSlot    int
	}
	var boundaries []boundary
	for t := range member {
		for i := 0; i < 4; i++ {
			n := b.Mesh.Neighbor(t, i)
			if n != tetmesh.NullTet && member[n] {
				continue
			}
			a, bb, c := b.Mesh.FaceVertices(t, i)
			slot := -1
			for j := 0; j < 4; j++ {
				if b.Mesh.Neighbor(n, j) == t {
					slot = j
					break
				}
			}
			boundaries = append(boundaries, boundary{[3]tetmesh.VertexHandle{a, bb, c}, n, slot})
		}
	}

	for t := range member {
		b.seed.Remove(t)
		b.Mesh.FreeTet(t)
	}

	pending := make(map[faceKey3]pendingFace)
	for _, bd := range boundaries {
		x, y, z := bd.faceVerts[0], bd.faceVerts[1], bd.faceVerts[2]
		hasInfinite := x == tetmesh.Infinite || y == tetmesh.Infinite || z == tetmesh.Infinite

		var newTet tetmesh.TetHandle
		var vIndex int
		if hasInfinite {
			var p, q tetmesh.VertexHandle
			switch {
			case x == tetmesh.Infinite:
				p, q = y, z
			case y == tetmesh.Infinite:
				p, q = x, z
			default:
				p, q = x, y
			}
			a, bb, c := b.ghostOrder(p, q, v)
			newTet = b.Mesh.AllocTet(a, bb, c, tetmesh.Infinite, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
			verts := [4]tetmesh.VertexHandle{a, bb, c, tetmesh.Infinite}
			for i, h := range verts {
				if h == v {
					vIndex = i
				}
			}
		} else {
			quad := b.orientedQuad(x, y, z, v)
			newTet = b.Mesh.AllocTet(quad[0], quad[1], quad[2], quad[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
			for i, h := range quad {
				if h == v {
					vIndex = i
				}
			}
			b.seed.Insert(newTet)
		}

		b.Mesh.LinkNeighbors(newTet, vIndex, bd.outside, bd.outsideSlot)
		b.wireRing(newTet, pending)
	}
}

// faceKey3 is a face identity independent of vertex order, used to pair
// up the two newly created tets that share an internal face during
// retetrahedrization or initial ghost-ring construction.
type faceKey3 [3]tetmesh.VertexHandle

type pendingFace struct {
	tet  tetmesh.TetHandle
	slot int
}

func key3(a, b, c tetmesh.VertexHandle) faceKey3 {
	s := []tetmesh.VertexHandle{a, b, c}
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return faceKey3{s[0], s[1], s[2]}
}

// wireRing links every local face of t other than the one already set by
// its caller (detected as the only slot still NullTet) against pending,
// the running table of not-yet-matched internal faces for the current
// construction pass. Used identically for the seed tet's initial ghost
// ring and for every insertion's cavity retetrahedrization.
func (b *Builder) wireRing(t tetmesh.TetHandle, pending map[faceKey3]pendingFace) {
	for i := 0; i < 4; i++ {
		if b.Mesh.Neighbor(t, i) != tetmesh.NullTet {
			continue
		}
		a, bb, c := b.Mesh.FaceVertices(t, i)
		key := key3(a, bb, c)
		if other, ok := pending[key]; ok {
			b.Mesh.LinkNeighbors(t, i, other.tet, other.slot)
			delete(pending, key)
		} else {
			pending[key] = pendingFace{t, i}
		}
	}
}
