// Package tetmesh provides the combinatorial tetrahedron store: a flat
// vertex-handle arena and a flat neighbor arena with ghost-tet handling,
// per spec.md §4.C and §9 ("Cyclic neighbor graph").
package tetmesh

import "github.com/chazu/cdt3d/internal/numerics"

// VertexHandle identifies a vertex by a dense non-negative integer, per
// spec.md §3. Handles 0..N-1 are input vertices; handles >= N are
// Steiner. The sentinel Infinite represents the point at infinity.
type VertexHandle int32

// Infinite is the distinguished vertex handle that closes the convex
// hull via ghost tetrahedra, per spec.md §3.
const Infinite VertexHandle = -1

// NullVertex marks the absence of a vertex handle, e.g. "no existing
// vertex coincides with this intersection point." Distinct from
// Infinite, which is a real (if point-at-infinity) vertex participating
// in ghost tets.
const NullVertex VertexHandle = -2

// TetHandle identifies a tetrahedron slot in the arena. NullTet marks the
// absence of a tet (e.g. a neighbor pointer across the outside of the
// convex hull, which should never occur once ghosts are wired, or the
// end of the free-list chain).
type TetHandle int32

// NullTet is the sentinel TetHandle.
const NullTet TetHandle = -1

// Mark classifies a tetrahedron as interior or exterior to the
// recovered polyhedron, per spec.md §3.
type Mark byte

const (
	Unset Mark = iota
	In
	Out
)

// localFace lists, for each local vertex index 0..3, the three other
// local indices in the order that gives the opposite face an
// outward-pointing orientation when the tet itself is positively
// oriented (Orient3D(v0,v1,v2,v3) > 0). Face i is opposite vertex i.
// This is the same opposite-face numbering used throughout tetrahedral
// mesh codes (e.g. TetGen); grounded here on the PluckerTetra face
// table in _examples/other_examples/phil-mansfield-gotetra__primitives.go,
// which documents the analogous "face opposite vertex, fixed winding"
// convention for tetrahedron edges.
var localFace = [4][3]int{
	{1, 2, 3},
	{0, 3, 2},
	{0, 1, 3},
	{0, 2, 1},
}

// Mesh is the flat tetrahedron arena of spec.md §4.C: a vertex-handle
// array of length 4*cap and a parallel neighbor array of length 4*cap,
// amortized-doubling growth, tombstoned deletion via a free-list threaded
// through the neighbor array's first slot. No per-tet heap allocation:
// every live tet is addressed by a TetHandle index into these arrays.
type Mesh struct {
	// Vertices holds every vertex (input and Steiner) this computation
	// owns, indexed by VertexHandle. The Infinite sentinel is never
	// stored here; it is handled specially wherever a VertexHandle is
	// consulted.
	Vertices []*numerics.Vertex

	vertexOf   []VertexHandle
	neighborOf []TetHandle
	marks      []Mark

	freeHead  TetHandle
	liveTets  int
	cap       int
	nextFresh int
}

// NewMesh returns an empty arena.
func NewMesh() *Mesh {
	return &Mesh{freeHead: NullTet}
}

// AddVertex appends v and returns its new handle.
func (m *Mesh) AddVertex(v *numerics.Vertex) VertexHandle {
	m.Vertices = append(m.Vertices, v)
	return VertexHandle(len(m.Vertices) - 1)
}

// NumVertices returns the count of owned vertices (input + Steiner),
// never counting the Infinite sentinel.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// Vertex returns the Vertex for handle h. Calling with h == Infinite is a
// programming error; callers must special-case ghosts before dereferencing.
func (m *Mesh) Vertex(h VertexHandle) *numerics.Vertex {
	return m.Vertices[h]
}

// growTo ensures the arena has room for at least n tets, doubling
// capacity (spec.md §4.C: "Growth is amortized doubling").
func (m *Mesh) growTo(n int) {
	if n <= m.cap {
		return
	}
	newCap := m.cap
	if newCap == 0 {
		newCap = 16
	}
	for newCap < n {
		newCap *= 2
	}
	vertexOf := make([]VertexHandle, 4*newCap)
	neighborOf := make([]TetHandle, 4*newCap)
	marks := make([]Mark, newCap)
	copy(vertexOf, m.vertexOf)
	copy(neighborOf, m.neighborOf)
	copy(marks, m.marks)
	m.vertexOf = vertexOf
	m.neighborOf = neighborOf
	m.marks = marks
	m.cap = newCap
}

// AllocTet allocates a tetrahedron slot, reusing a tombstoned one from
// the free-list when available, and returns its handle with vertices and
// neighbors set as given. Neighbors not yet known should be passed as
// NullTet and wired in later with SetNeighbor.
func (m *Mesh) AllocTet(v0, v1, v2, v3 VertexHandle, n0, n1, n2, n3 TetHandle) TetHandle {
	var t TetHandle
	if m.freeHead != NullTet {
		t = m.freeHead
		m.freeHead = m.neighborOf[4*int(t)]
	} else {
		idx := m.cap
		// cap is growTo's power-of-two capacity, not the number of slots
		// handed out, and liveTets counts only live slots; the next
		// never-used slot index is the dedicated counter nextFresh.
		idx = m.nextFresh
		m.growTo(idx + 1)
		m.nextFresh++
		t = TetHandle(idx)
	}
	m.setVerts(t, v0, v1, v2, v3)
	m.setNeighbors(t, n0, n1, n2, n3)
	m.marks[t] = Unset
	m.liveTets++
	return t
}

func (m *Mesh) setVerts(t TetHandle, v0, v1, v2, v3 VertexHandle) {
	base := 4 * int(t)
	m.vertexOf[base] = v0
	m.vertexOf[base+1] = v1
	m.vertexOf[base+2] = v2
	m.vertexOf[base+3] = v3
}

func (m *Mesh) setNeighbors(t TetHandle, n0, n1, n2, n3 TetHandle) {
	base := 4 * int(t)
	m.neighborOf[base] = n0
	m.neighborOf[base+1] = n1
	m.neighborOf[base+2] = n2
	m.neighborOf[base+3] = n3
}

// FreeTet tombstones t, threading it onto the free-list through the first
// slot of its neighbor row, per spec.md §4.C/§9.
func (m *Mesh) FreeTet(t TetHandle) {
	m.neighborOf[4*int(t)] = m.freeHead
	m.freeHead = t
	m.liveTets--
}

// Vertices4 returns t's four vertex handles in canonical order.
func (m *Mesh) Vertices4(t TetHandle) (v0, v1, v2, v3 VertexHandle) {
	base := 4 * int(t)
	return m.vertexOf[base], m.vertexOf[base+1], m.vertexOf[base+2], m.vertexOf[base+3]
}

// VertexAt returns the vertex handle at local index i (0..3) of tet t.
func (m *Mesh) VertexAt(t TetHandle, i int) VertexHandle {
	return m.vertexOf[4*int(t)+i]
}

// SetNeighbor sets t's neighbor across local face i to u, per spec.md
// §4.C. Callers are responsible for keeping the relation symmetric; see
// LinkNeighbors.
func (m *Mesh) SetNeighbor(t TetHandle, face int, u TetHandle) {
	m.neighborOf[4*int(t)+face] = u
}

// Neighbor returns t's neighbor across local face i.
func (m *Mesh) Neighbor(t TetHandle, face int) TetHandle {
	return m.neighborOf[4*int(t)+face]
}

// LinkNeighbors makes t and u mutual neighbors across the given local
// faces, maintaining the symmetric/face-consistent invariant of spec.md
// §3 in one call.
func (m *Mesh) LinkNeighbors(t TetHandle, faceInT int, u TetHandle, faceInU int) {
	m.SetNeighbor(t, faceInT, u)
	m.SetNeighbor(u, faceInU, t)
}

// Mark returns t's mark.
func (m *Mesh) Mark(t TetHandle) Mark { return m.marks[t] }

// SetMark sets t's mark.
func (m *Mesh) SetMark(t TetHandle, mk Mark) { m.marks[t] = mk }

// IsGhost reports whether t has the Infinite vertex as one of its four
// vertices, per spec.md §3.
func (m *Mesh) IsGhost(t TetHandle) bool {
	v0, v1, v2, v3 := m.Vertices4(t)
	return v0 == Infinite || v1 == Infinite || v2 == Infinite || v3 == Infinite
}

// FaceVertices returns the three vertex handles making up local face
// (opposite local vertex) i of tet t, in the outward-oriented order
// given by localFace.
func (m *Mesh) FaceVertices(t TetHandle, i int) (a, b, c VertexHandle) {
	base := 4 * int(t)
	lf := localFace[i]
	return m.vertexOf[base+lf[0]], m.vertexOf[base+lf[1]], m.vertexOf[base+lf[2]]
}

// LocalFaceOf returns the local face index of tet t whose three vertices
// are exactly the given (unordered) set, or -1 if none matches.
func (m *Mesh) LocalFaceOf(t TetHandle, a, b, c VertexHandle) int {
	v0, v1, v2, v3 := m.Vertices4(t)
	verts := [4]VertexHandle{v0, v1, v2, v3}
	has := func(x VertexHandle) bool { return x != a && x != b && x != c }
	for i := 0; i < 4; i++ {
		if !has(verts[i]) {
			continue
		}
		// verts[i] is the one vertex NOT in {a,b,c}: that's the local
		// vertex opposite the face we're looking for, provided the
		// other three really are exactly {a,b,c}.
		lf := localFace[i]
		set := map[VertexHandle]bool{verts[lf[0]]: true, verts[lf[1]]: true, verts[lf[2]]: true}
		if set[a] && set[b] && set[c] {
			return i
		}
	}
	return -1
}

// Tets calls yield once per live tet handle, in ascending handle order.
// Iteration order over a flat array is deterministic by construction,
// satisfying spec.md §5's determinism requirement ("no iteration order
// over unordered containers" — this one is ordered).
func (m *Mesh) Tets(yield func(TetHandle) bool) {
	freed := m.freeSet()
	for i := 0; i < m.nextFresh; i++ {
		if freed[TetHandle(i)] {
			continue
		}
		if !yield(TetHandle(i)) {
			return
		}
	}
}

// freeSet materializes the free-list into a lookup set for Tets. The
// free-list itself must stay a list (it is the tombstone storage), but
// iteration wants O(1) membership tests; this trades a scan's worth of
// extra memory for that, proportional to the number of currently-free
// slots.
func (m *Mesh) freeSet() map[TetHandle]bool {
	freed := make(map[TetHandle]bool)
	for f := m.freeHead; f != NullTet; f = m.neighborOf[4*int(f)] {
		freed[f] = true
	}
	return freed
}

// NumLiveTets returns the count of currently-allocated (non-tombstoned)
// tets.
func (m *Mesh) NumLiveTets() int { return m.liveTets }
