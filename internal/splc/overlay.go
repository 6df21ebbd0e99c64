// Package splc overlays the input constraints (triangles and their
// bounding edges) onto the tet mesh, tracking which mesh faces and edges
// currently realize each one, per spec.md §4.E.
package splc

import (
	"github.com/chazu/cdt3d/internal/plc"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

// ChildFace names one mesh face realizing part of a constraint triangle.
type ChildFace struct {
	Tet       tetmesh.TetHandle
	LocalFace int
}

// EdgeKey canonicalizes an unordered pair of vertex handles, per spec.md
// §3's "Face / Edge... canonicalized by sorting vertex handles when used
// as a key."
type EdgeKey struct{ Lo, Hi tetmesh.VertexHandle }

func CanonEdge(a, b tetmesh.VertexHandle) EdgeKey {
	if a < b {
		return EdgeKey{a, b}
	}
	return EdgeKey{b, a}
}

// Overlay is the structured PLC: for each input triangle, its ordered
// child-face list; for each input edge, its ordered child-edge chain.
// Both start empty immediately after Delaunay construction (every
// constraint "unresolved") and are filled in by segment and face
// recovery.
type Overlay struct {
	PLC  *plc.PLC
	Mesh *tetmesh.Mesh

	triangleFaces []([]ChildFace)
	edgeChain     map[EdgeKey][]tetmesh.VertexHandle
}

// NewOverlay builds an unresolved overlay over p's triangles.
func NewOverlay(mesh *tetmesh.Mesh, p *plc.PLC) *Overlay {
	return &Overlay{
		PLC:           p,
		Mesh:          mesh,
		triangleFaces: make([]([]ChildFace), p.NumTriangles()),
		edgeChain:     make(map[EdgeKey][]tetmesh.VertexHandle),
	}
}

// TriangleVertices returns the three input vertex handles of triangle i.
func (o *Overlay) TriangleVertices(i int) (a, b, c tetmesh.VertexHandle) {
	base := 3 * i
	return tetmesh.VertexHandle(o.PLC.Triangles[base]),
		tetmesh.VertexHandle(o.PLC.Triangles[base+1]),
		tetmesh.VertexHandle(o.PLC.Triangles[base+2])
}

// Edges returns every distinct edge across all input triangles, each
// exactly once, in first-seen order (triangle 0's edges, then whatever
// triangle 1 adds, and so on) — the traversal order segment recovery
// uses, which is why it is a deterministic slice rather than a map
// iteration.
func (o *Overlay) Edges() []EdgeKey {
	seen := make(map[EdgeKey]bool)
	var out []EdgeKey
	for i := 0; i < o.PLC.NumTriangles(); i++ {
		a, b, c := o.TriangleVertices(i)
		for _, e := range [3]EdgeKey{CanonEdge(a, b), CanonEdge(b, c), CanonEdge(c, a)} {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// RecordEdgeChain sets the recovered chain of mesh vertices for edge e,
// running endpoint to endpoint (chain[0] == e.Lo, chain[len-1] == e.Hi
// in whichever order the caller walked; Overlay normalizes neither,
// since ChildEdges only cares about consecutive pairs).
func (o *Overlay) RecordEdgeChain(e EdgeKey, chain []tetmesh.VertexHandle) {
	o.edgeChain[e] = chain
}

// ChildEdges returns the consecutive vertex-handle pairs making up e's
// recovered chain, or nil if e is not yet resolved.
func (o *Overlay) ChildEdges(e EdgeKey) [][2]tetmesh.VertexHandle {
	chain := o.edgeChain[e]
	if chain == nil {
		return nil
	}
	out := make([][2]tetmesh.VertexHandle, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		out = append(out, [2]tetmesh.VertexHandle{chain[i], chain[i+1]})
	}
	return out
}

// EdgeResolved reports whether e has a recorded chain.
func (o *Overlay) EdgeResolved(e EdgeKey) bool {
	return o.edgeChain[e] != nil
}

// Chain returns e's raw recovered vertex chain, running e.Lo to e.Hi, or
// nil if unresolved.
func (o *Overlay) Chain(e EdgeKey) []tetmesh.VertexHandle {
	return o.edgeChain[e]
}

// RecordTriangleFaces sets triangle i's recovered child-face list.
func (o *Overlay) RecordTriangleFaces(i int, faces []ChildFace) {
	o.triangleFaces[i] = faces
}

// TriangleFaces returns triangle i's recorded child-face list, or nil if
// unresolved.
func (o *Overlay) TriangleFaces(i int) []ChildFace {
	return o.triangleFaces[i]
}

// TriangleResolved reports whether triangle i has recorded child faces.
func (o *Overlay) TriangleResolved(i int) bool {
	return o.triangleFaces[i] != nil
}

// ConstraintFaceSet returns the set of every (tet, local face) pair that
// realizes some part of some input triangle, canonicalized so a face
// shared by two tets is represented once per side (both sides are
// recorded independently since region marking needs to know, from
// either tet, that crossing this particular face is a constraint
// crossing). Used by internal/region to treat these faces as a cut.
func (o *Overlay) ConstraintFaceSet() map[tetmesh.TetHandle]map[int]bool {
	cut := make(map[tetmesh.TetHandle]map[int]bool)
	mark := func(cf ChildFace) {
		if cut[cf.Tet] == nil {
			cut[cf.Tet] = make(map[int]bool)
		}
		cut[cf.Tet][cf.LocalFace] = true
		n := o.Mesh.Neighbor(cf.Tet, cf.LocalFace)
		if n == tetmesh.NullTet {
			return
		}
		for j := 0; j < 4; j++ {
			if o.Mesh.Neighbor(n, j) == cf.Tet {
				if cut[n] == nil {
					cut[n] = make(map[int]bool)
				}
				cut[n][j] = true
			}
		}
	}
	for _, faces := range o.triangleFaces {
		for _, cf := range faces {
			mark(cf)
		}
	}
	return cut
}
