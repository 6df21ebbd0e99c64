package splc_test

import (
	"testing"

	"github.com/chazu/cdt3d/internal/plc"
	"github.com/chazu/cdt3d/internal/splc"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

func newTwoTriangleOverlay(t *testing.T) (*splc.Overlay, *plc.PLC) {
	vertices := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		1, 1, 0,
	}
	// Two triangles sharing edge (1,2).
	triangles := []uint32{
		0, 1, 2,
		1, 3, 2,
	}
	p, err := plc.New(vertices, triangles)
	if err != nil {
		t.Fatal(err)
	}
	mesh := tetmesh.NewMesh()
	return splc.NewOverlay(mesh, p), p
}

func TestCanonEdge(t *testing.T) {
	a, b := tetmesh.VertexHandle(1), tetmesh.VertexHandle(3)
	if got := splc.CanonEdge(a, b); got != (splc.EdgeKey{Lo: 1, Hi: 3}) {
		t.Errorf("CanonEdge(1,3) = %v, want {1,3}", got)
	}
	if got := splc.CanonEdge(b, a); got != (splc.EdgeKey{Lo: 1, Hi: 3}) {
		t.Errorf("CanonEdge(3,1) = %v, want {1,3}", got)
	}
}

func TestEdgesDedupesSharedEdge(t *testing.T) {
	overlay, _ := newTwoTriangleOverlay(t)
	edges := overlay.Edges()
	// Two triangles sharing one edge contribute 3+3-1 = 5 distinct edges.
	if len(edges) != 5 {
		t.Fatalf("Edges() returned %d edges, want 5: %v", len(edges), edges)
	}
	seen := map[splc.EdgeKey]bool{}
	for _, e := range edges {
		if seen[e] {
			t.Errorf("Edges() returned duplicate %v", e)
		}
		seen[e] = true
	}
}

func TestRecordEdgeChainAndChildEdges(t *testing.T) {
	overlay, _ := newTwoTriangleOverlay(t)
	e := splc.CanonEdge(0, 1)
	if overlay.EdgeResolved(e) {
		t.Fatal("edge resolved before RecordEdgeChain")
	}

	chain := []tetmesh.VertexHandle{0, 5, 1}
	overlay.RecordEdgeChain(e, chain)
	if !overlay.EdgeResolved(e) {
		t.Fatal("edge not resolved after RecordEdgeChain")
	}

	got := overlay.ChildEdges(e)
	want := [][2]tetmesh.VertexHandle{{0, 5}, {5, 1}}
	if len(got) != len(want) {
		t.Fatalf("ChildEdges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ChildEdges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTriangleFacesUnresolvedByDefault(t *testing.T) {
	overlay, p := newTwoTriangleOverlay(t)
	for i := 0; i < p.NumTriangles(); i++ {
		if overlay.TriangleResolved(i) {
			t.Errorf("triangle %d resolved before any RecordTriangleFaces call", i)
		}
		if overlay.TriangleFaces(i) != nil {
			t.Errorf("triangle %d has non-nil faces before recovery", i)
		}
	}
}

func TestRecordTriangleFacesAndConstraintFaceSet(t *testing.T) {
	overlay, p := newTwoTriangleOverlay(t)

	// ConstraintFaceSet looks up neighbors for every recorded face, so the
	// overlay's mesh needs at least one real tet behind the handle it
	// records against.
	a, b, c := overlay.TriangleVertices(0)
	tet := overlay.Mesh.AllocTet(a, b, c, 3, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)

	faces := []splc.ChildFace{{Tet: tet, LocalFace: 3}}
	overlay.RecordTriangleFaces(0, faces)
	if !overlay.TriangleResolved(0) {
		t.Fatal("triangle 0 should be resolved after RecordTriangleFaces")
	}
	if overlay.TriangleResolved(1) {
		t.Fatal("triangle 1 should remain unresolved")
	}

	cut := overlay.ConstraintFaceSet()
	if !cut[tet][3] {
		t.Errorf("ConstraintFaceSet() missing recorded face (tet %d, local face 3)", tet)
	}
	_ = p
}

func TestTriangleVertices(t *testing.T) {
	overlay, _ := newTwoTriangleOverlay(t)
	a, b, c := overlay.TriangleVertices(1)
	if a != 1 || b != 3 || c != 2 {
		t.Errorf("TriangleVertices(1) = (%d,%d,%d), want (1,3,2)", a, b, c)
	}
}
