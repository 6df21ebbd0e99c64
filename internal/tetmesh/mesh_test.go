package tetmesh_test

import (
	"testing"

	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

func newFourVertexMesh() (*tetmesh.Mesh, [4]tetmesh.VertexHandle) {
	m := tetmesh.NewMesh()
	var h [4]tetmesh.VertexHandle
	coords := [4][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, c := range coords {
		h[i] = m.AddVertex(numerics.NewInputVertex(c[0], c[1], c[2]))
	}
	return m, h
}

func TestAddVertex(t *testing.T) {
	m, h := newFourVertexMesh()
	if m.NumVertices() != 4 {
		t.Fatalf("NumVertices() = %d, want 4", m.NumVertices())
	}
	for i, handle := range h {
		if int(handle) != i {
			t.Errorf("handle %d = %d, want %d (dense allocation order)", i, handle, i)
		}
	}
}

func TestAllocAndFreeTetReusesSlot(t *testing.T) {
	m, h := newFourVertexMesh()
	t0 := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	if m.NumLiveTets() != 1 {
		t.Fatalf("NumLiveTets() = %d, want 1", m.NumLiveTets())
	}

	m.FreeTet(t0)
	if m.NumLiveTets() != 0 {
		t.Fatalf("NumLiveTets() after free = %d, want 0", m.NumLiveTets())
	}

	t1 := m.AllocTet(h[0], h[1], h[3], h[2], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	if t1 != t0 {
		t.Errorf("AllocTet after free = %d, want reused slot %d", t1, t0)
	}
	if m.NumLiveTets() != 1 {
		t.Errorf("NumLiveTets() = %d, want 1", m.NumLiveTets())
	}
}

func TestVertices4RoundTrip(t *testing.T) {
	m, h := newFourVertexMesh()
	tet := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	v0, v1, v2, v3 := m.Vertices4(tet)
	if v0 != h[0] || v1 != h[1] || v2 != h[2] || v3 != h[3] {
		t.Errorf("Vertices4() = (%d,%d,%d,%d), want (%d,%d,%d,%d)", v0, v1, v2, v3, h[0], h[1], h[2], h[3])
	}
	for i, want := range h {
		if got := m.VertexAt(tet, i); got != want {
			t.Errorf("VertexAt(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestLinkNeighborsSymmetric(t *testing.T) {
	m, h := newFourVertexMesh()
	a := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	b := m.AllocTet(h[0], h[1], h[3], h[2], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)

	m.LinkNeighbors(a, 1, b, 2)
	if m.Neighbor(a, 1) != b {
		t.Errorf("Neighbor(a, 1) = %d, want %d", m.Neighbor(a, 1), b)
	}
	if m.Neighbor(b, 2) != a {
		t.Errorf("Neighbor(b, 2) = %d, want %d", m.Neighbor(b, 2), a)
	}
}

func TestIsGhost(t *testing.T) {
	m, h := newFourVertexMesh()
	real := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	ghost := m.AllocTet(h[0], h[1], h[2], tetmesh.Infinite, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	if m.IsGhost(real) {
		t.Error("IsGhost(real) = true, want false")
	}
	if !m.IsGhost(ghost) {
		t.Error("IsGhost(ghost) = false, want true")
	}
}

func TestMarkDefaultsUnset(t *testing.T) {
	m, h := newFourVertexMesh()
	tet := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	if m.Mark(tet) != tetmesh.Unset {
		t.Errorf("Mark() = %v, want Unset", m.Mark(tet))
	}
	m.SetMark(tet, tetmesh.In)
	if m.Mark(tet) != tetmesh.In {
		t.Errorf("Mark() after SetMark = %v, want In", m.Mark(tet))
	}
}

func TestTetsIterationOrderAndSkipsFreed(t *testing.T) {
	m, h := newFourVertexMesh()
	var tets []tetmesh.TetHandle
	for i := 0; i < 3; i++ {
		tets = append(tets, m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet))
	}
	m.FreeTet(tets[1])

	var seen []tetmesh.TetHandle
	m.Tets(func(t tetmesh.TetHandle) bool {
		seen = append(seen, t)
		return true
	})
	want := []tetmesh.TetHandle{tets[0], tets[2]}
	if len(seen) != len(want) {
		t.Fatalf("Tets() visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Tets()[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestTetsEarlyStop(t *testing.T) {
	m, h := newFourVertexMesh()
	for i := 0; i < 5; i++ {
		m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	}
	count := 0
	m.Tets(func(t tetmesh.TetHandle) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Tets() visited %d before stopping, want 2", count)
	}
}

func TestFaceVerticesOppositeOrdering(t *testing.T) {
	m, h := newFourVertexMesh()
	tet := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	// Face 0 is opposite local vertex 0, so it must be exactly {h[1],h[2],h[3]}.
	a, b, c := m.FaceVertices(tet, 0)
	got := map[tetmesh.VertexHandle]bool{a: true, b: true, c: true}
	for _, want := range []tetmesh.VertexHandle{h[1], h[2], h[3]} {
		if !got[want] {
			t.Errorf("FaceVertices(tet, 0) = %v, missing %d", []tetmesh.VertexHandle{a, b, c}, want)
		}
	}
}

func TestLocalFaceOf(t *testing.T) {
	m, h := newFourVertexMesh()
	tet := m.AllocTet(h[0], h[1], h[2], h[3], tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet, tetmesh.NullTet)
	face := m.LocalFaceOf(tet, h[1], h[2], h[3])
	if face != 0 {
		t.Errorf("LocalFaceOf(h1,h2,h3) = %d, want 0", face)
	}
	if got := m.LocalFaceOf(tet, h[0], h[1], h[2]); got != 3 {
		t.Errorf("LocalFaceOf(h0,h1,h2) = %d, want 3", got)
	}
}
