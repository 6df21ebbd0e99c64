package delaunay_test

import (
	"errors"
	"testing"

	"github.com/chazu/cdt3d/internal/delaunay"
	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

func addVertices(mesh *tetmesh.Mesh, coords [][3]float64) []tetmesh.VertexHandle {
	handles := make([]tetmesh.VertexHandle, len(coords))
	for i, c := range coords {
		handles[i] = mesh.AddVertex(numerics.NewInputVertex(c[0], c[1], c[2]))
	}
	return handles
}

func TestBuildSeedTetrahedron(t *testing.T) {
	mesh := tetmesh.NewMesh()
	handles := addVertices(mesh, [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	})

	builder, err := delaunay.Build(mesh, handles)
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}
	if builder.Mesh != mesh {
		t.Error("Builder.Mesh should be the same mesh passed to Build")
	}

	// A single tetrahedron has one real tet plus four ghosts closing the
	// hull, one per face.
	real, ghosts := 0, 0
	mesh.Tets(func(tet tetmesh.TetHandle) bool {
		if mesh.IsGhost(tet) {
			ghosts++
		} else {
			real++
		}
		return true
	})
	if real != 1 {
		t.Errorf("real tet count = %d, want 1", real)
	}
	if ghosts != 4 {
		t.Errorf("ghost tet count = %d, want 4", ghosts)
	}
}

func TestBuildDegenerateSeedReturnsError(t *testing.T) {
	mesh := tetmesh.NewMesh()
	// All four points coplanar in z=0.
	handles := addVertices(mesh, [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	})
	_, err := delaunay.Build(mesh, handles)
	if !errors.Is(err, delaunay.ErrDegenerateSeed) {
		t.Errorf("Build() error = %v, want ErrDegenerateSeed", err)
	}
}

func TestBuildTooFewPointsReturnsError(t *testing.T) {
	mesh := tetmesh.NewMesh()
	handles := addVertices(mesh, [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	_, err := delaunay.Build(mesh, handles)
	if !errors.Is(err, delaunay.ErrDegenerateSeed) {
		t.Errorf("Build() error = %v, want ErrDegenerateSeed", err)
	}
}

func TestInsertVertexPreservesNeighborSymmetry(t *testing.T) {
	mesh := tetmesh.NewMesh()
	handles := addVertices(mesh, [][3]float64{
		{0, 0, 0}, {4, 0, 0}, {0, 4, 0}, {0, 0, 4}, {1, 1, 1},
	})
	if _, err := delaunay.Build(mesh, handles); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	mesh.Tets(func(tet tetmesh.TetHandle) bool {
		for face := 0; face < 4; face++ {
			n := mesh.Neighbor(tet, face)
			if n == tetmesh.NullTet {
				t.Errorf("tet %d face %d has no neighbor (hull not closed by ghosts)", tet, face)
				continue
			}
			sawBack := false
			for back := 0; back < 4; back++ {
				if mesh.Neighbor(n, back) == tet {
					sawBack = true
					break
				}
			}
			if !sawBack {
				t.Errorf("neighbor relation not symmetric: tet %d -> %d but not back", tet, n)
			}
		}
		return true
	})
}

func TestBuildCubeEightVertices(t *testing.T) {
	mesh := tetmesh.NewMesh()
	handles := addVertices(mesh, [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	})
	if _, err := delaunay.Build(mesh, handles); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if mesh.NumVertices() != 8 {
		t.Fatalf("NumVertices() = %d, want 8", mesh.NumVertices())
	}

	real := 0
	mesh.Tets(func(tet tetmesh.TetHandle) bool {
		if !mesh.IsGhost(tet) {
			real++
		}
		return true
	})
	if real == 0 {
		t.Error("expected at least one real tet tiling the cube")
	}
}
