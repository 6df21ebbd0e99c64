package region_test

import (
	"testing"

	"github.com/chazu/cdt3d/internal/delaunay"
	"github.com/chazu/cdt3d/internal/facerecover"
	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/plc"
	"github.com/chazu/cdt3d/internal/region"
	"github.com/chazu/cdt3d/internal/segrecover"
	"github.com/chazu/cdt3d/internal/splc"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

func buildClosedTetrahedron(t *testing.T) (*tetmesh.Mesh, *splc.Overlay) {
	vertices := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	triangles := []uint32{
		0, 2, 1,
		0, 1, 3,
		0, 3, 2,
		1, 2, 3,
	}
	p, err := plc.New(vertices, triangles)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsClosedManifold() {
		t.Fatal("setup: expected the tetrahedron's own faces to be a closed manifold")
	}

	mesh := tetmesh.NewMesh()
	handles := make([]tetmesh.VertexHandle, p.NumVertices())
	for i := 0; i < p.NumVertices(); i++ {
		x, y, z := p.Vertex(i)
		handles[i] = mesh.AddVertex(numerics.NewInputVertex(x, y, z))
	}
	builder, err := delaunay.Build(mesh, handles)
	if err != nil {
		t.Fatal(err)
	}
	overlay := splc.NewOverlay(mesh, p)
	segrecover.Recover(builder, overlay)
	if !facerecover.Recover(builder, overlay) {
		t.Fatal("setup: face recovery failed")
	}
	return mesh, overlay
}

func TestMarkSeparatesInsideFromGhosts(t *testing.T) {
	mesh, overlay := buildClosedTetrahedron(t)
	numIn := region.Mark(mesh, overlay, true)
	if numIn != 1 {
		t.Fatalf("Mark() numIn = %d, want 1 (the single enclosed tet)", numIn)
	}

	mesh.Tets(func(tet tetmesh.TetHandle) bool {
		if mesh.IsGhost(tet) {
			if mesh.Mark(tet) != tetmesh.Out {
				t.Errorf("ghost tet %d mark = %v, want Out", tet, mesh.Mark(tet))
			}
			return true
		}
		if mesh.Mark(tet) != tetmesh.In {
			t.Errorf("real tet %d mark = %v, want In", tet, mesh.Mark(tet))
		}
		return true
	})
}

func TestMarkSkippedWhenNotPolyhedron(t *testing.T) {
	mesh, overlay := buildClosedTetrahedron(t)
	numIn := region.Mark(mesh, overlay, false)
	if numIn != 0 {
		t.Errorf("Mark() with isPolyhedron=false numIn = %d, want 0", numIn)
	}
	mesh.Tets(func(tet tetmesh.TetHandle) bool {
		if mesh.IsGhost(tet) {
			return true
		}
		if mesh.Mark(tet) != tetmesh.Unset {
			t.Errorf("tet %d mark = %v, want Unset when marking is skipped", tet, mesh.Mark(tet))
		}
		return true
	})
}
