package facerecover_test

import (
	"testing"

	"github.com/chazu/cdt3d/internal/delaunay"
	"github.com/chazu/cdt3d/internal/facerecover"
	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/plc"
	"github.com/chazu/cdt3d/internal/segrecover"
	"github.com/chazu/cdt3d/internal/splc"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

func buildTetrahedron(t *testing.T) (*delaunay.Builder, *splc.Overlay) {
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
	return builder, splc.NewOverlay(mesh, p)
}

func TestRecoverAlreadyTiledTetrahedronFaces(t *testing.T) {
	builder, overlay := buildTetrahedron(t)
	segrecover.Recover(builder, overlay)

	before := builder.Mesh.NumVertices()
	ok := facerecover.Recover(builder, overlay)
	if !ok {
		t.Fatal("Recover() = false, want true for a single tet whose faces are exactly the input triangles")
	}
	after := builder.Mesh.NumVertices()
	if after != before {
		t.Errorf("NumVertices() changed from %d to %d; a single tet's own faces need no Steiner points", before, after)
	}

	for i := 0; i < overlay.PLC.NumTriangles(); i++ {
		if !overlay.TriangleResolved(i) {
			t.Errorf("triangle %d not resolved after Recover", i)
		}
		faces := overlay.TriangleFaces(i)
		if len(faces) != 1 {
			t.Errorf("triangle %d resolved to %d faces, want 1", i, len(faces))
		}
	}
}
