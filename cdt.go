// Package cdt is the public façade of this module: it assembles
// internal/plc, internal/tetmesh, internal/delaunay, internal/splc,
// internal/segrecover, internal/facerecover, and internal/region into
// the single synchronous pipeline spec.md §2 describes, and exposes it
// as the two operations spec.md §6 names: ComputeCDT and ValidateMesh.
package cdt

import (
	"context"
	"log"

	"github.com/chazu/cdt3d/internal/delaunay"
	"github.com/chazu/cdt3d/internal/facerecover"
	"github.com/chazu/cdt3d/internal/numerics"
	"github.com/chazu/cdt3d/internal/plc"
	"github.com/chazu/cdt3d/internal/region"
	"github.com/chazu/cdt3d/internal/segrecover"
	"github.com/chazu/cdt3d/internal/splc"
	"github.com/chazu/cdt3d/internal/tetmesh"
)

// Options configures ComputeCDT. The zero value is spec.md §6's
// documented default: no bounding box, no verbose logging.
type Options struct {
	// AddBoundingBox appends eight axis-aligned vertices just outside
	// the input bounding box before triangulating, per spec.md §4.B.
	AddBoundingBox bool
	// Verbose enables diagnostic logging of each pipeline stage.
	Verbose bool
	// Logf is the injectable logging sink spec.md §9 asks for ("Route
	// through an injectable sink... so embedding environments can
	// adapt"). It is called only when Verbose is true. If nil and
	// Verbose is true, diagnostics go to log.Default() instead, matching
	// the teacher's own log.Printf usage in app.go.
	Logf func(format string, args ...any)
}

// Result is the outcome of ComputeCDT, per spec.md §6's field table.
type Result struct {
	// Vertices is the output coordinate array, length 3*(V+B+S), where
	// B is 8 when AddBoundingBox added the box vertices and 0 otherwise.
	Vertices []float64
	// Tetrahedra is four vertex indices per interior tet, length 4*K.
	Tetrahedra []uint32
	// NumInputVertices is V (the real input vertex count; bounding-box
	// vertices, if any, are never counted here — see SPEC_FULL.md's
	// "REDESIGN FLAGS — resolved" item 1).
	NumInputVertices uint32
	// NumSteinerVertices is S.
	NumSteinerVertices uint32
	// NumTetrahedra is K.
	NumTetrahedra uint32
	// IsPolyhedron is true iff the input surface was detected closed
	// and 2-manifold.
	IsPolyhedron bool
	// Success is true iff face recovery completed without failure.
	Success bool
}

func (o Options) logf() func(format string, args ...any) {
	if !o.Verbose {
		return func(string, ...any) {}
	}
	if o.Logf != nil {
		return o.Logf
	}
	logger := log.Default()
	return func(format string, args ...any) { logger.Printf(format, args...) }
}

// ComputeCDT builds a Constrained Delaunay Tetrahedrization of the PLC
// given by vertices (3*V float64s) and triangles (3*T uint32 indices),
// per spec.md §1/§6. ctx is accepted purely so a caller wanting
// cancellation can run this call in a goroutine and select on
// ctx.Done() from the outside, per spec.md §5 — the pipeline itself
// never inspects it mid-computation.
func ComputeCDT(ctx context.Context, vertices []float64, triangles []uint32, opts Options) Result {
	_ = ctx
	logf := opts.logf()

	numerics.AssertRoundToNearest()

	p, err := plc.New(vertices, triangles)
	if err != nil {
		logf("cdt: invalid input: %v", err)
		return failure()
	}
	logf("cdt: validated %d vertices, %d triangles", p.NumVertices(), p.NumTriangles())

	isPolyhedron := p.IsClosedManifold()

	if opts.AddBoundingBox {
		p.AddBoundingBox()
		logf("cdt: added bounding box, now %d vertices", p.NumVertices())
	}

	mesh := tetmesh.NewMesh()
	handles := make([]tetmesh.VertexHandle, p.NumVertices())
	for i := 0; i < p.NumVertices(); i++ {
		x, y, z := p.Vertex(i)
		handles[i] = mesh.AddVertex(numerics.NewInputVertex(x, y, z))
	}

	builder, err := delaunay.Build(mesh, handles)
	if err != nil {
		logf("cdt: delaunay build failed: %v", err)
		return failure()
	}
	logf("cdt: delaunay build produced %d tets", mesh.NumLiveTets())

	overlay := splc.NewOverlay(mesh, p)
	segrecover.Recover(builder, overlay)
	logf("cdt: segment recovery complete, %d tets", mesh.NumLiveTets())

	faceSuccess := facerecover.Recover(builder, overlay)
	logf("cdt: face recovery success=%v, %d tets", faceSuccess, mesh.NumLiveTets())

	numIn := region.Mark(mesh, overlay, isPolyhedron)
	logf("cdt: region marking isPolyhedron=%v numIn=%d", isPolyhedron, numIn)

	return buildResult(mesh, p, isPolyhedron, faceSuccess)
}

// failure is the zero-arrays, success=false Result every invalid-input
// or degenerate-geometry path returns, per spec.md §7: "All errors
// collapse to success=false with zero-length arrays."
func failure() Result {
	return Result{Vertices: []float64{}, Tetrahedra: []uint32{}}
}

// buildResult materializes mesh's current state into a Result, keeping
// only tets the caller should see: if isPolyhedron, only tets marked
// tetmesh.In; otherwise every non-ghost tet (spec.md §4.H: "the caller
// will typically interpret this as 'return all tets'").
func buildResult(mesh *tetmesh.Mesh, p *plc.PLC, isPolyhedron, faceSuccess bool) Result {
	verts := make([]float64, 3*mesh.NumVertices())
	for h := 0; h < mesh.NumVertices(); h++ {
		a := mesh.Vertex(tetmesh.VertexHandle(h)).Approx
		verts[3*h], verts[3*h+1], verts[3*h+2] = a[0], a[1], a[2]
	}

	var tets []uint32
	mesh.Tets(func(t tetmesh.TetHandle) bool {
		if mesh.IsGhost(t) {
			return true
		}
		if isPolyhedron && mesh.Mark(t) != tetmesh.In {
			return true
		}
		v0, v1, v2, v3 := mesh.Vertices4(t)
		tets = append(tets, uint32(v0), uint32(v1), uint32(v2), uint32(v3))
		return true
	})
	if tets == nil {
		tets = []uint32{}
	}

	numInput := uint32(p.NumRealInputVertices())
	numSteiner := uint32(mesh.NumVertices()) - uint32(p.NumVertices())

	return Result{
		Vertices:           verts,
		Tetrahedra:         tets,
		NumInputVertices:   numInput,
		NumSteinerVertices: numSteiner,
		NumTetrahedra:      uint32(len(tets) / 4),
		IsPolyhedron:       isPolyhedron,
		Success:            faceSuccess,
	}
}

// ValidateMesh implements spec.md §6's validateMesh: it reports whether
// vertices/triangles would be accepted by ComputeCDT's input validation,
// without running the rest of the pipeline. Agrees with ComputeCDT's
// rejection behavior by construction — both call plc.Validate (the
// "validation idempotence" law of spec.md §8).
func ValidateMesh(vertices []float64, triangles []uint32) (numVertices, numTriangles uint32, valid bool) {
	return plc.Validate(vertices, triangles)
}
