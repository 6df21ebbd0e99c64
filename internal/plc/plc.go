// Package plc holds the canonical, validated representation of the input
// Piecewise Linear Complex: a packed vertex coordinate array and a packed
// triangle index array, per spec.md §4.B.
package plc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the sentinel spec.md §7 category-1 error: malformed
// array lengths, out-of-range indices, or degenerate triangles. Callers
// check for it with errors.Is; cdt.ComputeCDT converts it to
// Result{Success: false} at the pipeline boundary.
var ErrInvalidInput = errors.New("plc: invalid input")

// PLC is the validated input: V vertices (3 floats each) and T triangles
// (3 vertex handles each), plus however many axis-aligned bounding-box
// vertices AddBoundingBox appended.
type PLC struct {
	// Coords is the flat x,y,z coordinate array, length 3*NumVertices().
	Coords []float64
	// Triangles is the flat vertex-handle array, length 3*NumTriangles().
	Triangles []uint32

	// numRealInput is the vertex count before AddBoundingBox ran (or the
	// full count, if it never runs). This is the V of spec.md §4.B/§6.
	numRealInput int
	// boundingBoxAdded records whether AddBoundingBox has run.
	boundingBoxAdded bool
}

// New validates vertices and triangles per spec.md §4.B and, if valid,
// returns the canonical PLC. Validation failures are reported as
// ErrInvalidInput; the caller never gets a partially-built PLC back.
func New(vertices []float64, triangles []uint32) (*PLC, error) {
	numV, numT, valid := Validate(vertices, triangles)
	if !valid {
		return nil, fmt.Errorf("%w: numVertices=%d numTriangles=%d", ErrInvalidInput, numV, numT)
	}
	coords := make([]float64, len(vertices))
	copy(coords, vertices)
	tris := make([]uint32, len(triangles))
	copy(tris, triangles)
	return &PLC{
		Coords:       coords,
		Triangles:    tris,
		numRealInput: int(numV),
	}, nil
}

// Validate implements spec.md §6's validateMesh: it agrees with New's
// input rejection (the "validation idempotence" law of spec.md §8)
// without allocating a PLC. Rejects non-divisible-by-3 lengths,
// out-of-range triangle indices, and degenerate triangles (two or more
// equal indices).
func Validate(vertices []float64, triangles []uint32) (numVertices, numTriangles uint32, valid bool) {
	if len(vertices)%3 != 0 || len(triangles)%3 != 0 {
		return 0, 0, false
	}
	numVertices = uint32(len(vertices) / 3)
	numTriangles = uint32(len(triangles) / 3)
	if numVertices == 0 || numTriangles == 0 {
		return numVertices, numTriangles, false
	}
	for i := 0; i < len(triangles); i += 3 {
		a, b, c := triangles[i], triangles[i+1], triangles[i+2]
		if a >= numVertices || b >= numVertices || c >= numVertices {
			return numVertices, numTriangles, false
		}
		if a == b || b == c || c == a {
			return numVertices, numTriangles, false
		}
	}
	for _, f := range vertices {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return numVertices, numTriangles, false
		}
	}
	return numVertices, numTriangles, true
}

// NumVertices returns the total vertex count, including any bounding-box
// vertices AddBoundingBox appended.
func (p *PLC) NumVertices() int { return len(p.Coords) / 3 }

// NumTriangles returns the input triangle count (AddBoundingBox never
// adds triangles, per spec.md §4.B).
func (p *PLC) NumTriangles() int { return len(p.Triangles) / 3 }

// NumRealInputVertices returns V, the vertex count before AddBoundingBox
// ran — the numInputVertices of spec.md §6, under the convention this
// module picked for the Open Question in spec.md §9 (see SPEC_FULL.md
// "REDESIGN FLAGS — resolved", item 1): bounding-box vertices get the
// highest handles and are never counted as input.
func (p *PLC) NumRealInputVertices() int { return p.numRealInput }

// BoundingBoxAdded reports whether AddBoundingBox has run.
func (p *PLC) BoundingBoxAdded() bool { return p.boundingBoxAdded }

// NumBoundaryVertices returns how many bounding-box vertices are present
// (0 or 8).
func (p *PLC) NumBoundaryVertices() int {
	if p.boundingBoxAdded {
		return 8
	}
	return 0
}

// edgeKey canonicalizes an undirected pair of vertex indices.
type edgeKey struct{ lo, hi uint32 }

func canonEdge(a, b uint32) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// IsClosedManifold reports whether the input triangles form a closed,
// 2-manifold surface: every triangle edge is shared by exactly two
// triangles. This is the isPolyhedron test of spec.md §6/§4.H — region
// marking only runs when this holds, since flood-fill-by-constraint-cut
// is only well-defined for a surface that actually separates the mesh
// into a well-defined inside and outside.
func (p *PLC) IsClosedManifold() bool {
	if p.NumTriangles() == 0 {
		return false
	}
	counts := make(map[edgeKey]int)
	for i := 0; i < len(p.Triangles); i += 3 {
		a, b, c := p.Triangles[i], p.Triangles[i+1], p.Triangles[i+2]
		counts[canonEdge(a, b)]++
		counts[canonEdge(b, c)]++
		counts[canonEdge(c, a)]++
	}
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}

// Vertex returns the coordinates of vertex handle i.
func (p *PLC) Vertex(i int) (x, y, z float64) {
	return p.Coords[3*i], p.Coords[3*i+1], p.Coords[3*i+2]
}

// AddBoundingBox appends eight axis-aligned vertices strictly outside the
// input bounding box, per spec.md §4.B: their sole purpose is to
// guarantee every input vertex is strictly interior to the Delaunay hull,
// simplifying constraint recovery near the boundary. No-op if already
// added (idempotent, so callers don't need to track whether they've
// already called it).
func (p *PLC) AddBoundingBox() {
	if p.boundingBoxAdded {
		return
	}
	if p.NumVertices() == 0 {
		p.boundingBoxAdded = true
		return
	}

	minX, minY, minZ := p.Coords[0], p.Coords[1], p.Coords[2]
	maxX, maxY, maxZ := minX, minY, minZ
	for i := 0; i < len(p.Coords); i += 3 {
		minX = math.Min(minX, p.Coords[i])
		maxX = math.Max(maxX, p.Coords[i])
		minY = math.Min(minY, p.Coords[i+1])
		maxY = math.Max(maxY, p.Coords[i+1])
		minZ = math.Min(minZ, p.Coords[i+2])
		maxZ = math.Max(maxZ, p.Coords[i+2])
	}

	dx := maxX - minX
	dy := maxY - minY
	dz := maxZ - minZ
	diag := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if diag == 0 {
		diag = 1
	}
	margin := diag * 0.5

	lo := [3]float64{minX - margin, minY - margin, minZ - margin}
	hi := [3]float64{maxX + margin, maxY + margin, maxZ + margin}

	// The eight corners of the expanded bounding box.
	corners := [8][3]float64{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]},
		{lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]},
		{lo[0], hi[1], hi[2]}, {hi[0], hi[1], hi[2]},
	}
	for _, c := range corners {
		p.Coords = append(p.Coords, c[0], c[1], c[2])
	}
	p.boundingBoxAdded = true
}
