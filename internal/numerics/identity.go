package numerics

import "unsafe"

// ptrOf returns a stable integer identity for a *Vertex, used only to give
// Simulation-of-Simplicity perturbation a fixed total order over vertices
// (see perturb.go). The order does not need to mean anything geometrically,
// only to be consistent for the lifetime of one computation, which the
// address of a never-moved heap allocation satisfies.
func ptrOf(v *Vertex) uint64 {
	return uint64(uintptr(unsafe.Pointer(v)))
}
