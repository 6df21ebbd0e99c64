package numerics_test

import (
	"testing"

	"github.com/chazu/cdt3d/internal/numerics"
)

func v(x, y, z float64) *numerics.Vertex { return numerics.NewInputVertex(x, y, z) }

func TestOrient3DBasic(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d *numerics.Vertex
		want       numerics.Sign
	}{
		{
			name: "negative standard basis",
			a:    v(0, 0, 0), b: v(1, 0, 0), c: v(0, 1, 0), d: v(0, 0, 1),
			want: numerics.Negative,
		},
		{
			name: "positive after swap",
			a:    v(0, 0, 0), b: v(0, 1, 0), c: v(1, 0, 0), d: v(0, 0, 1),
			want: numerics.Positive,
		},
		{
			name: "coplanar is zero",
			a:    v(0, 0, 0), b: v(1, 0, 0), c: v(0, 1, 0), d: v(1, 1, 0),
			want: numerics.Zero,
		},
		{
			name: "repeated point is zero",
			a:    v(1, 2, 3), b: v(1, 2, 3), c: v(0, 1, 0), d: v(0, 0, 1),
			want: numerics.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := numerics.Orient3D(tt.a, tt.b, tt.c, tt.d)
			if got != tt.want {
				t.Errorf("Orient3D() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrient3DDeterministic(t *testing.T) {
	a, b, c, d := v(0.1, 0.2, 0.3), v(1.1, 0.4, 0.1), v(0.3, 1.4, 0.2), v(0.2, 0.3, 1.7)
	first := numerics.Orient3D(a, b, c, d)
	for i := 0; i < 100; i++ {
		if got := numerics.Orient3D(a, b, c, d); got != first {
			t.Fatalf("Orient3D not deterministic across repeated calls: got %v, first %v", got, first)
		}
	}
}

func TestInSphereBasic(t *testing.T) {
	// A regular-ish tetrahedron around the origin, positively oriented.
	a, b, c, d := v(1, 1, 1), v(1, -1, -1), v(-1, 1, -1), v(-1, -1, 1)
	if numerics.Orient3D(a, b, c, d) != numerics.Positive {
		t.Fatalf("setup: expected positively oriented tetrahedron")
	}

	inside := v(0, 0, 0)
	if got := numerics.InSphere(a, b, c, d, inside); got != numerics.Positive {
		t.Errorf("InSphere(origin) = %v, want Positive (origin is the circumcenter)", got)
	}

	outside := v(100, 100, 100)
	if got := numerics.InSphere(a, b, c, d, outside); got != numerics.Negative {
		t.Errorf("InSphere(far point) = %v, want Negative", got)
	}
}

func TestCheckedOrient3DPanicsOnContradiction(t *testing.T) {
	a, b, c, d := v(0, 0, 0), v(0, 1, 0), v(1, 0, 0), v(0, 0, 1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on contradicted sign, got none")
		}
		if _, ok := r.(*numerics.Inconsistent); !ok {
			t.Fatalf("expected *numerics.Inconsistent, got %T: %v", r, r)
		}
	}()
	numerics.CheckedOrient3D(a, b, c, d, numerics.Negative)
}

func TestCheckedOrient3DAgreesSilently(t *testing.T) {
	a, b, c, d := v(0, 0, 0), v(0, 1, 0), v(1, 0, 0), v(0, 0, 1)
	got := numerics.CheckedOrient3D(a, b, c, d, numerics.Positive)
	if got != numerics.Positive {
		t.Errorf("CheckedOrient3D() = %v, want Positive", got)
	}
}
