package mat

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestGroundState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		m      *COO
		energy float64
	}{
		{
			name: "real",
			m: M([][]complex64{
				{1, 0.5},
				{0.5, -1},
			}),
			energy: -math.Sqrt(1.25),
		},
		{
			name: "complex",
			m: M([][]complex64{
				{0, -1i},
				{1i, 0},
			}),
			energy: -1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			energy, vec, err := GroundState(test.m, NewGroundStateOptions().Tol(1e-5))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if math.Abs(energy-test.energy) > 1e-4 {
				t.Fatalf("%f, expected %f", energy, test.energy)
			}

			// Check the eigenvector equation m*v = lambda*v.
			mv := test.m.MulVec(nil, vec)
			for i, v := range vec {
				d := mv[i] - complex(float32(energy), 0)*v
				if cmplx.Abs(complex128(d)) > 1e-4 {
					t.Fatalf("%d %v, expected %v", i, mv[i], complex(float32(energy), 0)*v)
				}
			}

			// The vector is normalized with its first significant entry real.
			var norm float64
			for _, v := range vec {
				norm += cmplx.Abs(complex128(v)) * cmplx.Abs(complex128(v))
			}
			if math.Abs(norm-1) > 1e-4 {
				t.Fatalf("%f", norm)
			}
			for _, v := range vec {
				if cmplx.Abs(complex128(v)) > 1e-6 {
					if math.Abs(float64(imag(v))) > 1e-4 {
						t.Fatalf("%v", v)
					}
					break
				}
			}
		})
	}
}

func TestGroundStateNoConvergence(t *testing.T) {
	t.Parallel()
	m := M([][]complex64{
		{1, 0.5},
		{0.5, -1},
	})
	if _, _, err := GroundState(m, NewGroundStateOptions().MaxIterations(1).Tol(1e-12)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGershgorin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		m    *COO
		lo   float64
		hi   float64
	}{
		{
			name: "full",
			m: M([][]complex64{
				{2, 1, 0},
				{1, -3, 1},
				{0, 0, 1},
			}),
			lo: -5,
			hi: 3,
		},
		{
			// The second row stores no entries, so its circle is the origin.
			name: "zeroRow",
			m: M([][]complex64{
				{-2, 0},
				{0, 0},
			}),
			lo: -2,
			hi: 0,
		},
		{
			name: "zeros",
			m:    Zeros(2, 2),
			lo:   0,
			hi:   0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			lo, hi := gershgorin(test.m)
			if lo != test.lo || hi != test.hi {
				t.Fatalf("%f %f, expected %f %f", lo, hi, test.lo, test.hi)
			}
		})
	}
}

func TestGroundStateZeros(t *testing.T) {
	t.Parallel()
	energy, vec, err := GroundState(Zeros(4, 4))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if energy != 0 {
		t.Fatalf("%f, expected 0", energy)
	}
	var norm float64
	for _, v := range vec {
		norm += cmplx.Abs(complex128(v)) * cmplx.Abs(complex128(v))
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Fatalf("%f", norm)
	}
}
