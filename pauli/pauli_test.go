package pauli

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/qop/phase"
)

func TestMul(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a  Pauli
		b  Pauli
		c  Pauli
		ph phase.Phase
	}{
		{a: X, b: Y, c: Z, ph: phase.I},
		{a: Y, b: X, c: Z, ph: phase.MinusI},
		{a: Y, b: Z, c: X, ph: phase.I},
		{a: Z, b: Y, c: X, ph: phase.MinusI},
		{a: Z, b: X, c: Y, ph: phase.I},
		{a: X, b: Z, c: Y, ph: phase.MinusI},
		{a: X, b: X, c: I, ph: phase.One},
		{a: Y, b: Y, c: I, ph: phase.One},
		{a: Z, b: Z, c: I, ph: phase.One},
		{a: I, b: Y, c: Y, ph: phase.One},
		{a: Z, b: I, c: Z, ph: phase.One},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s%s", test.a, test.b), func(t *testing.T) {
			t.Parallel()
			c, ph := test.a.Mul(test.b)
			if !(c == test.c && ph == test.ph) {
				t.Fatalf("%s %s, expected %s %s", ph, c, test.ph, test.c)
			}
		})
	}
}

// TestMulTable checks the multiplication table of both encodings against
// products of the single site matrices.
func TestMulTable(t *testing.T) {
	t.Parallel()
	for a := I; a <= Z; a++ {
		for b := I; b <= Z; b++ {
			c, ph := a.Mul(b)
			m, err := a.Mat2().Mul(b.Mat2())
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if m != c.Mat2().Scale(ph) {
				t.Fatalf("%s*%s: %v, expected %s scaled by %s", a, b, m, c, ph)
			}

			xza, err := XZ(0).FromIndex(a.Index())
			if err != nil {
				t.Fatalf("%+v", err)
			}
			xzb, err := XZ(0).FromIndex(b.Index())
			if err != nil {
				t.Fatalf("%+v", err)
			}
			xzc, xzPh := xza.Mul(xzb)
			if !(xzc.Index() == c.Index() && xzPh == ph) {
				t.Fatalf("%s*%s: %s%s, expected %s%s", xza, xzb, xzPh, xzc, ph, c)
			}
		}
	}
}

func TestFromLabel(t *testing.T) {
	t.Parallel()
	for i, c := range []byte("IXYZ") {
		p, err := Pauli(0).FromLabel(c)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if p.Index() != i || p.Label() != c {
			t.Fatalf("%d %q, expected %d %q", p.Index(), p.Label(), i, c)
		}

		xz, err := XZ(0).FromLabel(c)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if xz.Index() != i || xz.Label() != c {
			t.Fatalf("%d %q, expected %d %q", xz.Index(), xz.Label(), i, c)
		}
	}

	if _, err := Pauli(0).FromLabel('Q'); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("%+v", err)
	}
	if _, err := XZ(0).FromIndex(4); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("%+v", err)
	}
	if _, err := Pauli(0).FromIndex(-1); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("%+v", err)
	}
}

func TestComponents(t *testing.T) {
	t.Parallel()
	tests := []struct {
		p    Pauli
		hasX bool
		hasZ bool
	}{
		{p: I, hasX: false, hasZ: false},
		{p: X, hasX: true, hasZ: false},
		{p: Y, hasX: true, hasZ: true},
		{p: Z, hasX: false, hasZ: true},
	}
	for _, test := range tests {
		t.Run(test.p.String(), func(t *testing.T) {
			t.Parallel()
			if test.p.HasX() != test.hasX || test.p.HasZ() != test.hasZ {
				t.Fatalf("%v %v, expected %v %v", test.p.HasX(), test.p.HasZ(), test.hasX, test.hasZ)
			}
			if Pauli(0).FromXZ(test.hasX, test.hasZ) != test.p {
				t.Fatalf("%s", Pauli(0).FromXZ(test.hasX, test.hasZ))
			}

			xz := XZ(0).FromXZ(test.hasX, test.hasZ)
			if xz.HasX() != test.hasX || xz.HasZ() != test.hasZ {
				t.Fatalf("%v %v, expected %v %v", xz.HasX(), xz.HasZ(), test.hasX, test.hasZ)
			}
			if xz.Index() != test.p.Index() {
				t.Fatalf("%d, expected %d", xz.Index(), test.p.Index())
			}
		})
	}
}

func TestEntry(t *testing.T) {
	t.Parallel()
	y := Y.Mat2()
	expected := phase.Mat2{{phase.Zero, phase.MinusI}, {phase.I, phase.Zero}}
	if y != expected {
		t.Fatalf("%v, expected %v", y, expected)
	}
	if Y.Entry(1, 0) != phase.I {
		t.Fatalf("%s", Y.Entry(1, 0))
	}
}
