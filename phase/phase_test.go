package phase

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

var all = []Phase{One, I, MinusOne, MinusI, Zero}

func TestMul(t *testing.T) {
	t.Parallel()
	// The table must agree with complex multiplication on every pair.
	for _, p := range all {
		for _, q := range all {
			got := p.Mul(q).Complex128()
			expected := p.Complex128() * q.Complex128()
			if got != expected {
				t.Fatalf("%s*%s=%v, expected %v", p, q, got, expected)
			}
		}
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		p   Phase
		q   Phase
		sum Phase
		err bool
	}{
		{p: Zero, q: Zero, sum: Zero},
		{p: Zero, q: MinusI, sum: MinusI},
		{p: I, q: Zero, sum: I},
		{p: One, q: One, err: true},
		{p: I, q: MinusI, err: true},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s+%s", test.p, test.q), func(t *testing.T) {
			t.Parallel()
			sum, err := test.p.Add(test.q)
			if test.err {
				if !errors.Is(err, ErrConflict) {
					t.Fatalf("%+v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if sum != test.sum {
				t.Fatalf("%s, expected %s", sum, test.sum)
			}
		})
	}
}

func TestMat2Mul(t *testing.T) {
	t.Parallel()
	x := Mat2{{Zero, One}, {One, Zero}}
	y := Mat2{{Zero, MinusI}, {I, Zero}}
	z := Mat2{{One, Zero}, {Zero, MinusOne}}
	raise := Mat2{{Zero, Zero}, {One, Zero}}
	tests := []struct {
		a Mat2
		b Mat2
		c Mat2
	}{
		{a: x, b: y, c: z.Scale(I)},
		{a: y, b: x, c: z.Scale(MinusI)},
		{a: x, b: x, c: Mat2{{One, Zero}, {Zero, One}}},
		{a: raise, b: raise, c: Mat2{}},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			c, err := test.a.Mul(test.b)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if c != test.c {
				t.Fatalf("%v, expected %v", c, test.c)
			}
		})
	}
}

func TestMat2MulConflict(t *testing.T) {
	t.Parallel()
	ones := Mat2{{One, One}, {One, One}}
	if _, err := ones.Mul(ones); !errors.Is(err, ErrConflict) {
		t.Fatalf("%+v", err)
	}
}
