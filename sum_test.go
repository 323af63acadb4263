package qop

import (
	"fmt"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/qop/mat"
	"github.com/fumin/qop/pauli"
)

func pt(t *testing.T, s string, coeff complex64) *Term[pauli.Pauli, complex64] {
	t.Helper()
	term, err := Parse[pauli.Pauli](s, coeff)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return term
}

func TestSumAdd(t *testing.T) {
	t.Parallel()
	s := NewSum[pauli.Pauli, complex64]()
	s.Add(pt(t, "XY", 1))
	s.Add(pt(t, "II", 2))
	s.Add(pt(t, "XY", 3i))
	s.Add(pt(t, "ZZ", -1))

	checkCanonical(t, s)
	if s.Len() != 3 {
		t.Fatalf("%s", s)
	}
	if s.Terms()[1].Labels() != "XY" || s.Terms()[1].Coeff() != 1+3i {
		t.Fatalf("%s", s)
	}
}

// TestSumCancel checks that inserting a term and its negation cancels to the
// empty sum.
func TestSumCancel(t *testing.T) {
	t.Parallel()
	term := pt(t, "XIZ", 2i)
	s := NewSum[pauli.Pauli, complex64]()
	s.Add(term)
	s.Add(term.Neg())
	if s.Len() != 0 {
		t.Fatalf("%s", s)
	}
}

// TestSumCanonical checks sorted order and uniqueness after random insertion
// sequences.
func TestSumCanonical(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(7))
	const n = 3
	s := NewSum[pauli.Pauli, complex64]()
	for range 1000 {
		ops := make([]pauli.Pauli, n)
		for i := range ops {
			ops[i] = pauli.Pauli(rnd.Intn(4))
		}
		coeff := complex(float32(rnd.Intn(3)-1), 0)
		s.Add(New(ops, complex64(coeff)))
		checkCanonical(t, s)
	}
}

func TestSumOf(t *testing.T) {
	t.Parallel()
	s := SumOf(pt(t, "XI", 1), pt(t, "IZ", 1), pt(t, "XI", -1), pt(t, "YY", 0))
	checkCanonical(t, s)
	if s.Len() != 1 || s.Terms()[0].Labels() != "IZ" {
		t.Fatalf("%s", s)
	}
}

func TestSumMul(t *testing.T) {
	t.Parallel()
	tests := []struct {
		s1 *Sum[pauli.Pauli, complex64]
		s2 *Sum[pauli.Pauli, complex64]
	}{
		{
			s1: SumOf(pt(t, "XI", 1), pt(t, "IZ", 0.5)),
			s2: SumOf(pt(t, "YI", 2), pt(t, "ZY", -1i)),
		},
		{
			// X*X and Y*Y both land on II and merge.
			s1: SumOf(pt(t, "X", 1), pt(t, "Y", 1)),
			s2: SumOf(pt(t, "X", 1), pt(t, "Y", 1)),
		},
		{
			// Products cancel completely: (X+iY)(X+iY) = XX - YY + i(XY+YX) = 0.
			s1: SumOf(pt(t, "X", 1), pt(t, "Y", 1i)),
			s2: SumOf(pt(t, "X", 1), pt(t, "Y", 1i)),
		},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			prod, err := test.s1.Mul(test.s2)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			checkCanonical(t, prod)

			// The product must agree with the matrix product.
			n := test.s1.Terms()[0].Len()
			expected := mat.MatMul(test.s1.Matrix(), test.s2.Matrix())
			got := prod.Matrix(NewMatrixOptions().Sites(n))
			if !got.Equal(expected) {
				t.Fatalf("%s\nexpected\n%s", got, expected)
			}
		})
	}
}

func TestSumNegScale(t *testing.T) {
	t.Parallel()
	s := SumOf(pt(t, "X", 1), pt(t, "Z", -2))
	s.Neg()
	if s.Terms()[0].Coeff() != 2 || s.Terms()[1].Coeff() != -1 {
		t.Fatalf("%s", s)
	}
	s.Scale(2i)
	if s.Terms()[0].Coeff() != 4i || s.Terms()[1].Coeff() != -2i {
		t.Fatalf("%s", s)
	}
	s.Scale(0)
	if s.Len() != 0 {
		t.Fatalf("%s", s)
	}
}

func TestSumMatrixWorkers(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(3))
	const n = 4
	s := NewSum[pauli.Pauli, complex64]()
	for range 50 {
		ops := make([]pauli.Pauli, n)
		for i := range ops {
			ops[i] = pauli.Pauli(rnd.Intn(4))
		}
		s.Add(New(ops, complex64(complex(rnd.Float32()-0.5, rnd.Float32()-0.5))))
	}

	sequential := s.Matrix()
	parallel := s.Matrix(NewMatrixOptions().Workers(8))
	if !parallel.Equal(sequential) {
		t.Fatalf("workers disagree")
	}
}

// TestFromMatrix checks that decomposing a random Pauli sum's matrix
// reproduces the sum exactly.
func TestFromMatrix(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(11))
	const n = 3
	s := NewSum[pauli.Pauli, complex64]()
	for range 10 {
		ops := make([]pauli.Pauli, n)
		for i := range ops {
			ops[i] = pauli.Pauli(rnd.Intn(4))
		}
		// Dyadic coefficients keep the round trip exact.
		coeff := complex(float32(rnd.Intn(8)-4)/4, float32(rnd.Intn(8)-4)/4)
		s.Add(New(ops, complex64(coeff)))
	}

	got, err := FromMatrix[pauli.Pauli, complex64](s.Matrix(NewMatrixOptions().Sites(n)), 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !got.Equal(s) {
		t.Fatalf("%s\nexpected\n%s", got, s)
	}
}

// TestFromMatrixNoise decomposes an identity-plus-noise matrix and checks the
// reconstruction against the original.
func TestFromMatrixNoise(t *testing.T) {
	t.Parallel()
	m := mat.M([][]complex64{
		{1.0625, 0.125 - 0.25i},
		{0.125 + 0.25i, 0.9375},
	})
	s, err := FromMatrix[pauli.Pauli, complex64](m, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// Hermitian input decomposes with real coefficients.
	for _, term := range s.Terms() {
		if imag(term.Coeff()) != 0 {
			t.Fatalf("%s", s)
		}
	}
	if !s.Matrix().Equal(m) {
		t.Fatalf("%s\nexpected\n%s", s.Matrix(), m)
	}
}

func TestFromMatrixDimensionMismatch(t *testing.T) {
	t.Parallel()
	m := mat.M([][]complex64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	if _, err := FromMatrix[pauli.Pauli, complex64](m, 0); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}
	if _, err := FromMatrix[pauli.Pauli, complex64](mat.Zeros(2, 4), 0); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}
}

func TestFromMatrixTolerance(t *testing.T) {
	t.Parallel()
	m := mat.M([][]complex64{
		{1, 1e-9},
		{1e-9, 1},
	})
	s, err := FromMatrix[pauli.Pauli, complex64](m, 1e-6)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if s.Len() != 1 || s.Terms()[0].Labels() != "I" {
		t.Fatalf("%s", s)
	}
	if cmplx.Abs(complex128(s.Terms()[0].Coeff())-1) > 1e-6 {
		t.Fatalf("%s", s)
	}
}

func checkCanonical[O Kind[O], C Complex](t *testing.T, s *Sum[O, C]) {
	t.Helper()
	terms := s.Terms()
	for i := 1; i < len(terms); i++ {
		if terms[i-1].Cmp(terms[i]) >= 0 {
			t.Fatalf("not canonical: %s", s)
		}
	}
	for _, term := range terms {
		if term.Coeff() == 0 {
			t.Fatalf("zero coefficient retained: %s", s)
		}
	}
}
