package qop

import (
	"fmt"
	"math/cmplx"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/fumin/qop/mat"
	"github.com/fumin/qop/phase"
)

// Sum is a linear combination of terms.
// Terms are kept sorted by their operator strings with no duplicates, and a
// term whose coefficient cancels to zero is removed on sight.
type Sum[O Kind[O], C Complex] struct {
	terms []*Term[O, C]
}

// NewSum returns the empty sum.
func NewSum[O Kind[O], C Complex]() *Sum[O, C] {
	return &Sum[O, C]{terms: make([]*Term[O, C], 0)}
}

// SumOf returns the sum of the given terms, merging duplicates.
// SumOf takes over the terms; callers must not use them afterwards.
func SumOf[O Kind[O], C Complex](terms ...*Term[O, C]) *Sum[O, C] {
	s := NewSum[O, C]()
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Len is the number of terms.
func (s *Sum[O, C]) Len() int { return len(s.terms) }

// Terms returns the terms in canonical order.
// The returned slice is a view; callers must not modify it.
func (s *Sum[O, C]) Terms() []*Term[O, C] { return s.terms }

// Add inserts t into s, merging it into an existing term with the same
// operator string and dropping the entry if the coefficients cancel.
// Add takes over t; callers must not use it afterwards.
func (s *Sum[O, C]) Add(t *Term[O, C]) {
	i, ok := slices.BinarySearchFunc(s.terms, t, func(a, b *Term[O, C]) int { return a.Cmp(b) })
	switch {
	case ok:
		s.terms[i].coeff += t.coeff
		if s.terms[i].coeff == 0 {
			s.terms = slices.Delete(s.terms, i, i+1)
		}
	case t.coeff != 0:
		s.terms = slices.Insert(s.terms, i, t)
	}
}

// Mul returns the product of s and b, distributing term by term.
// Products are inserted into a fresh accumulator as they arise, so that
// cancellations happen early and the result stays canonical throughout.
func (s *Sum[O, C]) Mul(b *Sum[O, C]) (*Sum[O, C], error) {
	prod := NewSum[O, C]()
	for _, st := range s.terms {
		for _, bt := range b.terms {
			t, err := st.Mul(bt)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("%s %s", st, bt))
			}
			prod.Add(t)
		}
	}
	return prod, nil
}

// Neg negates every coefficient in place.
func (s *Sum[O, C]) Neg() {
	for _, t := range s.terms {
		t.coeff = -t.coeff
	}
}

// Scale multiplies every coefficient by k in place.
// A zero k empties the sum.
func (s *Sum[O, C]) Scale(k C) {
	if k == 0 {
		s.terms = s.terms[:0]
		return
	}
	for _, t := range s.terms {
		t.coeff *= k
	}
}

// Equal reports whether s and b have the same terms with the same
// coefficients.
func (s *Sum[O, C]) Equal(b *Sum[O, C]) bool {
	if len(s.terms) != len(b.terms) {
		return false
	}
	for i, t := range s.terms {
		if t.Cmp(b.terms[i]) != 0 {
			return false
		}
		if t.coeff != b.terms[i].coeff {
			return false
		}
	}
	return true
}

// MatrixOptions are options for Sum.Matrix.
type MatrixOptions struct {
	workers int
	sites   int
}

// NewMatrixOptions returns the default matrix conversion options.
func NewMatrixOptions() MatrixOptions {
	opt := MatrixOptions{}
	opt.workers = 1
	opt.sites = -1
	return opt
}

// Workers sets the number of goroutines converting terms.
func (opt MatrixOptions) Workers(w int) MatrixOptions {
	opt.workers = w
	return opt
}

// Sites sets the number of sites explicitly.
// It is required only for the empty sum, whose site count cannot be inferred.
func (opt MatrixOptions) Sites(n int) MatrixOptions {
	opt.sites = n
	return opt
}

// Matrix returns the matrix of s, the sum of its term matrices.
// The matrix has 2^n rows, which is exponential in the number of sites by
// construction. Workers accumulate disjoint partial sums that are merged
// sequentially at the end.
func (s *Sum[O, C]) Matrix(options ...MatrixOptions) *mat.COO {
	opt := NewMatrixOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	n := opt.sites
	if n < 0 {
		if len(s.terms) == 0 {
			panic("empty sum with no explicit site count")
		}
		n = s.terms[0].n
	}
	rows := 1 << n

	workers := min(max(opt.workers, 1), max(len(s.terms), 1))
	partials := make([]*mat.COO, workers)
	var wg sync.WaitGroup
	for k := 0; k < workers; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc := mat.Zeros(rows, rows)
			for i := k; i < len(s.terms); i += workers {
				acc.Add(1, s.terms[i].Matrix())
			}
			partials[k] = acc
		}()
	}
	wg.Wait()

	m := partials[0]
	for _, p := range partials[1:] {
		m.Add(1, p)
	}
	return m
}

// FromMatrix decomposes a matrix into a sum of Pauli terms by projecting onto
// every one of the 4^n operator strings, coeff = trace(P'*m)/2^n, using the
// orthogonality of Pauli strings under the trace inner product. Coefficients
// within tol of zero are dropped. The cost is exponential in the number of
// sites, which is inherent to exact Pauli decomposition.
// A matrix whose side is not a power of two fails with ErrDimensionMismatch.
func FromMatrix[P PauliLike[P], C Complex](m *mat.COO, tol float64) (*Sum[P, C], error) {
	if m.Rows() != m.Cols() {
		return nil, errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("%d %d", m.Rows(), m.Cols()))
	}
	n := 0
	for 1<<n < m.Rows() {
		n++
	}
	if 1<<n != m.Rows() {
		return nil, errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("%d", m.Rows()))
	}

	var z P
	s := NewSum[P, C]()
	ops := make([]P, n)
	for range pow(4, n) {
		coeff := project(m, n, ops)
		if cmplx.Abs(coeff) > tol {
			s.Add(New(ops, C(coeff)))
		}

		// Advance to the next operator string, site n-1 moving fastest.
		for i := n - 1; i >= 0; i-- {
			next := (ops[i].Index() + 1) % 4
			op, err := z.FromIndex(next)
			if err != nil {
				panic(fmt.Sprintf("%+v", err))
			}
			ops[i] = op
			if next != 0 {
				break
			}
		}
	}
	return s, nil
}

// project returns trace(P'*m) / 2^n for the Pauli string P given by ops.
func project[P PauliLike[P]](m *mat.COO, n int, ops []P) complex128 {
	var coeff complex128
	for _, e := range m.Data {
		ph := phase.One
		for s, op := range ops {
			b := (e.Row >> (n - 1 - s)) & 1
			c := (e.Col >> (n - 1 - s)) & 1
			ph = ph.Mul(op.Entry(b, c))
			if ph == phase.Zero {
				break
			}
		}
		if ph == phase.Zero {
			continue
		}
		coeff += cmplx.Conj(ph.Complex128()) * complex128(e.V)
	}
	return coeff / complex(float64(int(1)<<n), 0)
}

func pow(base, exp int) int {
	p := 1
	for range exp {
		p *= base
	}
	return p
}

func (s *Sum[O, C]) String() string {
	strs := make([]string, 0, len(s.terms))
	for _, t := range s.terms {
		strs = append(strs, t.String())
	}
	return strings.Join(strs, " + ")
}
