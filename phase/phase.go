// Package phase implements the exact phase algebra over {0, +1, -1, +i, -i}.
//
// Multiplication is total and closed: the four nonzero values form the group
// of 4th roots of unity, and 0 is absorbing. Addition is intentionally
// partial: it folds contributions where at most one branch is nonzero, such
// as entries of products of generalized permutation matrices, and fails on
// any other use. It is not a substitute for complex addition.
package phase

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConflict is returned when adding two nonzero phases.
var ErrConflict = errors.New("phase: addition of two nonzero phases")

// Phase is one of 0, +1, -1, +i, -i.
// The zero value of the type is the phase 0, so that an empty Mat2 is the
// zero matrix.
type Phase uint8

const (
	Zero Phase = iota
	One
	I
	MinusOne
	MinusI
)

var mulTable = [5][5]Phase{
	{Zero, Zero, Zero, Zero, Zero},
	{Zero, One, I, MinusOne, MinusI},
	{Zero, I, MinusOne, MinusI, One},
	{Zero, MinusOne, MinusI, One, I},
	{Zero, MinusI, One, I, MinusOne},
}

var complexes = [5]complex128{0, 1, 1i, -1, -1i}

var strs = [5]string{"0", "+1", "+i", "-1", "-i"}

// Mul returns the product of p and q.
func (p Phase) Mul(q Phase) Phase {
	return mulTable[p][q]
}

// Add returns the sum of p and q.
// It fails with ErrConflict unless at least one operand is Zero.
func (p Phase) Add(q Phase) (Phase, error) {
	switch {
	case p == Zero:
		return q, nil
	case q == Zero:
		return p, nil
	default:
		return Zero, errors.Wrap(ErrConflict, fmt.Sprintf("%s %s", p, q))
	}
}

// Complex64 returns the exact complex64 value of p.
func (p Phase) Complex64() complex64 {
	return complex64(complexes[p])
}

// Complex128 returns the exact complex128 value of p.
func (p Phase) Complex128() complex128 {
	return complexes[p]
}

func (p Phase) String() string {
	return strs[p]
}

// Mat2 is a 2x2 matrix whose entries are phase values.
// Single site operators of all particle kinds are expressible as Mat2s.
type Mat2 [2][2]Phase

// Mul returns the matrix product of a and b.
// It fails if an entry of the product leaves the phase set, which cannot
// happen when both operands have at most one nonzero entry per row and column.
func (a Mat2) Mul(b Mat2) (Mat2, error) {
	var c Mat2
	for i := range 2 {
		for j := range 2 {
			entry := Zero
			for k := range 2 {
				var err error
				entry, err = entry.Add(a[i][k].Mul(b[k][j]))
				if err != nil {
					return Mat2{}, errors.Wrap(err, fmt.Sprintf("%d %d", i, j))
				}
			}
			c[i][j] = entry
		}
	}
	return c, nil
}

// Scale returns a with every entry multiplied by p.
func (a Mat2) Scale(p Phase) Mat2 {
	var c Mat2
	for i := range 2 {
		for j := range 2 {
			c[i][j] = a[i][j].Mul(p)
		}
	}
	return c
}
