// Package pauli implements the single qubit Pauli operator alphabet
// {I, X, Y, Z} in two interchangeable encodings: the integer index encoding
// Pauli and the symplectic bit pair encoding XZ.
package pauli

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qop/phase"
)

// ErrInvalidOperator is returned for indices or labels outside the alphabet.
var ErrInvalidOperator = errors.New("pauli: invalid operator")

// Pauli is a Pauli operator in the integer index encoding.
type Pauli uint8

const (
	I Pauli = iota
	X
	Y
	Z
)

var labels = [4]byte{'I', 'X', 'Y', 'Z'}

var mat2s = [4]phase.Mat2{
	{{phase.One, phase.Zero}, {phase.Zero, phase.One}},
	{{phase.Zero, phase.One}, {phase.One, phase.Zero}},
	{{phase.Zero, phase.MinusI}, {phase.I, phase.Zero}},
	{{phase.One, phase.Zero}, {phase.Zero, phase.MinusOne}},
}

// mulOp and mulPhase are the Pauli multiplication table.
// Tests check them against products of the mat2s matrices.
var (
	mulOp = [4][4]Pauli{
		{I, X, Y, Z},
		{X, I, Z, Y},
		{Y, Z, I, X},
		{Z, Y, X, I},
	}
	mulPhase = [4][4]phase.Phase{
		{phase.One, phase.One, phase.One, phase.One},
		{phase.One, phase.One, phase.I, phase.MinusI},
		{phase.One, phase.MinusI, phase.One, phase.I},
		{phase.One, phase.I, phase.MinusI, phase.One},
	}
)

// FromIndex is independent of its receiver; it exists for generic construction.
func (Pauli) FromIndex(i int) (Pauli, error) {
	if i < 0 || i >= len(labels) {
		return 0, errors.Wrap(ErrInvalidOperator, fmt.Sprintf("index %d", i))
	}
	return Pauli(i), nil
}

// FromLabel is independent of its receiver; it exists for generic construction.
func (Pauli) FromLabel(c byte) (Pauli, error) {
	for i, l := range labels {
		if c == l {
			return Pauli(i), nil
		}
	}
	return 0, errors.Wrap(ErrInvalidOperator, fmt.Sprintf("label %q", c))
}

// FromXZ returns the operator with the given symplectic components.
func (Pauli) FromXZ(x, z bool) Pauli {
	switch {
	case x && z:
		return Y
	case x:
		return X
	case z:
		return Z
	default:
		return I
	}
}

func (p Pauli) Index() int  { return int(p) }
func (p Pauli) Label() byte { return labels[p] }

// Size is the number of operators in the alphabet.
func (Pauli) Size() int { return len(labels) }

// Dim is the dimension of the single site matrices.
func (Pauli) Dim() int { return 2 }

// Mul returns the product of p and q as an operator and a phase.
func (p Pauli) Mul(q Pauli) (Pauli, phase.Phase) {
	return mulOp[p][q], mulPhase[p][q]
}

// Entry is the (i, j) entry of the operator's matrix.
func (p Pauli) Entry(i, j int) phase.Phase {
	return mat2s[p][i][j]
}

// Mat2 is the operator's matrix.
func (p Pauli) Mat2() phase.Mat2 {
	return mat2s[p]
}

// HasX reports whether the operator has an X component, true for X and Y.
func (p Pauli) HasX() bool { return p == X || p == Y }

// HasZ reports whether the operator has a Z component, true for Z and Y.
func (p Pauli) HasZ() bool { return p == Z || p == Y }

func (p Pauli) String() string { return string(labels[p]) }
