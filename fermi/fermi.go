// Package fermi implements the single mode fermionic operator alphabet
// {I, N, E, +, -, 0, Z} of occupation number algebra.
//
// N is the number operator, E = 1-N projects on the vacancy, Raise and Lower
// are the creation and annihilation operators, Zero is the zero operator, and
// Z = N-E. The multiplication table is not written out; it is derived once at
// package init from the single mode matrices, so that identities such as
// Raise*Lower = N or Raise*Raise = Zero hold by construction.
package fermi

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qop/phase"
)

// ErrInvalidOperator is returned for indices or labels outside the alphabet.
var ErrInvalidOperator = errors.New("fermi: invalid operator")

// Fermi is a fermionic operator on a single mode.
type Fermi uint8

const (
	I     Fermi = iota
	N           // number operator
	E           // vacancy projector, 1-N
	Raise       // creation
	Lower       // annihilation
	Zero        // the zero operator, absorbing under multiplication
	Z           // N-E
)

var labels = [7]byte{'I', 'N', 'E', '+', '-', '0', 'Z'}

// mat2s are the single mode matrices in the basis {unoccupied, occupied}.
var mat2s = [7]phase.Mat2{
	{{phase.One, phase.Zero}, {phase.Zero, phase.One}},
	{{phase.Zero, phase.Zero}, {phase.Zero, phase.One}},
	{{phase.One, phase.Zero}, {phase.Zero, phase.Zero}},
	{{phase.Zero, phase.Zero}, {phase.One, phase.Zero}},
	{{phase.Zero, phase.One}, {phase.Zero, phase.Zero}},
	{},
	{{phase.MinusOne, phase.Zero}, {phase.Zero, phase.One}},
}

var (
	mulOp    [7][7]Fermi
	mulPhase [7][7]phase.Phase
)

func init() {
	for a := I; a <= Z; a++ {
		for b := I; b <= Z; b++ {
			m, err := mat2s[a].Mul(mat2s[b])
			if err != nil {
				panic(fmt.Sprintf("%+v", err))
			}
			op, ph, ok := recognize(m)
			if !ok {
				panic(fmt.Sprintf("%s*%s not in alphabet", a, b))
			}
			mulOp[a][b], mulPhase[a][b] = op, ph
		}
	}
}

// recognize finds the alphabet operator and phase whose scaled matrix is m.
// A vanished product is reported as Zero with phase 0, so that absorption
// propagates through coefficients with no special casing.
func recognize(m phase.Mat2) (Fermi, phase.Phase, bool) {
	if m == (phase.Mat2{}) {
		return Zero, phase.Zero, true
	}
	for op := I; op <= Z; op++ {
		if op == Zero {
			continue
		}
		for _, ph := range []phase.Phase{phase.One, phase.MinusOne, phase.I, phase.MinusI} {
			if m == mat2s[op].Scale(ph) {
				return op, ph, true
			}
		}
	}
	return 0, 0, false
}

// FromIndex is independent of its receiver; it exists for generic construction.
func (Fermi) FromIndex(i int) (Fermi, error) {
	if i < 0 || i >= len(labels) {
		return 0, errors.Wrap(ErrInvalidOperator, fmt.Sprintf("index %d", i))
	}
	return Fermi(i), nil
}

// FromLabel is independent of its receiver; it exists for generic construction.
func (Fermi) FromLabel(c byte) (Fermi, error) {
	for i, l := range labels {
		if c == l {
			return Fermi(i), nil
		}
	}
	return 0, errors.Wrap(ErrInvalidOperator, fmt.Sprintf("label %q", c))
}

func (f Fermi) Index() int  { return int(f) }
func (f Fermi) Label() byte { return labels[f] }

// Size is the number of operators in the alphabet.
func (Fermi) Size() int { return len(labels) }

// Dim is the dimension of the single site matrices.
func (Fermi) Dim() int { return 2 }

// Mul returns the product of f and g as an operator and a phase.
// Products among {I, N, E, Raise, Lower, Zero} carry phase +1 or, when the
// product vanishes, the operator Zero with phase 0. Products involving Z may
// carry -1, for example Raise*Z = -Raise.
func (f Fermi) Mul(g Fermi) (Fermi, phase.Phase) {
	return mulOp[f][g], mulPhase[f][g]
}

// Entry is the (i, j) entry of the operator's matrix.
func (f Fermi) Entry(i, j int) phase.Phase {
	return mat2s[f][i][j]
}

// Mat2 is the operator's matrix.
func (f Fermi) Mat2() phase.Mat2 {
	return mat2s[f]
}

func (f Fermi) String() string { return string(labels[f]) }
