package pauli

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qop/phase"
)

// XZ is a Pauli operator in the symplectic bit pair encoding.
// Bit 0 is the X component and bit 1 the Z component:
// I=0b00, X=0b01, Y=0b11, Z=0b10.
// Products are computed from the bits instead of a table.
type XZ uint8

const (
	xBit XZ = 1 << iota
	zBit
)

// bitsIdx maps between bit patterns and alphabet indices.
// The map is an involution, so it serves both directions.
var bitsIdx = [4]uint8{0, 1, 3, 2}

// FromIndex is independent of its receiver; it exists for generic construction.
func (XZ) FromIndex(i int) (XZ, error) {
	if i < 0 || i >= len(bitsIdx) {
		return 0, errors.Wrap(ErrInvalidOperator, fmt.Sprintf("index %d", i))
	}
	return XZ(bitsIdx[i]), nil
}

// FromLabel is independent of its receiver; it exists for generic construction.
func (XZ) FromLabel(c byte) (XZ, error) {
	for i, l := range labels {
		if c == l {
			return XZ(bitsIdx[i]), nil
		}
	}
	return 0, errors.Wrap(ErrInvalidOperator, fmt.Sprintf("label %q", c))
}

// FromXZ returns the operator with the given symplectic components.
func (XZ) FromXZ(x, z bool) XZ {
	var p XZ
	if x {
		p |= xBit
	}
	if z {
		p |= zBit
	}
	return p
}

func (p XZ) Index() int  { return int(bitsIdx[p]) }
func (p XZ) Label() byte { return labels[bitsIdx[p]] }

// Size is the number of operators in the alphabet.
func (XZ) Size() int { return len(bitsIdx) }

// Dim is the dimension of the single site matrices.
func (XZ) Dim() int { return 2 }

// Mul returns the product of p and q as an operator and a phase.
// The operator part is the XOR of the bit pairs. The phase is +1 when an
// operand is the identity or both are equal, and otherwise +i or -i by the
// cyclic order X -> Y -> Z -> X.
func (p XZ) Mul(q XZ) (XZ, phase.Phase) {
	r := p ^ q
	if p == 0 || q == 0 || p == q {
		return r, phase.One
	}
	pi, qi := bitsIdx[p], bitsIdx[q]
	if qi == pi%3+1 {
		return r, phase.I
	}
	return r, phase.MinusI
}

// Entry is the (i, j) entry of the operator's matrix.
func (p XZ) Entry(i, j int) phase.Phase {
	return mat2s[bitsIdx[p]][i][j]
}

// Mat2 is the operator's matrix.
func (p XZ) Mat2() phase.Mat2 {
	return mat2s[bitsIdx[p]]
}

// HasX reports whether the operator has an X component, true for X and Y.
func (p XZ) HasX() bool { return p&xBit != 0 }

// HasZ reports whether the operator has a Z component, true for Z and Y.
func (p XZ) HasZ() bool { return p&zBit != 0 }

func (p XZ) String() string { return string(p.Label()) }
