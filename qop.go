// Package qop implements exact algebra on strings of single particle quantum
// operators: coefficient weighted terms, canonically ordered sums of terms,
// and conversions to and from dense matrices.
//
// A Term is a string of operators of one particle kind, one per site, with a
// complex coefficient. A Sum is a duplicate free collection of terms kept
// sorted by their operator strings, so that insertion merges and cancels
// coefficients as they arise. Particle kinds are supplied by the pauli and
// fermi packages and enter as type parameters, so all kind dispatch is
// resolved at compile time.
package qop

import (
	"github.com/pkg/errors"

	"github.com/fumin/qop/phase"
)

var (
	// ErrLengthMismatch is returned when term lengths disagree.
	ErrLengthMismatch = errors.New("qop: length mismatch")
	// ErrMixedStorage is returned when multiplying a dense term by a sparse term.
	ErrMixedStorage = errors.New("qop: mixed dense and sparse storage")
	// ErrDimensionMismatch is returned when a matrix side is not a power of two.
	ErrDimensionMismatch = errors.New("qop: dimension mismatch")
)

// Kind is the capability of a single particle operator alphabet.
//
// An alphabet assigns its operators consecutive indices starting from the
// identity at index 0, and the zero value of an implementing type must be the
// identity operator. FromIndex and FromLabel ignore their receivers; they
// exist so that generic code can construct operators from any value of the
// type, typically its zero value.
type Kind[O any] interface {
	comparable
	FromIndex(int) (O, error)
	FromLabel(byte) (O, error)
	Index() int
	Label() byte
	Size() int
	Dim() int
	Mul(O) (O, phase.Phase)
	Entry(i, j int) phase.Phase
}

// PauliLike is the capability of single qubit Pauli alphabets, whose
// operators {I, X, Y, Z} are indexed 0 to 3 in that order and decompose into
// symplectic X and Z components. Both pauli encodings implement it.
type PauliLike[O any] interface {
	Kind[O]
	FromXZ(x, z bool) O
	HasX() bool
	HasZ() bool
}

// Complex is the constraint on term coefficients.
//
// Pauli products introduce factors of the imaginary unit, so real coefficient
// types cannot close the algebra. Phases are tracked by the exact phase
// package tables, and the 1/2^n factors of transforms and trace projections
// are powers of two, so exact inputs stay exact within these types.
type Complex interface {
	~complex64 | ~complex128
}
