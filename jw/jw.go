// Package jw implements the Jordan-Wigner transform from fermionic operator
// strings to qubit operator strings.
//
// The transform encodes fermionic exchange statistics by attaching a parity
// string of Pauli Z operators over all sites before a raising or lowering
// operator. The output Pauli encoding is the type parameter of each call, so
// that either the index encoding or the symplectic bit pair encoding can be
// selected without any process wide state.
//
// References:
//   - Uber das Paulische Aquivalenzverbot, P. Jordan and E. Wigner, Zeitschrift fur Physik 47, 631 (1928).
package jw

import (
	"fmt"

	"github.com/fumin/qop"
	"github.com/fumin/qop/fermi"
	"github.com/fumin/qop/phase"
)

// Term transforms a single fermionic term into a sum of Pauli terms.
//
// The per site images are
//
//	I       -> I
//	N       -> (I - Z)/2
//	E       -> (I + Z)/2
//	Raise   -> Z_{<j} (X - iY)/2
//	Lower   -> Z_{<j} (X + iY)/2
//	0       -> the empty sum
//	Z = N-E -> -Z
//
// where Z_{<j} is the parity string over all sites before j. Sites are
// processed left to right, splitting every accumulated Pauli term in two when
// the image has two branches, and inserting results into a canonical sum so
// that duplicates merge as they arise.
func Term[P qop.PauliLike[P], C qop.Complex](t *qop.Term[fermi.Fermi, C]) *qop.Sum[P, C] {
	var z P
	pX := z.FromXZ(true, false)
	pY := z.FromXZ(true, true)
	pZ := z.FromXZ(false, true)

	n := t.Len()
	acc := qop.SumOf(qop.New(make([]P, n), t.Coeff()))
	for j := 0; j < n; j++ {
		// branches are the (operator at j, coefficient factor, parity)
		// branches of the site's image.
		var branches []branch[P, C]
		switch f := t.At(j); f {
		case fermi.I:
			continue
		case fermi.N:
			branches = []branch[P, C]{{factor: 0.5}, {op: pZ, factor: -0.5}}
		case fermi.E:
			branches = []branch[P, C]{{factor: 0.5}, {op: pZ, factor: 0.5}}
		case fermi.Raise:
			branches = []branch[P, C]{{op: pX, factor: 0.5, parity: true}, {op: pY, factor: -0.5i, parity: true}}
		case fermi.Lower:
			branches = []branch[P, C]{{op: pX, factor: 0.5, parity: true}, {op: pY, factor: 0.5i, parity: true}}
		case fermi.Zero:
			return qop.NewSum[P, C]()
		case fermi.Z:
			branches = []branch[P, C]{{op: pZ, factor: -1}}
		default:
			panic(fmt.Sprintf("%s", f))
		}

		next := qop.NewSum[P, C]()
		for _, at := range acc.Terms() {
			for _, br := range branches {
				next.Add(expand(at, j, br, pZ))
			}
		}
		acc = next
	}
	return acc
}

// Transform transforms a fermionic sum term by term, merging all resulting
// Pauli terms into one canonical sum.
func Transform[P qop.PauliLike[P], C qop.Complex](s *qop.Sum[fermi.Fermi, C]) *qop.Sum[P, C] {
	out := qop.NewSum[P, C]()
	for _, t := range s.Terms() {
		for _, pt := range Term[P](t).Terms() {
			out.Add(pt)
		}
	}
	return out
}

type branch[P qop.PauliLike[P], C qop.Complex] struct {
	op     P
	factor C
	parity bool
}

// expand applies one branch of a site image to an accumulated Pauli term:
// the operator at site j is overwritten, and for a parity branch every site
// before j is right-multiplied by Z through the Pauli table, folding the
// arising phases into the coefficient.
func expand[P qop.PauliLike[P], C qop.Complex](t *qop.Term[P, C], j int, br branch[P, C], pZ P) *qop.Term[P, C] {
	ops := make([]P, t.Len())
	coeff := t.Coeff() * br.factor
	for i := 0; i < t.Len(); i++ {
		ops[i] = t.At(i)
	}
	if br.parity {
		for i := 0; i < j; i++ {
			op, ph := ops[i].Mul(pZ)
			if ph == phase.Zero {
				panic(fmt.Sprintf("site %d", i))
			}
			ops[i] = op
			coeff *= C(ph.Complex128())
		}
	}
	ops[j] = br.op
	return qop.New(ops, coeff)
}
