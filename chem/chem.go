// Package chem converts the raw integral tensors of electronic structure
// calculations into fermionic operator sums, and extracts occupation
// statistics from ground state vectors.
package chem

import (
	"math"
	"math/cmplx"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/qop"
	"github.com/fumin/qop/fermi"
	"github.com/fumin/qop/mat"
	"github.com/fumin/qop/phase"
)

// MolecularHamiltonian returns the fermionic sum
//
//	constant + sum_pq h1[p,q] a'_p a_q + sum_pqrs h2[p,q,r,s] a'_p a'_q a_r a_s
//
// where a'_p and a_p are the raising and lowering operators at site p. Each
// term places its mode operators positionally at their sites, so the formula
// holds as written for ascending indices; for descending indices the
// positional product differs from the written product by the anticommutation
// sign, which is assumed to be already folded into the tensor values.
// h1 must be of shape (n, n) and h2 of shape (n, n, n, n). Entries within
// tol of zero are skipped, and index collisions such as p==q in the two body
// part resolve through the fermionic operator table, so that a'_p a'_p drops
// out as zero.
func MolecularHamiltonian(constant complex64, h1, h2 *tensor.Dense, tol float64) (*qop.Sum[fermi.Fermi, complex64], error) {
	h1Shape, h2Shape := h1.Shape(), h2.Shape()
	if len(h1Shape) != 2 || h1Shape[0] != h1Shape[1] {
		return nil, errors.Errorf("h1 shape %v", h1Shape)
	}
	n := h1Shape[0]
	if len(h2Shape) != 4 {
		return nil, errors.Errorf("h2 shape %v", h2Shape)
	}
	for _, d := range h2Shape {
		if d != n {
			return nil, errors.Errorf("h2 shape %v, expected sides %d", h2Shape, n)
		}
	}

	s := qop.NewSum[fermi.Fermi, complex64]()
	if cmplx.Abs(complex128(constant)) > tol {
		s.Add(qop.New(make([]fermi.Fermi, n), constant))
	}
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			v := h1.At(p, q)
			if cmplx.Abs(complex128(v)) <= tol {
				continue
			}
			if t, ok := modeTerm(n, v, []modeOp{{p, fermi.Raise}, {q, fermi.Lower}}); ok {
				s.Add(t)
			}
		}
	}
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			for r := 0; r < n; r++ {
				for sIdx := 0; sIdx < n; sIdx++ {
					v := h2.At(p, q, r, sIdx)
					if cmplx.Abs(complex128(v)) <= tol {
						continue
					}
					mops := []modeOp{{p, fermi.Raise}, {q, fermi.Raise}, {r, fermi.Lower}, {sIdx, fermi.Lower}}
					if t, ok := modeTerm(n, v, mops); ok {
						s.Add(t)
					}
				}
			}
		}
	}
	return s, nil
}

type modeOp struct {
	site int
	op   fermi.Fermi
}

// modeTerm builds the dense term of the given mode operators applied left to
// right, multiplying collisions at the same site through the operator table.
// It reports false when the term vanishes, such as a'_p a'_p.
func modeTerm(n int, coeff complex64, mops []modeOp) (*qop.Term[fermi.Fermi, complex64], bool) {
	ops := make([]fermi.Fermi, n)
	for _, mo := range mops {
		op, ph := ops[mo.site].Mul(mo.op)
		if ph == phase.Zero {
			return nil, false
		}
		coeff *= ph.Complex64()
		ops[mo.site] = op
	}
	return qop.New(ops, coeff), true
}

// HoppingChain returns the Hamiltonian of spinless fermions on an open chain,
//
//	-t sum_i (a'_i a_{i+1} + a'_{i+1} a_i) + u sum_i n_i n_{i+1}
//
// with nearest neighbor hopping t and interaction u.
func HoppingChain(n int, t, u complex64) *qop.Sum[fermi.Fermi, complex64] {
	s := qop.NewSum[fermi.Fermi, complex64]()
	for i := 0; i < n-1; i++ {
		if hop, ok := modeTerm(n, -t, []modeOp{{i, fermi.Raise}, {i + 1, fermi.Lower}}); ok {
			s.Add(hop)
		}
		// a'_{i+1} a_i in site order is -a_i a'_{i+1}, so the sign flips.
		if hop, ok := modeTerm(n, t, []modeOp{{i, fermi.Lower}, {i + 1, fermi.Raise}}); ok {
			s.Add(hop)
		}
		if u != 0 {
			if nn, ok := modeTerm(n, u, []modeOp{{i, fermi.N}, {i + 1, fermi.N}}); ok {
				s.Add(nn)
			}
		}
	}
	return s
}

// Statistics are observables of a diagonalized Hamiltonian.
type Statistics struct {
	// Energy are the eigenvalues in ascending order.
	Energy []float64
	// Occupation is the mean ground state occupation per site.
	Occupation []float64
	// Filling is the total mean occupation divided by the number of sites.
	Filling float64
}

// GetStatistics computes occupation statistics from an eigendecomposition in
// the occupation number basis, where basis state i has site s occupied if bit
// n-1-s of i is set.
func GetStatistics(n int, vvs []mat.ValVec) (Statistics, error) {
	var stats Statistics
	for _, vv := range vvs {
		stats.Energy = append(stats.Energy, real(vv.Val))
	}
	ground := vvs[0]
	if len(ground.Vec) != 1<<n {
		return Statistics{}, errors.Errorf("%d %d", len(ground.Vec), 1<<n)
	}

	stats.Occupation = make([]float64, n)
	var totalProb float64
	for i, amplitude := range ground.Vec {
		probability := real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)
		totalProb += probability
		for s := 0; s < n; s++ {
			if (i>>(n-1-s))&1 == 1 {
				stats.Occupation[s] += probability
			}
		}
	}
	if math.Abs(totalProb-1) > 1e-3 {
		return Statistics{}, errors.Errorf("%f", totalProb)
	}

	for _, occ := range stats.Occupation {
		stats.Filling += occ
	}
	stats.Filling /= float64(n)
	return stats, nil
}
