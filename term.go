package qop

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"github.com/fumin/qop/mat"
	"github.com/fumin/qop/phase"
)

// SiteOp is an operator placed at a site of a sparse term.
type SiteOp[O any] struct {
	Site int
	Op   O
}

// Term is a coefficient weighted string of operators, one per site.
// Storage is either dense, with identities included, or sparse, where only
// non-identity operators are kept. Operations return new terms; a term is
// never modified after construction, except for coefficient merging inside a
// Sum.
type Term[O Kind[O], C Complex] struct {
	n       int
	ops     []O
	siteOps []SiteOp[O]
	sparse  bool
	coeff   C
}

// New returns the dense term with the given operators and coefficient.
func New[O Kind[O], C Complex](ops []O, coeff C) *Term[O, C] {
	t := &Term[O, C]{n: len(ops), ops: slices.Clone(ops), coeff: coeff}
	return t
}

// Parse returns the dense term of a string of operator labels.
func Parse[O Kind[O], C Complex](s string, coeff C) (*Term[O, C], error) {
	var z O
	ops := make([]O, 0, len(s))
	for i := 0; i < len(s); i++ {
		op, err := z.FromLabel(s[i])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("site %d", i))
		}
		ops = append(ops, op)
	}
	return &Term[O, C]{n: len(ops), ops: ops, coeff: coeff}, nil
}

// NewSparse returns the sparse term of length n with the given operators.
// Explicit identities are dropped, since sparse storage keeps them implicit.
// Sites outside [0, n) fail with ErrLengthMismatch, and duplicate sites are
// rejected.
func NewSparse[O Kind[O], C Complex](n int, ops []SiteOp[O], coeff C) (*Term[O, C], error) {
	var id O
	siteOps := make([]SiteOp[O], 0, len(ops))
	for _, so := range ops {
		if so.Site < 0 || so.Site >= n {
			return nil, errors.Wrap(ErrLengthMismatch, fmt.Sprintf("site %d length %d", so.Site, n))
		}
		if so.Op == id {
			continue
		}
		siteOps = append(siteOps, so)
	}
	slices.SortFunc(siteOps, func(a, b SiteOp[O]) int { return a.Site - b.Site })
	for i := 1; i < len(siteOps); i++ {
		if siteOps[i].Site == siteOps[i-1].Site {
			return nil, errors.Errorf("duplicate site %d", siteOps[i].Site)
		}
	}
	return &Term[O, C]{n: n, siteOps: siteOps, sparse: true, coeff: coeff}, nil
}

// Len is the number of sites.
func (t *Term[O, C]) Len() int { return t.n }

// Coeff is the coefficient.
func (t *Term[O, C]) Coeff() C { return t.coeff }

// IsSparse reports whether the term uses sparse storage.
func (t *Term[O, C]) IsSparse() bool { return t.sparse }

// At returns the operator at the given site.
func (t *Term[O, C]) At(site int) O {
	if site < 0 || site >= t.n {
		panic(fmt.Sprintf("site %d length %d", site, t.n))
	}
	if !t.sparse {
		return t.ops[site]
	}
	i, ok := slices.BinarySearchFunc(t.siteOps, site, func(so SiteOp[O], s int) int { return so.Site - s })
	if !ok {
		var id O
		return id
	}
	return t.siteOps[i].Op
}

// Dense returns the term in dense storage.
func (t *Term[O, C]) Dense() *Term[O, C] {
	if !t.sparse {
		return New(t.ops, t.coeff)
	}
	ops := make([]O, t.n)
	for _, so := range t.siteOps {
		ops[so.Site] = so.Op
	}
	return &Term[O, C]{n: t.n, ops: ops, coeff: t.coeff}
}

// Sparse returns the term in sparse storage.
func (t *Term[O, C]) Sparse() *Term[O, C] {
	var id O
	siteOps := make([]SiteOp[O], 0)
	if t.sparse {
		siteOps = append(siteOps, t.siteOps...)
	} else {
		for i, op := range t.ops {
			if op == id {
				continue
			}
			siteOps = append(siteOps, SiteOp[O]{Site: i, Op: op})
		}
	}
	return &Term[O, C]{n: t.n, siteOps: siteOps, sparse: true, coeff: t.coeff}
}

// Mul returns the site-wise product of t and u.
// Per site phases fold into the coefficient, and a vanished product, such as
// a fermionic term hitting the zero operator, makes the coefficient zero.
// Terms of unequal length fail with ErrLengthMismatch, and terms of unequal
// storage mode with ErrMixedStorage.
func (t *Term[O, C]) Mul(u *Term[O, C]) (*Term[O, C], error) {
	if t.n != u.n {
		return nil, errors.Wrap(ErrLengthMismatch, fmt.Sprintf("%d %d", t.n, u.n))
	}
	if t.sparse != u.sparse {
		return nil, errors.Wrap(ErrMixedStorage, "")
	}
	if t.sparse {
		return t.mulSparse(u), nil
	}

	ops := make([]O, 0, t.n)
	ph := phase.One
	for i, top := range t.ops {
		op, p := top.Mul(u.ops[i])
		ops = append(ops, op)
		ph = ph.Mul(p)
	}
	coeff := t.coeff * u.coeff * C(ph.Complex128())
	return &Term[O, C]{n: t.n, ops: ops, coeff: coeff}, nil
}

func (t *Term[O, C]) mulSparse(u *Term[O, C]) *Term[O, C] {
	var id O
	siteOps := make([]SiteOp[O], 0, len(t.siteOps)+len(u.siteOps))
	ph := phase.One
	var i, j int
	for i < len(t.siteOps) && j < len(u.siteOps) {
		tso, uso := t.siteOps[i], u.siteOps[j]
		switch {
		case tso.Site < uso.Site:
			siteOps = append(siteOps, tso)
			i++
		case tso.Site > uso.Site:
			siteOps = append(siteOps, uso)
			j++
		default:
			op, p := tso.Op.Mul(uso.Op)
			ph = ph.Mul(p)
			// Products such as X*X land back on the implicit identity.
			if op != id {
				siteOps = append(siteOps, SiteOp[O]{Site: tso.Site, Op: op})
			}
			i, j = i+1, j+1
		}
	}
	siteOps = append(siteOps, t.siteOps[i:]...)
	siteOps = append(siteOps, u.siteOps[j:]...)

	coeff := t.coeff * u.coeff * C(ph.Complex128())
	return &Term[O, C]{n: t.n, siteOps: siteOps, sparse: true, coeff: coeff}
}

// Scale returns t with its coefficient multiplied by k.
func (t *Term[O, C]) Scale(k C) *Term[O, C] {
	s := t.clone()
	s.coeff *= k
	return s
}

// Neg returns t with its coefficient negated.
func (t *Term[O, C]) Neg() *Term[O, C] {
	return t.Scale(-1)
}

func (t *Term[O, C]) clone() *Term[O, C] {
	s := &Term[O, C]{n: t.n, sparse: t.sparse, coeff: t.coeff}
	s.ops = slices.Clone(t.ops)
	s.siteOps = slices.Clone(t.siteOps)
	return s
}

// Cmp compares the operator strings of t and u, ignoring coefficients.
// Shorter strings come first, and equal length strings are ordered as
// base-size integers with site 0 the most significant digit.
func (t *Term[O, C]) Cmp(u *Term[O, C]) int {
	if t.n != u.n {
		return t.n - u.n
	}
	for i := 0; i < t.n; i++ {
		if d := t.At(i).Index() - u.At(i).Index(); d != 0 {
			return d
		}
	}
	return 0
}

// Labels returns the operator string of t as a string of labels.
func (t *Term[O, C]) Labels() string {
	labels := make([]byte, 0, t.n)
	for i := 0; i < t.n; i++ {
		labels = append(labels, t.At(i).Label())
	}
	return string(labels)
}

// Matrix returns the matrix of t, which is the Kronecker product of the
// single site matrices scaled by the coefficient.
//
// Since every single site matrix has at most one nonzero entry per row, the
// product is assembled row by row with O(n*2^n) table lookups instead of a
// chain of Kronecker products.
func (t *Term[O, C]) Matrix() *mat.COO {
	ops := t.ops
	if t.sparse {
		ops = t.Dense().ops
	}

	rows := 1 << t.n
	m := mat.Zeros(rows, rows)
	coeff := complex64(t.coeff)
	for i := 0; i < rows; i++ {
		ph := phase.One
		col := 0
		for s, op := range ops {
			b := (i >> (t.n - 1 - s)) & 1
			switch {
			case op.Entry(b, 0) != phase.Zero:
				ph = ph.Mul(op.Entry(b, 0))
				col = col << 1
			case op.Entry(b, 1) != phase.Zero:
				ph = ph.Mul(op.Entry(b, 1))
				col = col<<1 | 1
			default:
				ph = phase.Zero
			}
			if ph == phase.Zero {
				break
			}
		}
		v := coeff * ph.Complex64()
		if v == 0 {
			continue
		}
		m.Data = append(m.Data, mat.Entry{V: v, Row: i, Col: col})
	}
	return m
}

func (t *Term[O, C]) String() string {
	return fmt.Sprintf("%v*%s", t.coeff, t.Labels())
}
