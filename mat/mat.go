// Package mat implements sparse complex matrices in coordinate list format,
// together with the dense linear algebra needed to verify operator sums:
// Kronecker products, exact eigendecomposition via gonum, and an iterative
// ground state solver for matrices too large to decompose densely.
package mat

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Entry is a nonzero matrix entry.
type Entry struct {
	V   complex64
	Row int
	Col int
}

// COO is a sparse matrix in coordinate list format.
// Data holds the nonzero entries in row major order.
type COO struct {
	rows int
	cols int
	Data []Entry
}

// M returns the sparse form of a dense matrix.
func M(dense [][]complex64) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]Entry, 0)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, Entry{V: v, Row: i, Col: j})
		}
	}
	return m
}

// Zeros returns the zero matrix of the given shape.
func Zeros(rows, cols int) *COO {
	return &COO{rows: rows, cols: cols, Data: make([]Entry, 0)}
}

// Identity returns the identity matrix of the given size.
func Identity(rows int) *COO {
	m := Zeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.Data = append(m.Data, Entry{V: 1, Row: i, Col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows {
		return false
	}
	if a.cols != b.cols {
		return false
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i, av := range a.Data {
		bv := b.Data[i]
		if av != bv {
			return false
		}
	}
	return true
}

// Slice returns the submatrix within the given row and column bounds.
// Negative bounds count from the end as in numpy.
func (m *COO) Slice(yBoundN, xBoundN [2]int) *COO {
	yBound, xBound := yBoundN, xBoundN
	for i := 0; i < 2; i++ {
		if yBound[i] < 0 {
			yBound[i] += m.rows
		}
		if xBound[i] < 0 {
			xBound[i] += m.cols
		}
	}

	s := &COO{rows: yBound[1] - yBound[0], cols: xBound[1] - xBound[0], Data: make([]Entry, 0)}
	for _, v := range m.Data {
		if v.Row < yBound[0] {
			continue
		}
		if v.Row >= yBound[1] {
			break
		}
		if v.Col < xBound[0] || v.Col >= xBound[1] {
			continue
		}
		s.Data = append(s.Data, Entry{V: v.V, Row: v.Row - yBound[0], Col: v.Col - xBound[0]})
	}
	return s
}

// Add updates a to a + c*b.
// a and b must have the same shape.
func (a *COO) Add(c complex64, b *COO) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("%dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	sum := make([]Entry, 0, len(a.Data)+len(b.Data))
	var i, j int
	for i < len(a.Data) && j < len(b.Data) {
		av, bv := a.Data[i], b.Data[j]
		switch rowMajor(av, bv) {
		case -1:
			sum = append(sum, av)
			i++
		case 1:
			sum = append(sum, Entry{V: c * bv.V, Row: bv.Row, Col: bv.Col})
			j++
		default:
			sum = append(sum, Entry{V: av.V + c*bv.V, Row: av.Row, Col: av.Col})
			i, j = i+1, j+1
		}
	}
	sum = append(sum, a.Data[i:]...)
	for _, bv := range b.Data[j:] {
		sum = append(sum, Entry{V: c * bv.V, Row: bv.Row, Col: bv.Col})
	}

	a.Data = slices.DeleteFunc(sum, func(v Entry) bool {
		return v.V == 0
	})
}

// Scale multiplies every entry of m by c.
func (m *COO) Scale(c complex64) {
	for i := range m.Data {
		m.Data[i].V *= c
	}
	m.Data = slices.DeleteFunc(m.Data, func(v Entry) bool {
		return v.V == 0
	})
}

// MulVec returns the matrix vector product m*x in dst.
func (m *COO) MulVec(dst, x []complex64) []complex64 {
	if m.cols != len(x) {
		panic(fmt.Sprintf("%dx%d %d", m.rows, m.cols, len(x)))
	}
	dst = dst[:0]
	for range m.rows {
		dst = append(dst, 0)
	}
	for _, v := range m.Data {
		dst[v.Row] += v.V * x[v.Col]
	}
	return dst
}

// MatMul returns the matrix product a*b.
func MatMul(a, b *COO) *COO {
	if a.cols != b.rows {
		panic(fmt.Sprintf("%dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	// bRowStart[i] is the index in b.Data where row i starts.
	bRowStart := make([]int, b.rows+1)
	for i := range bRowStart {
		bRowStart[i] = len(b.Data)
	}
	for i := len(b.Data) - 1; i >= 0; i-- {
		bRowStart[b.Data[i].Row] = i
	}
	for i := b.rows - 1; i >= 0; i-- {
		if bRowStart[i] > bRowStart[i+1] {
			bRowStart[i] = bRowStart[i+1]
		}
	}

	prod := make(map[[2]int]complex64)
	for _, av := range a.Data {
		for _, bv := range b.Data[bRowStart[av.Col]:bRowStart[av.Col+1]] {
			prod[[2]int{av.Row, bv.Col}] += av.V * bv.V
		}
	}

	c := Zeros(a.rows, b.cols)
	for yx, v := range prod {
		if v == 0 {
			continue
		}
		c.Data = append(c.Data, Entry{V: v, Row: yx[0], Col: yx[1]})
	}
	slices.SortFunc(c.Data, rowMajor)
	return c
}

// Kron updates a to the Kronecker product of a and b.
func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols
	a.rows, a.cols = rows, cols

	prevElemNum := len(a.Data)
	for i := prevElemNum - 1; i >= 0; i-- {
		av := a.Data[i]
		a.Data[i].V = 0
		for _, bv := range b.Data {
			ky := av.Row*b.rows + bv.Row
			kx := av.Col*b.cols + bv.Col
			a.Data = append(a.Data, Entry{V: av.V * bv.V, Row: ky, Col: kx})
		}
	}

	a.Data = slices.DeleteFunc(a.Data, func(v Entry) bool {
		return v.V == 0
	})
	slices.SortFunc(a.Data, rowMajor)
}

func (m *COO) Dense() [][]complex64 {
	dense := make([][]complex64, m.rows)
	for i := range dense {
		dense[i] = make([]complex64, m.cols)
	}

	for _, v := range m.Data {
		dense[v.Row][v.Col] = v.V
	}

	return dense
}

func (m *COO) String() string {
	entries := make(map[[2]int]complex64, len(m.Data))
	for _, v := range m.Data {
		entries[[2]int{v.Row, v.Col}] = v.V
	}

	lines := []string{}
	for i := 0; i < m.rows; i++ {
		cs := []string{}
		for j := 0; j < m.cols; j++ {
			v := entries[[2]int{i, j}]
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		l := strings.Join(cs, "\t")
		lines = append(lines, l)
	}

	return strings.Join(lines, "\n")
}

// ValVec is an eigenvalue and its eigenvector.
type ValVec struct {
	Val complex128
	Vec []complex128
}

// Eigen returns the eigendecomposition of m sorted by the real part of the
// eigenvalues. m must be real.
func (m *COO) Eigen() []ValVec {
	gnm := mat.NewDense(m.rows, m.cols, nil)
	gnm.Zero()
	for _, v := range m.Data {
		if imag(v.V) != 0 {
			panic("not real")
		}
		gnm.Set(v.Row, v.Col, float64(real(v.V)))
	}

	var eig mat.Eigen
	ok := eig.Factorize(gnm, mat.EigenRight)
	if !ok {
		panic("eig.Factorize failed")
	}
	vals := eig.Values(nil)
	vecs := mat.NewCDense(m.rows, m.cols, nil)
	eig.VectorsTo(vecs)

	vecsR, _ := vecs.Caps()
	vvs := make([]ValVec, 0, len(vals))
	for i, v := range vals {
		vec := make([]complex128, 0, vecsR)
		for j := 0; j < vecsR; j++ {
			vec = append(vec, vecs.At(j, i))
		}
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	slices.SortFunc(vvs, func(a, b ValVec) int { return cmp.Compare(real(a.Val), real(b.Val)) })

	return vvs
}

func rowMajor(a, b Entry) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

func format(v float32) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := fmt.Sprintf("%v", v)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}
