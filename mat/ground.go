package mat

import (
	"cmp"
	"log"
	"math"
	"math/cmplx"
	"math/rand"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// GroundStateOptions are options for the iterative ground state solver.
type GroundStateOptions struct {
	maxIterations int
	tol           float64
}

// NewGroundStateOptions returns the default ground state solver options.
func NewGroundStateOptions() GroundStateOptions {
	opt := GroundStateOptions{}
	opt.maxIterations = 100000
	opt.tol = 1e-6
	return opt
}

// MaxIterations sets the maximum iterations.
func (opt GroundStateOptions) MaxIterations(i int) GroundStateOptions {
	opt.maxIterations = i
	return opt
}

// Tol sets the tolerance on the residual |Av - lambda*v|.
func (opt GroundStateOptions) Tol(tol float64) GroundStateOptions {
	opt.tol = tol
	return opt
}

// GroundState returns the smallest eigenvalue of a Hermitian matrix and its
// eigenvector, by power iteration on the shifted matrix hi*I - m, where hi is
// the upper Gershgorin bound of m. Unlike Eigen, it accepts complex input and
// touches only the nonzero entries, at the cost of being iterative.
//
// The eigenvector is normalized, with its first significant entry made real.
func GroundState(m *COO, options ...GroundStateOptions) (float64, []complex64, error) {
	opt := NewGroundStateOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	_, hi := gershgorin(m)

	vec := make([]complex64, m.cols)
	for i := range vec {
		vec[i] = complex(float32(rand.Float64()), float32(rand.Float64()))
	}
	normalizeVec(vec)
	mv := make([]complex64, 0, m.rows)

	throttler := newSkipThrottler(10 * time.Second)
	var lambda float64
	var converged bool
	for itrtn := 0; itrtn < opt.maxIterations; itrtn++ {
		mv = m.MulVec(mv, vec)

		// Rayleigh quotient <v|m|v> and residual |m*v - lambda*v|.
		lambda = 0
		for i, v := range vec {
			lambda += float64(real(conj(v) * mv[i]))
		}
		var residual float64
		for i, v := range vec {
			d := mv[i] - complex(float32(lambda), 0)*v
			residual += float64(real(d)*real(d) + imag(d)*imag(d))
		}
		residual = math.Sqrt(residual)
		if throttler.ok() {
			log.Printf("%d %f %f", itrtn, lambda, residual)
		}
		if residual < opt.tol {
			converged = true
			break
		}

		// vec = (hi*I - m) * vec, normalized.
		for i, v := range vec {
			vec[i] = complex(float32(hi), 0)*v - mv[i]
		}
		normalizeVec(vec)
	}
	if !converged {
		return 0, nil, errors.Errorf("no convergence after %d iterations", opt.maxIterations)
	}

	// Make the first significant entry real.
	var c complex64 = complex(1, 0)
	for _, v := range vec {
		if abs(v) > 1e-6 {
			c = v
			break
		}
	}
	for i := range vec {
		vec[i] /= c
	}
	normalizeVec(vec)

	return lambda, vec, nil
}

// Theorem A3, Bounds for the eigenvalues of a matrix, Kenneth R. Garren.
func gershgorin(m *COO) (float64, float64) {
	type circle struct {
		center complex64
		radius float32
	}
	circles := make([]circle, 0, m.rows+1)

	if len(m.Data) > 0 {
		var curRow int = m.Data[0].Row
		var curCenter complex64
		var curRadius float32
		for _, v := range m.Data {
			if v.Row != curRow {
				c := circle{center: curCenter, radius: curRadius}
				circles = append(circles, c)

				curRow = v.Row
				curCenter = 0
				curRadius = 0
			}

			if v.Row == v.Col {
				curCenter = v.V
			} else {
				curRadius += abs(v.V)
			}
		}
		// Last current row.
		c := circle{center: curCenter, radius: curRadius}
		circles = append(circles, c)
	}
	// Rows with no stored entries are zero rows, whose circle is the origin.
	if len(circles) < m.rows {
		circles = append(circles, circle{})
	}
	if len(circles) == 0 {
		return 0, 0
	}

	cMin := func(c circle) float32 {
		return real(c.center) - c.radius
	}
	cMax := func(c circle) float32 {
		return real(c.center) + c.radius
	}
	lo := slices.MinFunc(circles, func(a, b circle) int {
		return cmp.Compare(cMin(a), cMin(b))
	})
	hi := slices.MaxFunc(circles, func(a, b circle) int {
		return cmp.Compare(cMax(a), cMax(b))
	})
	return float64(cMin(lo)), float64(cMax(hi))
}

func normalizeVec(vec []complex64) {
	var norm float64
	for _, v := range vec {
		norm += float64(real(v)*real(v) + imag(v)*imag(v))
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= complex(float32(norm), 0)
	}
}

type skipThrottler struct {
	d    time.Duration
	last time.Time
}

func newSkipThrottler(d time.Duration) *skipThrottler {
	tt := &skipThrottler{d: d, last: time.Date(0, 0, 0, 0, 0, 0, 0, time.UTC)}
	return tt
}

func (tt *skipThrottler) ok() bool {
	now := time.Now()
	if now.Before(tt.last.Add(tt.d)) {
		return false
	}

	tt.last = time.Now()
	return true
}

func conj(c complex64) complex64 {
	return complex(real(c), -imag(c))
}

func abs(c complex64) float32 {
	return float32(cmplx.Abs(complex128(c)))
}
