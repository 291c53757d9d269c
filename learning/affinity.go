package learning

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// AffinityPropagation clusters rows by passing messages between them until a set of exemplars emerges. The number
// of clusters is not fixed in advance; the preference of each row is the median similarity.
type AffinityPropagation struct {
	Damping float64
	MaxIter int
	// Convergence is the number of iterations the exemplars must stay unchanged for.
	Convergence int
	Seed        int64
	Exemplars   [][]float64
}

func (m *AffinityPropagation) Fit(x mat.Matrix) ([]int, error) {
	p := points(x)
	n := len(p)
	if n == 0 {
		return nil, errors.New("cannot cluster an empty matrix")
	}
	if m.Damping < 0.5 || m.Damping >= 1 {
		m.Damping = 0.5
	}
	if m.MaxIter <= 0 {
		m.MaxIter = 200
	}
	if m.Convergence <= 0 {
		m.Convergence = 15
	}

	s := make([][]float64, n)
	all := make([]float64, 0, n*n)
	for i := range s {
		s[i] = make([]float64, n)
		for k := range s[i] {
			s[i][k] = -sqDist(p[i], p[k])
			all = append(all, s[i][k])
		}
	}
	sort.Float64s(all)
	preference := all[len(all)/2]
	if len(all)%2 == 0 {
		preference = (all[len(all)/2-1] + all[len(all)/2]) / 2
	}

	// Remove degeneracies with a small amount of seeded noise.
	rng := rand.New(rand.NewSource(m.Seed))
	for i := range s {
		s[i][i] = preference
		for k := range s[i] {
			s[i][k] += (1e-16*s[i][k] + 1e-300) * rng.NormFloat64()
		}
	}

	r := make([][]float64, n)
	a := make([][]float64, n)
	for i := range r {
		r[i] = make([]float64, n)
		a[i] = make([]float64, n)
	}

	var exemplars []int
	stable := 0
	for it := 0; it < m.MaxIter; it++ {
		for i := 0; i < n; i++ {
			first, second, idx := math.Inf(-1), math.Inf(-1), -1
			for k := 0; k < n; k++ {
				v := a[i][k] + s[i][k]
				if v > first {
					first, second, idx = v, first, k
				} else if v > second {
					second = v
				}
			}
			for k := 0; k < n; k++ {
				best := first
				if k == idx {
					best = second
				}
				r[i][k] = m.Damping*r[i][k] + (1-m.Damping)*(s[i][k]-best)
			}
		}

		for k := 0; k < n; k++ {
			var sum float64
			for i := 0; i < n; i++ {
				if i == k {
					sum += r[k][k]
				} else {
					sum += math.Max(0, r[i][k])
				}
			}
			for i := 0; i < n; i++ {
				var v float64
				if i == k {
					v = sum - r[k][k]
				} else {
					v = math.Min(0, sum-math.Max(0, r[i][k]))
				}
				a[i][k] = m.Damping*a[i][k] + (1-m.Damping)*v
			}
		}

		var next []int
		for k := 0; k < n; k++ {
			if a[k][k]+r[k][k] > 0 {
				next = append(next, k)
			}
		}
		if len(next) > 0 && equalInts(next, exemplars) {
			stable++
		} else {
			stable = 0
		}
		exemplars = next
		if stable >= m.Convergence {
			break
		}
	}

	if len(exemplars) == 0 {
		exemplars = []int{medoid(p)}
	}
	m.Exemplars = make([][]float64, len(exemplars))
	for c, k := range exemplars {
		m.Exemplars[c] = append([]float64(nil), p[k]...)
	}
	return assign(p, m.Exemplars), nil
}

func (m *AffinityPropagation) Assign(x mat.Matrix) []int {
	return assign(points(x), m.Exemplars)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// medoid returns the row with the smallest total distance to every other row.
func medoid(p [][]float64) int {
	best, idx := math.Inf(1), 0
	for i := range p {
		var d float64
		for j := range p {
			d += sqDist(p[i], p[j])
		}
		if d < best {
			best, idx = d, i
		}
	}
	return idx
}
