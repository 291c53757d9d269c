package eval

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type silhouette struct{}
type calinskiHarabasz struct{}
type daviesBouldin struct{}

var (
	// Silhouette is the mean silhouette coefficient of all rows. Assignments with fewer than two clusters, or with
	// every row in its own cluster, score -1.
	Silhouette = silhouette{}
	// CalinskiHarabasz is the ratio of between-cluster to within-cluster dispersion.
	CalinskiHarabasz = calinskiHarabasz{}
	// DaviesBouldin is the mean similarity of each cluster with its most similar cluster.
	DaviesBouldin = daviesBouldin{}
)

// groups returns the rows of each cluster, indexed by label. Labels must be non-negative.
func groups(labels []int) [][]int {
	var g [][]int
	for i, l := range labels {
		for len(g) <= l {
			g = append(g, nil)
		}
		g[l] = append(g[l], i)
	}
	// Drop labels that were never assigned.
	var c [][]int
	for _, rows := range g {
		if len(rows) > 0 {
			c = append(c, rows)
		}
	}
	return c
}

func row(x mat.Matrix, i int) []float64 {
	_, c := x.Dims()
	v := make([]float64, c)
	for j := range v {
		v[j] = x.At(i, j)
	}
	return v
}

func centroid(x mat.Matrix, rows []int) []float64 {
	_, c := x.Dims()
	m := make([]float64, c)
	for _, i := range rows {
		floats.Add(m, row(x, i))
	}
	floats.Scale(1/float64(len(rows)), m)
	return m
}

func (silhouette) Name() string {
	return "Silhouette"
}

func (silhouette) Score(x mat.Matrix, labels []int) float64 {
	n, _ := x.Dims()
	g := groups(labels)
	if len(g) < 2 || len(g) >= n {
		return -1
	}
	points := make([][]float64, n)
	for i := range points {
		points[i] = row(x, i)
	}

	var sum float64
	for _, own := range g {
		if len(own) == 1 {
			// A row alone in its cluster scores 0.
			continue
		}
		for _, i := range own {
			var a float64
			for _, j := range own {
				a += floats.Distance(points[i], points[j], 2)
			}
			a /= float64(len(own) - 1)

			b := -1.0
			for _, other := range g {
				if other[0] == own[0] {
					continue
				}
				var d float64
				for _, j := range other {
					d += floats.Distance(points[i], points[j], 2)
				}
				d /= float64(len(other))
				if b < 0 || d < b {
					b = d
				}
			}
			if m := max(a, b); m > 0 {
				sum += (b - a) / m
			}
		}
	}
	return sum / float64(n)
}

func (calinskiHarabasz) Name() string {
	return "Calinski-Harabasz"
}

func (calinskiHarabasz) Score(x mat.Matrix, labels []int) float64 {
	n, _ := x.Dims()
	g := groups(labels)
	k := len(g)
	if k < 2 || k >= n {
		return 0
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	mean := centroid(x, all)

	var between, within float64
	for _, rows := range g {
		c := centroid(x, rows)
		d := floats.Distance(c, mean, 2)
		between += float64(len(rows)) * d * d
		for _, i := range rows {
			d := floats.Distance(row(x, i), c, 2)
			within += d * d
		}
	}
	if within == 0 {
		return 1
	}
	return between * float64(n-k) / (within * float64(k-1))
}

func (daviesBouldin) Name() string {
	return "Davies-Bouldin"
}

func (daviesBouldin) Score(x mat.Matrix, labels []int) float64 {
	n, _ := x.Dims()
	g := groups(labels)
	k := len(g)
	if k < 2 || k >= n {
		return 0
	}
	centroids := make([][]float64, k)
	scatter := make([]float64, k)
	for c, rows := range g {
		centroids[c] = centroid(x, rows)
		for _, i := range rows {
			scatter[c] += floats.Distance(row(x, i), centroids[c], 2)
		}
		scatter[c] /= float64(len(rows))
	}

	var sum float64
	for i := 0; i < k; i++ {
		var worst float64
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			d := floats.Distance(centroids[i], centroids[j], 2)
			if d == 0 {
				continue
			}
			if r := (scatter[i] + scatter[j]) / d; r > worst {
				worst = r
			}
		}
		sum += worst
	}
	return sum / float64(k)
}
