package native

import (
	"strconv"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/learning"
)

var (
	// RegressionKinds are the regression candidates, in the order they are compared.
	RegressionKinds = []string{"lr", "ridge", "knn", "dummy"}
	// ClassificationKinds are the classification candidates, in the order they are compared.
	ClassificationKinds = []string{"knn", "nc", "dummy"}
	// ClusteringKinds are the clustering candidates the provider knows about. Only some of them can assign new data.
	ClusteringKinds = []string{"kmeans", "ap", "birch", "hclust", "dbscan"}
)

// Names of the candidate kinds, for display.
var Names = map[string]string{
	"lr":     "Linear Regression",
	"ridge":  "Ridge Regression",
	"knn":    "K Neighbors",
	"dummy":  "Dummy",
	"nc":     "Nearest Centroid",
	"kmeans": "K-Means Clustering",
	"ap":     "Affinity Propagation",
	"birch":  "Birch Clustering",
	"hclust": "Agglomerative Clustering",
	"dbscan": "Density-Based Spatial Clustering",
}

// tuneK is the grid of neighbourhood sizes searched when tuning nearest neighbour candidates.
var tuneK = []int{1, 3, 5, 7, 9, 11, 15, 21}

func (p *Provider) regressor(kind string) (learning.Regressor, bool) {
	switch kind {
	case "lr":
		return &learning.LinearRegression{}, true
	case "ridge":
		return &learning.LinearRegression{Alpha: 1}, true
	case "knn":
		return &learning.KNNRegressor{K: learning.DefaultK}, true
	case "dummy":
		return &learning.DummyRegressor{}, true
	}
	return nil, false
}

func (p *Provider) classifier(kind string) (learning.Classifier, bool) {
	switch kind {
	case "knn":
		return &learning.KNNClassifier{K: learning.DefaultK}, true
	case "nc":
		return &learning.NearestCentroid{}, true
	case "dummy":
		return &learning.DummyClassifier{}, true
	}
	return nil, false
}

func (p *Provider) clusterer(kind string) (learning.Clusterer, bool) {
	switch kind {
	case "kmeans":
		return &learning.KMeans{K: p.clusters, Seed: p.seed}, true
	case "ap":
		return &learning.AffinityPropagation{Seed: p.seed}, true
	case "birch":
		return &learning.Birch{K: p.clusters, Seed: p.seed}, true
	}
	return nil, false
}

func known(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func float(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// params describes the hyperparameters of a model.
func params(kind string, model interface{}) autolearn.ExperimentConfig {
	c := autolearn.ExperimentConfig{{Name: "kind", Value: kind}}
	switch m := model.(type) {
	case *learning.LinearRegression:
		c = append(c, autolearn.Param{Name: "alpha", Value: float(m.Alpha)})
	case *learning.KNNRegressor:
		c = append(c, autolearn.Param{Name: "n_neighbors", Value: strconv.Itoa(m.K)})
	case *learning.KNNClassifier:
		c = append(c, autolearn.Param{Name: "n_neighbors", Value: strconv.Itoa(m.K)})
	case *learning.KMeans:
		c = append(c,
			autolearn.Param{Name: "n_clusters", Value: strconv.Itoa(m.K)},
			autolearn.Param{Name: "random_state", Value: strconv.FormatInt(m.Seed, 10)})
	case *learning.AffinityPropagation:
		c = append(c,
			autolearn.Param{Name: "damping", Value: float(m.Damping)},
			autolearn.Param{Name: "n_clusters", Value: strconv.Itoa(len(m.Exemplars))})
	case *learning.Birch:
		c = append(c,
			autolearn.Param{Name: "threshold", Value: float(m.Threshold)},
			autolearn.Param{Name: "n_clusters", Value: strconv.Itoa(m.K)},
			autolearn.Param{Name: "subclusters", Value: strconv.Itoa(len(m.Subclusters))})
	}
	return c
}
