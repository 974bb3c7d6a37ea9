package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	kmeansMaxIterations = 100
	kmeansInits         = 4
	kmeansTolerance     = 1e-6
)

// kmeansResult is one converged partition of the batch.
type kmeansResult struct {
	assignments []int
	inertia     float64
}

// runKMeans partitions the rows of data into k clusters, running several
// seeded initializations and keeping the lowest-inertia result. All tie-breaks
// are index-ordered, so output is reproducible for a given rng state.
func runKMeans(data *mat.Dense, k int, rng *rand.Rand) kmeansResult {
	n, _ := data.Dims()
	if k > n {
		k = n
	}

	best := kmeansResult{inertia: math.Inf(1)}
	for init := 0; init < kmeansInits; init++ {
		res := kmeansOnce(data, k, rng)
		if res.inertia < best.inertia {
			best = res
		}
	}
	return best
}

func kmeansOnce(data *mat.Dense, k int, rng *rand.Rand) kmeansResult {
	n, _ := data.Dims()
	centroids := initCentroids(data, k, rng)
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i := 0; i < n; i++ {
			c := nearestCentroid(data.RawRowView(i), centroids)
			if c != assignments[i] {
				assignments[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		next := updateCentroids(data, assignments, k)
		shift := 0.0
		for c := 0; c < k; c++ {
			shift += squaredDistance(centroids.RawRowView(c), next.RawRowView(c))
		}
		centroids = next
		if shift < kmeansTolerance {
			break
		}
	}

	inertia := 0.0
	for i := 0; i < n; i++ {
		inertia += squaredDistance(data.RawRowView(i), centroids.RawRowView(assignments[i]))
	}
	return kmeansResult{assignments: assignments, inertia: inertia}
}

// initCentroids seeds k centroids with k-means++: the first uniformly, the
// rest weighted by squared distance to the nearest chosen centroid.
func initCentroids(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	distances := make([]float64, n)
	for c := 1; c < k; c++ {
		total := 0.0
		for i := 0; i < n; i++ {
			minDist := math.Inf(1)
			for j := 0; j < c; j++ {
				if dist := squaredDistance(data.RawRowView(i), centroids.RawRowView(j)); dist < minDist {
					minDist = dist
				}
			}
			distances[i] = minDist
			total += minDist
		}

		if total == 0 {
			// All points coincide with a chosen centroid.
			centroids.SetRow(c, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		cum := 0.0
		chosen := n - 1
		for i, dist := range distances {
			cum += dist
			if cum >= target {
				chosen = i
				break
			}
		}
		centroids.SetRow(c, data.RawRowView(chosen))
	}
	return centroids
}

func nearestCentroid(point []float64, centroids *mat.Dense) int {
	k, _ := centroids.Dims()
	best, bestDist := 0, math.Inf(1)
	for c := 0; c < k; c++ {
		if dist := squaredDistance(point, centroids.RawRowView(c)); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

func updateCentroids(data *mat.Dense, assignments []int, k int) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	counts := make([]int, k)

	for i := 0; i < n; i++ {
		c := assignments[i]
		row := data.RawRowView(i)
		for j := 0; j < d; j++ {
			centroids.Set(c, j, centroids.At(c, j)+row[j])
		}
		counts[c]++
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		for j := 0; j < d; j++ {
			centroids.Set(c, j, centroids.At(c, j)/float64(counts[c]))
		}
	}
	return centroids
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
