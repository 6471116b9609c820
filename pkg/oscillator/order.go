package oscillator

import (
	"math"
)

// OrderFromSums computes the Kuramoto order parameter from raw sine/cosine
// sums over n vertices: the magnitude of the circular mean, in [0,1]. The
// parallel advance phase produces these sums as per-worker partials.
func OrderFromSums(sumSin, sumCos float64, n int) float64 {
	if n == 0 {
		return 0
	}
	meanSin := sumSin / float64(n)
	meanCos := sumCos / float64(n)

	order := math.Sqrt(meanSin*meanSin + meanCos*meanCos)
	if order > 1 {
		// Floating-point noise can push a fully aligned population a hair
		// above 1.
		order = 1
	}
	return order
}

// OrderParameter computes the order parameter over a vertex subset using the
// cached sine/cosine values. Returns 0 for an empty subset.
func OrderParameter(st *Store, subset []int) float64 {
	sumSin, sumCos := 0.0, 0.0
	for _, v := range subset {
		sumSin += st.Sin(v)
		sumCos += st.Cos(v)
	}
	return OrderFromSums(sumSin, sumCos, len(subset))
}

// GlobalOrder computes the order parameter over every vertex in the store.
func GlobalOrder(st *Store) float64 {
	sumSin, sumCos := 0.0, 0.0
	for v := 0; v < st.Len(); v++ {
		sumSin += st.Sin(v)
		sumCos += st.Cos(v)
	}
	return OrderFromSums(sumSin, sumCos, st.Len())
}
