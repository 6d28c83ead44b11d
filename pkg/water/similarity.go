package water

import "math"

// DistanceScale is the decay constant of Similarity.
const DistanceScale = 10.0

// Distance is the Euclidean distance between two readings in raw units.
// Dimensions are not normalized, so wide-range parameters such as turbidity
// dominate.
func Distance(a, b Reading) float64 {
	va, vb := a.Vector(), b.Vector()
	var sum float64
	for i := range va {
		d := va[i] - vb[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Similarity maps the distance between a caller's reading and a lake
// baseline into (0, 1] with exponential decay. Identical readings score 1.
func Similarity(user, lake Reading) float64 {
	return ScaledSimilarity(user, lake, DistanceScale)
}

// ScaledSimilarity is Similarity with a caller-chosen decay constant.
// A non-positive scale falls back to DistanceScale.
func ScaledSimilarity(user, lake Reading, scale float64) float64 {
	if scale <= 0 {
		scale = DistanceScale
	}
	return math.Exp(-Distance(user, lake) / scale)
}
