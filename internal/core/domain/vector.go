package domain

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// Vectors of different length or zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Matches reports whether md satisfies every equality in f.
func (f Filter) Matches(md Metadata) bool {
	for k, v := range f {
		if md.Get(k) != v {
			return false
		}
	}
	return true
}
