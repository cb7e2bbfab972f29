package light

// Clamp forces v into the inclusive range [lo, hi].
// Callers must pass lo <= hi.
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
