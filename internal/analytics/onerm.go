package analytics

// EstimatedOneRepMax estimates a one-rep max from a multi-rep set
// using the Brzycki formula: weight × 36 / (37 − reps).
// The formula is undefined or unreliable outside 1-36 reps, so the
// weight is returned unmodified for rep counts outside that range.
func EstimatedOneRepMax(weightLbs float64, reps int) float64 {
	if reps <= 0 || reps >= 37 {
		return weightLbs
	}
	return weightLbs * (36 / float64(37-reps))
}
