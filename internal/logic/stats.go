package logic

// AverageHandicap returns the mean of the group's known handicaps. Members
// without a handicap are skipped; ok is false when no member has one.
func AverageHandicap(g Group) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, p := range g.Members {
		if p.Handicap != nil {
			sum += *p.Handicap
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
