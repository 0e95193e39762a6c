package logo

import "sort"

// Rank scores every candidate and returns a new slice sorted by descending
// score. Ties keep their discovery order.
func Rank(candidates []Candidate, companyName string) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Score = Score(ranked[i], companyName)
	}
	SortByScore(ranked)
	return ranked
}

// SortByScore stable-sorts candidates in place, highest score first.
func SortByScore(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

// SelectBest returns the highest scoring candidate. The first of equal
// scores wins.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}

// FilterByFormat returns the candidates of the given format in their
// original order.
func FilterByFormat(candidates []Candidate, format Format) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if c.Format == format {
			out = append(out, c)
		}
	}
	return out
}
