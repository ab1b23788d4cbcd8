package address

import (
	"sort"

	"run-planner/internal/planner/model"
)

// Similarity is the share of input tokens present in the candidate's token set.
// Duplicate input tokens count once each. Empty input scores 0.
func Similarity(input []string, candidate string) float64 {
	if len(input) == 0 {
		return 0
	}
	set := tokenSet(Tokenize(candidate))
	hit := 0
	for _, t := range input {
		if _, ok := set[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(input))
}

// rank orders candidates by similarity, best first. The sort is stable so
// equal scores keep the order the data source returned them in.
func rank(cands []model.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Similarity > cands[j].Similarity
	})
}

// accepted reports whether the best candidate meets the (inclusive) threshold.
func accepted(cands []model.Candidate, threshold float64) bool {
	return len(cands) > 0 && cands[0].Similarity >= threshold
}
