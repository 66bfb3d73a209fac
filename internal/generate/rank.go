package generate

import (
	"math"
	"sort"
)

// minCoverage floors attention mass before the logarithm.
const minCoverage = 1e-12

// LengthPenalty returns ((SoftLength+length)/(SoftLength+1))^LengthAlpha.
func (c DecodeConfig) LengthPenalty(length int) float64 {
	return math.Pow((c.SoftLength+float64(length))/(c.SoftLength+1), c.LengthAlpha)
}

// Coverage returns the mean over source positions of log(min(m_j, 1)), where
// m_j is the attention mass position j received over all steps. A hypothesis
// that attends to every position scores 0; starved positions pull it down.
func Coverage(attn [][]float64, srcLen int) float64 {
	if srcLen == 0 {
		return 0
	}
	mass := make([]float64, srcLen)
	for _, step := range attn {
		for j := 0; j < srcLen && j < len(step); j++ {
			mass[j] += step[j]
		}
	}
	total := 0.0
	for _, m := range mass {
		total += math.Log(math.Max(math.Min(m, 1), minCoverage))
	}
	return total / float64(srcLen)
}

// RankScore combines the length-normalized log-probability of h with its
// weighted attention coverage.
func (c DecodeConfig) RankScore(h *Hypothesis, srcLen int) float64 {
	return h.LogProb/c.LengthPenalty(len(h.Tokens)) + c.CoverageWeight*Coverage(h.Attention, srcLen)
}

// Rank sets the Rank of every hypothesis and sorts them best first. Empty
// hypotheses come after all others, since they are rendered as a low-scored
// placeholder. Equal ranks keep their completion order.
func (c DecodeConfig) Rank(hyps []Hypothesis, srcLen int) {
	for i := range hyps {
		hyps[i].Rank = c.RankScore(&hyps[i], srcLen)
	}
	sort.SliceStable(hyps, func(i, j int) bool {
		ei, ej := len(hyps[i].Tokens) == 0, len(hyps[j].Tokens) == 0
		if ei != ej {
			return ej
		}
		return hyps[i].Rank > hyps[j].Rank
	})
}
