package consensus

import (
	"gonum.org/v1/gonum/floats"

	"github.com/peakmatch/consensusid/internal/model"
)

// ScoreTypeRanks labels the rank-based consensus score: a value in (0, 1],
// higher is better, 1 meaning top-ranked by every expected engine.
const ScoreTypeRanks = "Consensus_ranks"

// Ranks computes a score-type-agnostic consensus from each engine's own hit
// ranking. Within an engine the hit at rank r (1 = best) contributes a linear
// rank score (K + 1 - r) / K, where K is the considered-hits cap (or the
// longest observed hit list when unlimited). The consensus score of a sequence
// is the sum of its per-engine rank scores divided by the expected number of
// runs, so missing engines dilute but never invert the ordering.
type Ranks struct {
	p Params
}

func (r *Ranks) Name() string { return "ranks" }

func (r *Ranks) Apply(ids []model.PeptideIdentification) Result {
	if len(ids) == 0 {
		return Result{}
	}

	k := r.p.ConsideredHits
	if k == 0 {
		for _, id := range ids {
			if len(id.Hits) > k {
				k = len(id.Hits)
			}
		}
	}
	if k == 0 {
		return Result{}
	}

	runs := r.p.NumberOfRuns
	if runs == 0 {
		runs = len(ids)
	}

	// Per sequence, each engine contributes its best rank score once.
	index := make(map[string]*seqEntry)
	var entries []*seqEntry
	for _, id := range ids {
		hits := topHits(id, r.p.ConsideredHits)
		seen := make(map[string]bool, len(hits))
		for i, h := range hits {
			if seen[h.Sequence] {
				continue
			}
			seen[h.Sequence] = true
			rankScore := float64(k-i) / float64(k)
			e, ok := index[h.Sequence]
			if !ok {
				// First proposer is the representative; engine scores are
				// not comparable here, so there is no "best" contributor.
				e = &seqEntry{hit: h, order: len(entries)}
				index[h.Sequence] = e
				entries = append(entries, e)
			}
			e.scores = append(e.scores, rankScore)
		}
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = floats.Sum(e.scores) / float64(runs)
	}

	return Result{
		Hits:              finalize(entries, scores, true),
		ScoreType:         ScoreTypeRanks,
		HigherScoreBetter: true,
	}
}
