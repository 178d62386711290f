package consensus

import (
	"github.com/peakmatch/consensusid/internal/model"
)

// Best scores each distinct peptide sequence with the best score any engine
// gave it. All engines must use the same score type and orientation; the
// orientation of the first identification decides min vs max. Ties keep
// first-seen engine order.
type Best struct {
	p Params
}

func (b *Best) Name() string { return "best" }

func (b *Best) Apply(ids []model.PeptideIdentification) Result {
	if len(ids) == 0 {
		return Result{}
	}
	warnMixedOrientation(b.Name(), ids)
	higherBetter := ids[0].HigherScoreBetter

	entries := collectBySequence(ids, b.p.ConsideredHits, higherBetter)
	scores := make([]float64, len(entries))
	for i, e := range entries {
		best := e.scores[0]
		for _, s := range e.scores[1:] {
			if (higherBetter && s > best) || (!higherBetter && s < best) {
				best = s
			}
		}
		scores[i] = best
	}

	return Result{
		Hits:              finalize(entries, scores, higherBetter),
		ScoreType:         ids[0].ScoreType,
		HigherScoreBetter: higherBetter,
	}
}
