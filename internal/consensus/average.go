package consensus

import (
	"gonum.org/v1/gonum/stat"

	"github.com/peakmatch/consensusid/internal/model"
)

// Average scores each distinct peptide sequence with the arithmetic mean of
// the scores contributed by the engines that proposed it. Sequences proposed
// by fewer engines are not penalized beyond the averaging itself. All engines
// must use the same score type and orientation.
type Average struct {
	p Params
}

func (a *Average) Name() string { return "average" }

func (a *Average) Apply(ids []model.PeptideIdentification) Result {
	if len(ids) == 0 {
		return Result{}
	}
	warnMixedOrientation(a.Name(), ids)
	higherBetter := ids[0].HigherScoreBetter

	entries := collectBySequence(ids, a.p.ConsideredHits, higherBetter)
	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = stat.Mean(e.scores, nil)
	}

	return Result{
		Hits:              finalize(entries, scores, higherBetter),
		ScoreType:         ids[0].ScoreType,
		HigherScoreBetter: higherBetter,
	}
}
