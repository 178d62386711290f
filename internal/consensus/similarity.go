package consensus

import (
	"github.com/peakmatch/consensusid/internal/model"
)

// similarityFunc scores how alike two peptide hits are, in [0, 1]. Identical
// sequences are 1 by definition and are short-circuited by the aggregator.
type similarityFunc func(a, b model.PeptideHit) float64

// applySimilarity is the shared aggregation of the PEP-based algorithms.
// Input scores must be posterior error probabilities (lower = better). Each
// distinct sequence p collects support from every run: the run's best value of
// sim(p, q) * (1 - PEP(q)) over its considered hits q. A similar but
// non-identical sequence therefore still lends positive evidence, weighted by
// its similarity. The consensus support is the per-run sum normalized by the
// expected number of runs, yielding a higher-is-better score in [0, 1].
func applySimilarity(ids []model.PeptideIdentification, p Params, sim similarityFunc, scoreType string) Result {
	if len(ids) == 0 {
		return Result{}
	}

	runs := p.NumberOfRuns
	if runs == 0 {
		runs = len(ids)
	}

	// Considered hits per run, PEP orientation (lower better).
	perRun := make([][]model.PeptideHit, len(ids))
	for i, id := range ids {
		pep := id
		pep.HigherScoreBetter = false
		perRun[i] = topHits(pep, p.ConsideredHits)
	}

	// Distinct sequences, first-seen order; representative hit from the
	// contributor with the lowest PEP.
	index := make(map[string]*seqEntry)
	var entries []*seqEntry
	for _, hits := range perRun {
		for _, h := range hits {
			e, ok := index[h.Sequence]
			if !ok {
				e = &seqEntry{hit: h, order: len(entries)}
				index[h.Sequence] = e
				entries = append(entries, e)
			} else if h.Score < e.hit.Score {
				e.hit = h
			}
		}
	}

	type pairKey struct{ a, b string }
	simCache := make(map[pairKey]float64)
	similarity := func(a, b model.PeptideHit) float64 {
		if a.Sequence == b.Sequence {
			return 1
		}
		key := pairKey{a.Sequence, b.Sequence}
		if a.Sequence > b.Sequence {
			key = pairKey{b.Sequence, a.Sequence}
		}
		if s, ok := simCache[key]; ok {
			return s
		}
		s := sim(a, b)
		simCache[key] = s
		return s
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		var support float64
		for _, hits := range perRun {
			var best float64
			for _, q := range hits {
				w := similarity(e.hit, q) * (1 - q.Score)
				if w > best {
					best = w
				}
			}
			support += best
		}
		scores[i] = support / float64(runs)
	}

	return Result{
		Hits:              finalize(entries, scores, true),
		ScoreType:         scoreType,
		HigherScoreBetter: true,
	}
}
