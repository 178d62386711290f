// Package consensus implements the pluggable scoring algorithms that combine
// one group's per-engine peptide hits into a single re-ranked, re-scored hit
// list. Five algorithms share the Algorithm contract: best, average, ranks,
// PEPMatrix and PEPIons.
//
// The PEP-based algorithms require posterior error probabilities as input
// scores (lower is better, in [0,1]); best and average require a comparable
// score type across engines. Neither precondition is validated at runtime:
// violating inputs produce degraded consensus scores, not errors.
package consensus

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/peakmatch/consensusid/internal/config"
	"github.com/peakmatch/consensusid/internal/model"
)

// Params is the configuration shared by all algorithms. ConsideredHits caps
// how many top hits per engine participate (0 = unlimited); NumberOfRuns is
// the number of engines expected, used to normalize scores when not every
// engine contributed a hit for a group.
type Params struct {
	ConsideredHits int
	NumberOfRuns   int
}

// Result is one group's consensus hit list with the score semantics of the
// algorithm that produced it.
type Result struct {
	Hits              []model.PeptideHit
	ScoreType         string
	HigherScoreBetter bool
}

// Algorithm combines the hits of one group's identifications into a single
// consensus hit list. Implementations are stateless beyond configuration and
// safe for concurrent use across groups.
type Algorithm interface {
	Name() string
	Apply(ids []model.PeptideIdentification) Result
}

// New builds the algorithm selected in cfg, bound to the given run count.
func New(cfg config.ConsensusConfig, numberOfRuns int) (Algorithm, error) {
	p := Params{ConsideredHits: cfg.ConsideredHits, NumberOfRuns: numberOfRuns}
	switch cfg.Algorithm {
	case config.AlgorithmBest:
		return &Best{p: p}, nil
	case config.AlgorithmAverage:
		return &Average{p: p}, nil
	case config.AlgorithmRanks:
		return &Ranks{p: p}, nil
	case config.AlgorithmPEPMatrix:
		m, err := matrixFor(cfg.PEPMatrix)
		if err != nil {
			return nil, err
		}
		return &PEPMatrix{p: p, matrix: m, penalty: cfg.PEPMatrix.Penalty}, nil
	case config.AlgorithmPEPIons:
		return &PEPIons{p: p, tolerance: cfg.PEPIons.MassTolerance, minShared: cfg.PEPIons.MinSharedIons}, nil
	default:
		return nil, eris.Errorf("consensus: unknown algorithm %q", cfg.Algorithm)
	}
}

func matrixFor(cfg config.PEPMatrixConfig) (*SubstitutionMatrix, error) {
	if cfg.MatrixFile != "" {
		return LoadMatrixFile(cfg.MatrixFile)
	}
	return BuiltinMatrix(cfg.Matrix)
}

// topHits returns a copy of the identification's hits, ordered best-first by
// the identification's own score orientation and truncated to considered
// (0 = unlimited). Sorting is stable so input order breaks ties.
func topHits(id model.PeptideIdentification, considered int) []model.PeptideHit {
	hits := append([]model.PeptideHit(nil), id.Hits...)
	sort.SliceStable(hits, func(i, j int) bool {
		if id.HigherScoreBetter {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Score < hits[j].Score
	})
	if considered > 0 && len(hits) > considered {
		hits = hits[:considered]
	}
	return hits
}

// seqEntry accumulates per-sequence evidence across engines. Order is the
// first-seen position, used as the deterministic tie-break when sorting.
type seqEntry struct {
	hit    model.PeptideHit
	scores []float64
	order  int
}

// collectBySequence groups the considered hits of all identifications by
// peptide sequence, first-seen order preserved. The representative hit (charge,
// evidence) comes from the contributor with the best score under the given
// orientation.
func collectBySequence(ids []model.PeptideIdentification, considered int, higherBetter bool) []*seqEntry {
	index := make(map[string]*seqEntry)
	var entries []*seqEntry
	for _, id := range ids {
		for _, h := range topHits(id, considered) {
			e, ok := index[h.Sequence]
			if !ok {
				e = &seqEntry{hit: h, order: len(entries)}
				index[h.Sequence] = e
				entries = append(entries, e)
			} else if (higherBetter && h.Score > e.hit.Score) || (!higherBetter && h.Score < e.hit.Score) {
				e.hit = h
			}
			e.scores = append(e.scores, h.Score)
		}
	}
	return entries
}

// finalize orders the rescored entries best-first (stable by first-seen order
// on score ties) and assigns consecutive ranks starting at 1.
func finalize(entries []*seqEntry, scores []float64, higherBetter bool) []model.PeptideHit {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			if higherBetter {
				return scores[idx[a]] > scores[idx[b]]
			}
			return scores[idx[a]] < scores[idx[b]]
		}
		return entries[idx[a]].order < entries[idx[b]].order
	})

	hits := make([]model.PeptideHit, len(idx))
	for rank, i := range idx {
		h := entries[i].hit
		h.Score = scores[i]
		h.Rank = rank + 1
		hits[rank] = h
	}
	return hits
}

// warnMixedOrientation logs when identifications disagree on score
// orientation. The contract leaves mixed inputs to the caller; this is the
// only hardening applied.
func warnMixedOrientation(algo string, ids []model.PeptideIdentification) {
	if len(ids) == 0 {
		return
	}
	first := ids[0].HigherScoreBetter
	for _, id := range ids[1:] {
		if id.HigherScoreBetter != first {
			zap.L().Debug("consensus: identifications disagree on score orientation",
				zap.String("algorithm", algo),
				zap.String("run_id", id.RunID),
			)
			return
		}
	}
}
