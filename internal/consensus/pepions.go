package consensus

import (
	"sort"

	"github.com/peakmatch/consensusid/internal/model"
)

// ScoreTypePEPIons labels the PEPIons consensus support score in [0, 1],
// higher is better.
const ScoreTypePEPIons = "Consensus_PEPIons"

// PEPIons combines posterior error probabilities across engines like
// PEPMatrix, but measures cross-engine similarity by fragment-ion overlap
// instead of sequence-string alignment: the fraction of b/y ion peaks two
// candidate sequences share within a mass tolerance. Observed fragment
// evidence attached to a hit takes precedence over the theoretical pattern.
//
// Input scores must be PEPs; this is an unchecked contract.
type PEPIons struct {
	p         Params
	tolerance float64
	minShared int
}

func (pi *PEPIons) Name() string { return "PEPIons" }

func (pi *PEPIons) Apply(ids []model.PeptideIdentification) Result {
	return applySimilarity(ids, pi.p, pi.similarity, ScoreTypePEPIons)
}

// similarity is shared-ion count over the smaller pattern size; pairs sharing
// fewer than minShared peaks count as unrelated.
func (pi *PEPIons) similarity(a, b model.PeptideHit) float64 {
	ionsA := ionPattern(a)
	ionsB := ionPattern(b)
	if len(ionsA) == 0 || len(ionsB) == 0 {
		return 0
	}

	shared := sharedIons(ionsA, ionsB, pi.tolerance)
	if shared < pi.minShared {
		return 0
	}

	smaller := len(ionsA)
	if len(ionsB) < smaller {
		smaller = len(ionsB)
	}
	return float64(shared) / float64(smaller)
}

// ionPattern returns the hit's fragmentation pattern as ascending m/z values:
// attached evidence peaks when the engine reported them, the theoretical
// singly charged b/y series otherwise.
func ionPattern(h model.PeptideHit) []float64 {
	if len(h.Evidence) > 0 {
		mzs := make([]float64, len(h.Evidence))
		for i, p := range h.Evidence {
			mzs[i] = p.MZ
		}
		sort.Float64s(mzs)
		return mzs
	}
	return theoreticalIons(h.Sequence)
}
