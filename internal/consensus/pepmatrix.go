package consensus

import (
	"github.com/peakmatch/consensusid/internal/model"
)

// ScoreTypePEPMatrix labels the PEPMatrix consensus support score in [0, 1],
// higher is better.
const ScoreTypePEPMatrix = "Consensus_PEPMatrix"

// PEPMatrix combines posterior error probabilities across engines, letting a
// similar (not identical) sequence proposed by another engine contribute
// evidence. Similarity comes from global sequence alignment under a
// substitution matrix, normalized against self-alignment.
//
// Input scores must be PEPs; this is an unchecked contract.
type PEPMatrix struct {
	p       Params
	matrix  *SubstitutionMatrix
	penalty int
}

func (pm *PEPMatrix) Name() string { return "PEPMatrix" }

func (pm *PEPMatrix) Apply(ids []model.PeptideIdentification) Result {
	return applySimilarity(ids, pm.p, func(a, b model.PeptideHit) float64 {
		return normalizedSimilarity(a.Sequence, b.Sequence, pm.matrix, pm.penalty)
	}, ScoreTypePEPMatrix)
}
