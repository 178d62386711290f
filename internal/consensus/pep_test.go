package consensus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakmatch/consensusid/internal/model"
)

func pepIdent(runID string, hits ...model.PeptideHit) model.PeptideIdentification {
	return model.PeptideIdentification{
		RunID:             runID,
		ScoreType:         "Posterior Error Probability",
		HigherScoreBetter: false,
		Hits:              hits,
	}
}

func newPEPMatrix(t *testing.T, matrix string, p Params) *PEPMatrix {
	t.Helper()
	m, err := BuiltinMatrix(matrix)
	require.NoError(t, err)
	return &PEPMatrix{p: p, matrix: m, penalty: 5}
}

func TestPEPMatrix_IdenticalSequencesAccumulateSupport(t *testing.T) {
	ids := []model.PeptideIdentification{
		pepIdent("a", hit("PEPTIDE", 0.1)),
		pepIdent("b", hit("PEPTIDE", 0.3)),
	}

	pm := newPEPMatrix(t, "pam30ms", Params{NumberOfRuns: 2})
	res := pm.Apply(ids)
	require.Len(t, res.Hits, 1)
	// Support = ((1-0.1) + (1-0.3)) / 2.
	assert.InDelta(t, 0.8, res.Hits[0].Score, 1e-12)
	assert.Equal(t, ScoreTypePEPMatrix, res.ScoreType)
	assert.True(t, res.HigherScoreBetter)
	assertRanksMonotonic(t, res.Hits)
}

func TestPEPMatrix_AgreementBeatsLoneConfidentHit(t *testing.T) {
	ids := []model.PeptideIdentification{
		pepIdent("a", hit("DLSSWTA", 0.2)),
		pepIdent("b", hit("DLSSWTA", 0.3)),
		pepIdent("c", hit("HHHHHHH", 0.01)),
	}

	pm := newPEPMatrix(t, "identity", Params{NumberOfRuns: 3})
	res := pm.Apply(ids)
	require.Len(t, res.Hits, 2)
	// DLSSWTA: (0.8 + 0.7 + 0) / 3 = 0.5; HHHHHHH: 0.99 / 3 = 0.33.
	assert.Equal(t, "DLSSWTA", res.Hits[0].Sequence)
	assert.InDelta(t, 0.5, res.Hits[0].Score, 1e-12)
	assert.InDelta(t, 0.33, res.Hits[1].Score, 1e-12)
}

func TestPEPMatrix_SimilarSequenceLendsSupport(t *testing.T) {
	// Q and K are near-isobaric; pam30ms scores the swap positively, so
	// PEPTIDEQ earns cross-engine support from PEPTIDEK.
	ids := []model.PeptideIdentification{
		pepIdent("a", hit("PEPTIDEQ", 0.1)),
		pepIdent("b", hit("PEPTIDEK", 0.1)),
	}

	pm := newPEPMatrix(t, "pam30ms", Params{NumberOfRuns: 2})
	res := pm.Apply(ids)
	require.Len(t, res.Hits, 2)
	for _, h := range res.Hits {
		// Own run contributes 0.45, the similar sequence adds more.
		assert.Greater(t, h.Score, 0.45)
	}

	// With the identity matrix the cross support shrinks to similarity 7/8.
	pmID := newPEPMatrix(t, "identity", Params{NumberOfRuns: 2})
	resID := pmID.Apply(ids)
	assert.Less(t, resID.Hits[0].Score, res.Hits[0].Score)
	assert.Greater(t, resID.Hits[0].Score, 0.45)
}

func TestPEPMatrix_UnrelatedSequencesNoCrossSupport(t *testing.T) {
	ids := []model.PeptideIdentification{
		pepIdent("a", hit("AAAAA", 0.1)),
		pepIdent("b", hit("WWWWW", 0.1)),
	}

	pm := newPEPMatrix(t, "identity", Params{NumberOfRuns: 2})
	res := pm.Apply(ids)
	require.Len(t, res.Hits, 2)
	for _, h := range res.Hits {
		assert.InDelta(t, 0.45, h.Score, 1e-12)
	}
}

func TestPEPIons_SharedFragmentsLendSupport(t *testing.T) {
	// Same sequence modulo a trailing residue swap: most b ions coincide.
	ids := []model.PeptideIdentification{
		pepIdent("a", hit("PEPTIDEK", 0.1)),
		pepIdent("b", hit("PEPTIDER", 0.1)),
	}

	pi := &PEPIons{p: Params{NumberOfRuns: 2}, tolerance: 0.5, minShared: 2}
	res := pi.Apply(ids)
	require.Len(t, res.Hits, 2)
	for _, h := range res.Hits {
		assert.Greater(t, h.Score, 0.45, "cross support from shared b ions")
		assert.LessOrEqual(t, h.Score, 1.0)
	}
	assert.Equal(t, ScoreTypePEPIons, res.ScoreType)
}

func TestPEPIons_MinSharedGate(t *testing.T) {
	a := hit("GGGG", 0.1)
	b := hit("WWWW", 0.1)

	pi := &PEPIons{p: Params{NumberOfRuns: 2}, tolerance: 0.1, minShared: 2}
	assert.Zero(t, pi.similarity(a, b))
}

func TestPEPIons_EvidencePreferredOverTheory(t *testing.T) {
	a := model.PeptideHit{Sequence: "PEPTIDEK", Evidence: []model.FragmentPeak{
		{MZ: 100.0, Intensity: 1}, {MZ: 200.0, Intensity: 1}, {MZ: 300.0, Intensity: 1},
	}}
	b := model.PeptideHit{Sequence: "TOTALLYUNRELATED", Evidence: []model.FragmentPeak{
		{MZ: 100.1, Intensity: 1}, {MZ: 200.05, Intensity: 1}, {MZ: 300.2, Intensity: 1},
	}}

	pi := &PEPIons{p: Params{NumberOfRuns: 2}, tolerance: 0.5, minShared: 2}
	assert.InDelta(t, 1.0, pi.similarity(a, b), 1e-12)
}

func TestAlignScore_SelfAndGaps(t *testing.T) {
	m, err := BuiltinMatrix("identity")
	require.NoError(t, err)

	// Self alignment of 4 residues under identity = 4.
	assert.InDelta(t, 4.0, alignScore("PEPT", "PEPT", m, 5), 1e-12)
	// One extra residue costs one gap.
	assert.InDelta(t, 4.0-5.0, alignScore("PEPT", "PEPTK", m, 5), 1e-12)
}

func TestNormalizedSimilarity_Bounds(t *testing.T) {
	m, err := BuiltinMatrix("pam30ms")
	require.NoError(t, err)

	assert.Equal(t, 1.0, normalizedSimilarity("PEPTIDE", "PEPTIDE", m, 5))
	assert.Equal(t, 0.0, normalizedSimilarity("", "PEPTIDE", m, 5))

	s := normalizedSimilarity("PEPTIDEQ", "PEPTIDEK", m, 5)
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)

	// Grossly different sequences clamp at 0.
	assert.Equal(t, 0.0, normalizedSimilarity("WWWWWWWW", "GGGGGGGG", m, 5))
}

func TestBuiltinMatrix(t *testing.T) {
	id, err := BuiltinMatrix("identity")
	require.NoError(t, err)
	assert.Equal(t, 1.0, id.Score('A', 'A'))
	assert.Equal(t, 0.0, id.Score('A', 'R'))

	pam, err := BuiltinMatrix("pam30ms")
	require.NoError(t, err)
	assert.Equal(t, 6.0, pam.Score('A', 'A'))
	assert.Equal(t, 2.0, pam.Score('Q', 'K'), "Q/K raised for near-isobaric swap")
	assert.Equal(t, pam.Score('K', 'Q'), pam.Score('Q', 'K'))
	assert.Equal(t, "ARNDCQEGHILKMFPSTWYV", pam.Residues())

	_, err = BuiltinMatrix("blosum62")
	assert.Error(t, err)
}

func TestLoadMatrixFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.yaml")
	yaml := `
name: toy
residues: "AK"
rows:
  - [3, -1]
  - [-1, 4]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	m, err := LoadMatrixFile(path)
	require.NoError(t, err)
	assert.Equal(t, "toy", m.Name())
	assert.Equal(t, 3.0, m.Score('A', 'A'))
	assert.Equal(t, -1.0, m.Score('A', 'K'))
	assert.Equal(t, 7.0, m.SelfScore("AK"))
}

func TestLoadMatrixFile_Malformed(t *testing.T) {
	dir := t.TempDir()

	ragged := filepath.Join(dir, "ragged.yaml")
	require.NoError(t, os.WriteFile(ragged, []byte("residues: \"AK\"\nrows:\n  - [1]\n  - [0, 1]\n"), 0o644))
	_, err := LoadMatrixFile(ragged)
	assert.Error(t, err)

	_, err = LoadMatrixFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestTheoreticalIons(t *testing.T) {
	ions := theoreticalIons("GG")
	require.Len(t, ions, 2)
	// b1 = 57.02146 + proton; y1 = 57.02146 + water + proton.
	assert.InDelta(t, 58.0287, ions[0], 1e-3)
	assert.InDelta(t, 76.0393, ions[1], 1e-3)

	assert.Nil(t, theoreticalIons("K"))
	assert.Len(t, theoreticalIons("PEPTIDE"), 12)
}

func TestSharedIons(t *testing.T) {
	a := []float64{100, 200, 300}
	b := []float64{100.05, 250, 299.9}
	assert.Equal(t, 2, sharedIons(a, b, 0.2))
	assert.Equal(t, 0, sharedIons(a, b, 0.01))
}
