package featmap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakmatch/consensusid/internal/consensus"
	"github.com/peakmatch/consensusid/internal/model"
)

const sampleMap = `{
  "runs": [
    {"id": "run_a", "search_engine": "MasterFind", "search_engine_version": "2.6", "date": "2024-03-15T12:00:00Z"},
    {"id": "run_b", "search_engine": "DeepQuery", "search_engine_version": "0.9", "date": "2024-03-15T13:00:00Z"}
  ],
  "features": [
    {
      "rt": 100.0, "mz": 500.0, "intensity": 1e6, "charge": 2,
      "identifications": [
        {"run_id": "run_a", "rt": 100.0, "has_rt": true, "mz": 500.0, "has_mz": true,
         "score_type": "score", "higher_score_better": true,
         "hits": [{"sequence": "PEPTIDE", "score": 0.8, "rank": 1, "charge": 2}]},
        {"run_id": "run_b", "rt": 100.0, "has_rt": true, "mz": 500.0, "has_mz": true,
         "score_type": "score", "higher_score_better": true,
         "hits": [{"sequence": "PEPTIDE", "score": 0.6, "rank": 1, "charge": 2}]}
      ]
    },
    {"rt": 200.0, "mz": 600.0, "intensity": 5e4}
  ],
  "consensus_features": [
    {
      "rt": 300.0, "mz": 700.0, "quality": 0.9,
      "identifications": [
        {"run_id": "run_a", "score_type": "score", "higher_score_better": true,
         "hits": [{"sequence": "OTHER", "score": 0.5, "rank": 1, "charge": 2}]}
      ]
    }
  ]
}`

func TestRead(t *testing.T) {
	m, err := Read(strings.NewReader(sampleMap))
	require.NoError(t, err)

	require.Len(t, m.Runs, 2)
	require.Len(t, m.Features, 2)
	require.Len(t, m.ConsensusFeatures, 1)
	assert.Equal(t, 1e6, m.Features[0].Intensity)
	require.Len(t, m.Features[0].Identifications, 2)
	assert.Equal(t, "run_b", m.Features[0].Identifications[1].RunID)
}

func TestIdentificationSets_Order(t *testing.T) {
	m, err := Read(strings.NewReader(sampleMap))
	require.NoError(t, err)

	sets := m.IdentificationSets()
	require.Len(t, sets, 3)
	assert.Len(t, sets[0], 2)
	assert.Empty(t, sets[1])
	require.Len(t, sets[2], 1)
	assert.Equal(t, "OTHER", sets[2][0].Hits[0].Sequence)
}

func TestReplaceIdentifications(t *testing.T) {
	m, err := Read(strings.NewReader(sampleMap))
	require.NoError(t, err)

	run := model.IdentificationRun{ID: "consensus_1", SearchEngine: "consensusid"}
	results := []consensus.Result{
		{Hits: []model.PeptideHit{{Sequence: "PEPTIDE", Score: 0.7, Rank: 1, Charge: 2}},
			ScoreType: "score", HigherScoreBetter: true},
		{},
		{Hits: []model.PeptideHit{{Sequence: "OTHER", Score: 0.5, Rank: 1, Charge: 2}},
			ScoreType: "score", HigherScoreBetter: true},
	}

	require.NoError(t, m.ReplaceIdentifications(run, results))

	require.Len(t, m.Runs, 1)
	assert.Equal(t, "consensus_1", m.Runs[0].ID)

	require.Len(t, m.Features[0].Identifications, 1)
	got := m.Features[0].Identifications[0]
	assert.Equal(t, "consensus_1", got.RunID)
	assert.InDelta(t, 100.0, got.RT, 1e-9)
	assert.InDelta(t, 0.7, got.Hits[0].Score, 1e-12)

	assert.Nil(t, m.Features[1].Identifications)
	require.Len(t, m.ConsensusFeatures[0].Identifications, 1)
	assert.InDelta(t, 300.0, m.ConsensusFeatures[0].Identifications[0].RT, 1e-9)
}

func TestReplaceIdentifications_CountMismatch(t *testing.T) {
	m, err := Read(strings.NewReader(sampleMap))
	require.NoError(t, err)

	err = m.ReplaceIdentifications(model.IdentificationRun{ID: "x"}, []consensus.Result{{}})
	assert.Error(t, err)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	m, err := Read(strings.NewReader(sampleMap))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m))

	again, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestRead_Malformed(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"))
	assert.Error(t, err)
}
