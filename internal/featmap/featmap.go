// Package featmap reads and writes the JSON feature-map container: point-like
// features (or externally formed consensus groups of them) with peptide
// identifications attached. For these shapes the grouping decision was
// already made by whatever produced the container, so the pipeline rescores
// each feature's identification set in place instead of matching.
package featmap

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/peakmatch/consensusid/internal/consensus"
	"github.com/peakmatch/consensusid/internal/model"
)

// Map is the container document.
type Map struct {
	Runs              []model.IdentificationRun `json:"runs"`
	Features          []Feature                 `json:"features,omitempty"`
	ConsensusFeatures []ConsensusFeature        `json:"consensus_features,omitempty"`
}

// Feature is one point-like feature with its attached identifications.
type Feature struct {
	RT              float64                       `json:"rt"`
	MZ              float64                       `json:"mz"`
	Intensity       float64                       `json:"intensity"`
	Charge          int                           `json:"charge,omitempty"`
	Identifications []model.PeptideIdentification `json:"identifications,omitempty"`
}

// ConsensusFeature is an externally formed group of features sharing one
// identification set.
type ConsensusFeature struct {
	RT              float64                       `json:"rt"`
	MZ              float64                       `json:"mz"`
	Quality         float64                       `json:"quality,omitempty"`
	Elements        []Feature                     `json:"elements,omitempty"`
	Identifications []model.PeptideIdentification `json:"identifications,omitempty"`
}

// IdentificationSets returns every attached identification set in document
// order: plain features first, then consensus features. The returned slices
// alias the map's contents.
func (m *Map) IdentificationSets() [][]model.PeptideIdentification {
	sets := make([][]model.PeptideIdentification, 0, len(m.Features)+len(m.ConsensusFeatures))
	for i := range m.Features {
		sets = append(sets, m.Features[i].Identifications)
	}
	for i := range m.ConsensusFeatures {
		sets = append(sets, m.ConsensusFeatures[i].Identifications)
	}
	return sets
}

// ReplaceIdentifications installs the rescored results produced by the
// pipeline, in the order IdentificationSets returned them. Each non-empty
// result replaces the feature's identifications with a single consensus
// identification at the feature position; empty results clear them.
func (m *Map) ReplaceIdentifications(run model.IdentificationRun, results []consensus.Result) error {
	if len(results) != len(m.Features)+len(m.ConsensusFeatures) {
		return eris.Errorf("featmap: got %d results for %d features",
			len(results), len(m.Features)+len(m.ConsensusFeatures))
	}

	replace := func(rt, mz float64, res consensus.Result) []model.PeptideIdentification {
		if len(res.Hits) == 0 {
			return nil
		}
		return []model.PeptideIdentification{{
			RunID:             run.ID,
			RT:                rt,
			MZ:                mz,
			HasRT:             true,
			HasMZ:             true,
			ScoreType:         res.ScoreType,
			HigherScoreBetter: res.HigherScoreBetter,
			Hits:              res.Hits,
		}}
	}

	for i := range m.Features {
		f := &m.Features[i]
		f.Identifications = replace(f.RT, f.MZ, results[i])
	}
	for i := range m.ConsensusFeatures {
		cf := &m.ConsensusFeatures[i]
		cf.Identifications = replace(cf.RT, cf.MZ, results[len(m.Features)+i])
	}
	m.Runs = []model.IdentificationRun{run}
	return nil
}

// Read parses a feature-map document.
func Read(r io.Reader) (*Map, error) {
	var m Map
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, eris.Wrap(err, "featmap: decode")
	}
	return &m, nil
}

// ReadFile reads a feature-map file from disk.
func ReadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "featmap: open")
	}
	defer f.Close()
	return Read(f)
}

// Write serializes the map as indented JSON.
func Write(w io.Writer, m *Map) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(m), "featmap: encode")
}

// WriteFile writes a feature-map file to disk.
func WriteFile(path string, m *Map) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "featmap: create")
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "featmap: close")
}
