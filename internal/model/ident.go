package model

import (
	"fmt"
	"time"
)

// IdentificationRun represents one search-engine execution that produced
// peptide identifications. The consensus pipeline synthesizes exactly one
// fresh run for its output.
type IdentificationRun struct {
	ID                  string    `json:"id"`
	SearchEngine        string    `json:"search_engine"`
	SearchEngineVersion string    `json:"search_engine_version"`
	Date                time.Time `json:"date"`
}

// PeptideIdentification is one spectrum's result from one identification run.
// RT and m/z are optional in the containers but required for correspondence
// matching; HasRT/HasMZ record presence.
type PeptideIdentification struct {
	RunID             string       `json:"run_id"`
	RT                float64      `json:"rt"`
	MZ                float64      `json:"mz"`
	HasRT             bool         `json:"has_rt"`
	HasMZ             bool         `json:"has_mz"`
	ScoreType         string       `json:"score_type"`
	HigherScoreBetter bool         `json:"higher_score_better"`
	Hits              []PeptideHit `json:"hits"`
}

// PeptideHit is one candidate peptide-sequence call within an identification.
// Score semantics depend on the owning identification's ScoreType (posterior
// error probability for the PEP-based consensus algorithms). Evidence carries
// observed fragment peaks when the search engine reported them.
type PeptideHit struct {
	Sequence string         `json:"sequence"`
	Score    float64        `json:"score"`
	Rank     int            `json:"rank"`
	Charge   int            `json:"charge"`
	Evidence []FragmentPeak `json:"evidence,omitempty"`
}

// FragmentPeak is a single observed fragment-ion peak.
type FragmentPeak struct {
	MZ        float64 `json:"mz"`
	Intensity float64 `json:"intensity"`
}

// ConsensusResult is the final artifact of a consensus run: one synthesized
// identification run plus the ordered consensus identifications, with group
// bookkeeping for reporting.
type ConsensusResult struct {
	Run             IdentificationRun       `json:"run"`
	Identifications []PeptideIdentification `json:"identifications"`
	Groups          int                     `json:"groups"`
	Singletons      int                     `json:"singletons"`
}

// MissingPositionError reports an identification that lacks the RT or m/z
// required for correspondence matching. It is a fatal input-shape condition
// and names the offending run.
type MissingPositionError struct {
	RunID string
}

func (e *MissingPositionError) Error() string {
	return fmt.Sprintf("model: identification without RT and/or m/z in run %q", e.RunID)
}

// Clone returns a deep copy of the identification; the consensus pipeline
// never mutates its inputs.
func (p PeptideIdentification) Clone() PeptideIdentification {
	out := p
	out.Hits = make([]PeptideHit, len(p.Hits))
	for i, h := range p.Hits {
		out.Hits[i] = h
		if len(h.Evidence) > 0 {
			out.Hits[i].Evidence = append([]FragmentPeak(nil), h.Evidence...)
		}
	}
	return out
}
