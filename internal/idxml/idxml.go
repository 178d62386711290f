// Package idxml reads and writes the subset of the idXML container the
// consensus pipeline needs: identification runs with their peptide
// identifications and hits. It is the flat-list persistence collaborator of
// the pipeline; it performs no scoring.
package idxml

import "encoding/xml"

// dateLayout is the timestamp format used for run date attributes.
const dateLayout = "2006-01-02T15:04:05"

// document mirrors the on-disk layout.
type document struct {
	XMLName xml.Name `xml:"IdXML"`
	Version string   `xml:"version,attr"`
	Runs    []run    `xml:"IdentificationRun"`
}

type run struct {
	ID                  string      `xml:"id,attr"`
	Date                string      `xml:"date,attr"`
	SearchEngine        string      `xml:"search_engine,attr"`
	SearchEngineVersion string      `xml:"search_engine_version,attr"`
	PeptideIDs          []peptideID `xml:"PeptideIdentification"`
}

type peptideID struct {
	ScoreType         string   `xml:"score_type,attr"`
	HigherScoreBetter bool     `xml:"higher_score_better,attr"`
	RT                *float64 `xml:"RT,attr"`
	MZ                *float64 `xml:"MZ,attr"`
	Hits              []pepHit `xml:"PeptideHit"`
}

type pepHit struct {
	Sequence string  `xml:"sequence,attr"`
	Score    float64 `xml:"score,attr"`
	Rank     int     `xml:"rank,attr"`
	Charge   int     `xml:"charge,attr"`
}
