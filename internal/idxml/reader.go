package idxml

import (
	"encoding/xml"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"

	"github.com/peakmatch/consensusid/internal/model"
)

// Read parses idXML content into runs and their identifications. Missing RT
// or m/z attributes are preserved as absent (HasRT/HasMZ unset) and surface
// later as the pipeline's input-shape error, not here.
func Read(r io.Reader) ([]model.IdentificationRun, []model.PeptideIdentification, error) {
	var doc document
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	if err := d.Decode(&doc); err != nil {
		return nil, nil, eris.Wrap(err, "idxml: decode")
	}

	var runs []model.IdentificationRun
	var ids []model.PeptideIdentification
	for _, rn := range doc.Runs {
		date, err := time.Parse(dateLayout, rn.Date)
		if err != nil && rn.Date != "" {
			return nil, nil, eris.Wrapf(err, "idxml: run %q has malformed date", rn.ID)
		}
		runs = append(runs, model.IdentificationRun{
			ID:                  rn.ID,
			SearchEngine:        rn.SearchEngine,
			SearchEngineVersion: rn.SearchEngineVersion,
			Date:                date,
		})

		for _, pid := range rn.PeptideIDs {
			id := model.PeptideIdentification{
				RunID:             rn.ID,
				ScoreType:         pid.ScoreType,
				HigherScoreBetter: pid.HigherScoreBetter,
			}
			if pid.RT != nil {
				id.RT = *pid.RT
				id.HasRT = true
			}
			if pid.MZ != nil {
				id.MZ = *pid.MZ
				id.HasMZ = true
			}
			for _, h := range pid.Hits {
				id.Hits = append(id.Hits, model.PeptideHit{
					Sequence: h.Sequence,
					Score:    h.Score,
					Rank:     h.Rank,
					Charge:   h.Charge,
				})
			}
			ids = append(ids, id)
		}
	}
	return runs, ids, nil
}

// ReadFile reads an idXML file from disk.
func ReadFile(path string) ([]model.IdentificationRun, []model.PeptideIdentification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "idxml: open")
	}
	defer f.Close()
	return Read(f)
}
