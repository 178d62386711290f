package idxml

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/peakmatch/consensusid/internal/model"
)

// Write serializes runs and identifications as indented idXML. Every
// identification is attached to the run its RunID names; identifications
// referencing unknown runs are an error. RT/m/z attributes are emitted only
// when present.
func Write(w io.Writer, runs []model.IdentificationRun, ids []model.PeptideIdentification) error {
	doc := document{Version: "1.5"}
	index := make(map[string]int, len(runs))
	for _, r := range runs {
		index[r.ID] = len(doc.Runs)
		doc.Runs = append(doc.Runs, run{
			ID:                  r.ID,
			Date:                r.Date.Format(dateLayout),
			SearchEngine:        r.SearchEngine,
			SearchEngineVersion: r.SearchEngineVersion,
		})
	}

	for _, id := range ids {
		i, ok := index[id.RunID]
		if !ok {
			return eris.Errorf("idxml: identification references unknown run %q", id.RunID)
		}
		pid := peptideID{
			ScoreType:         id.ScoreType,
			HigherScoreBetter: id.HigherScoreBetter,
		}
		if id.HasRT {
			rt := id.RT
			pid.RT = &rt
		}
		if id.HasMZ {
			mz := id.MZ
			pid.MZ = &mz
		}
		for _, h := range id.Hits {
			pid.Hits = append(pid.Hits, pepHit{
				Sequence: h.Sequence,
				Score:    h.Score,
				Rank:     h.Rank,
				Charge:   h.Charge,
			})
		}
		doc.Runs[i].PeptideIDs = append(doc.Runs[i].PeptideIDs, pid)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return eris.Wrap(err, "idxml: write header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "idxml: encode")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return eris.Wrap(err, "idxml: write trailer")
	}
	return nil
}

// WriteFile writes an idXML file to disk.
func WriteFile(path string, runs []model.IdentificationRun, ids []model.PeptideIdentification) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "idxml: create")
	}
	if err := Write(f, runs, ids); err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "idxml: close")
}
