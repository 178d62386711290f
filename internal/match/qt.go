// Package match groups identifications from different runs that plausibly
// refer to the same physical spectrum, using precursor RT and m/z tolerance
// windows. Clustering is QT-style (quality threshold): clusters are built
// around a center record and bounded by the tolerance window around that
// center, so group diameter can never exceed twice the tolerance.
package match

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/peakmatch/consensusid/internal/model"
)

// candidate is a potential cluster around one center record.
type candidate struct {
	center  int   // flat index of the center record
	members []int // flat indices, center included, at most one per run
	dist    float64
}

// record is the flattened view of one input Positioned with bookkeeping.
type record struct {
	model.Positioned
	order    int // position in flattened input, for deterministic ties
	assigned bool
}

// Group clusters the per-run record sets by RT/m/z proximity. Both tolerances
// are absolute (RT units and Da). Matching is charge-agnostic. Every input
// record appears in exactly one output group, and no group holds two records
// from the same run. The matcher assumes positions are present; callers
// validate via model.Project first.
func Group(sets [][]model.Positioned, rtDelta, mzDelta float64) []model.Group {
	var records []record
	for _, set := range sets {
		for _, p := range set {
			records = append(records, record{Positioned: p, order: len(records)})
		}
	}
	if len(records) == 0 {
		return nil
	}

	var groups []model.Group
	remaining := len(records)
	for remaining > 0 {
		best := bestCandidate(records, sets, rtDelta, mzDelta)
		// Member order follows flattened input order (run-major), so group
		// contents do not depend on which member won as center.
		sort.Ints(best.members)
		g := model.Group{Members: make([]model.Positioned, 0, len(best.members))}
		for _, idx := range best.members {
			records[idx].assigned = true
			g.Members = append(g.Members, records[idx].Positioned)
			remaining--
		}
		g.Centroid()
		groups = append(groups, g)
	}

	zap.L().Debug("match: grouping complete",
		zap.Int("records", len(records)),
		zap.Int("groups", len(groups)),
	)

	return groups
}

// bestCandidate builds the candidate cluster around every unassigned record
// and returns the best one: largest member count, then smallest normalized
// distance sum, then earliest center.
func bestCandidate(records []record, sets [][]model.Positioned, rtDelta, mzDelta float64) candidate {
	best := candidate{center: -1}
	for i := range records {
		if records[i].assigned {
			continue
		}
		cand := buildCandidate(records, i, len(sets), rtDelta, mzDelta)
		if better(cand, best) {
			best = cand
		}
	}
	return best
}

// buildCandidate assembles the cluster centered on records[center]: from each
// other run, the nearest unassigned record inside the tolerance window around
// the center.
func buildCandidate(records []record, center, runs int, rtDelta, mzDelta float64) candidate {
	c := records[center]
	cand := candidate{center: center, members: []int{center}}

	for run := 0; run < runs; run++ {
		if run == c.RunIndex {
			continue
		}
		nearest := -1
		nearestDist := math.Inf(1)
		for j := range records {
			r := &records[j]
			if r.assigned || r.RunIndex != run {
				continue
			}
			if math.Abs(r.RT-c.RT) > rtDelta || math.Abs(r.MZ-c.MZ) > mzDelta {
				continue
			}
			d := normDist(c.Positioned, r.Positioned, rtDelta, mzDelta)
			if d < nearestDist || (d == nearestDist && nearest >= 0 && r.order < records[nearest].order) {
				nearest = j
				nearestDist = d
			}
		}
		if nearest >= 0 {
			cand.members = append(cand.members, nearest)
			cand.dist += nearestDist
		}
	}
	return cand
}

// normDist is the tolerance-normalized distance between two records. Zero
// tolerance dimensions only admit exact matches, which have distance 0.
func normDist(a, b model.Positioned, rtDelta, mzDelta float64) float64 {
	var dRT, dMZ float64
	if rtDelta > 0 {
		dRT = math.Abs(a.RT-b.RT) / rtDelta
	}
	if mzDelta > 0 {
		dMZ = math.Abs(a.MZ-b.MZ) / mzDelta
	}
	return dRT + dMZ
}

// better reports whether a wins over b under the cluster quality ordering.
func better(a, b candidate) bool {
	if b.center < 0 {
		return true
	}
	if len(a.members) != len(b.members) {
		return len(a.members) > len(b.members)
	}
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.center < b.center
}
