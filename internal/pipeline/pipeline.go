// Package pipeline drives the consensus computation: validate input
// positions, project identifications into matcher records, group them by
// RT/mz proximity, score every group with the configured consensus algorithm,
// and assemble a single freshly stamped output run.
package pipeline

import (
	"context"
	"errors"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peakmatch/consensusid/internal/config"
	"github.com/peakmatch/consensusid/internal/consensus"
	"github.com/peakmatch/consensusid/internal/match"
	"github.com/peakmatch/consensusid/internal/model"
)

// ErrIncompatibleInput marks fatal input-shape errors: the input cannot be
// consensus-processed at all (e.g. identifications without RT or m/z when
// position-based matching is required). No output is produced.
var ErrIncompatibleInput = errors.New("pipeline: incompatible input data")

// Pipeline computes consensus identifications. Configuration and the injected
// provenance source are read-only for the duration of a run, so one Pipeline
// is safe for repeated use.
type Pipeline struct {
	cfg  config.ConsensusConfig
	prov model.ProvenanceSource
}

// New creates a Pipeline. A nil provenance source defaults to the system
// clock and uuid run IDs.
func New(cfg config.ConsensusConfig, prov model.ProvenanceSource) *Pipeline {
	if prov == nil {
		prov = model.SystemProvenance{}
	}
	return &Pipeline{cfg: cfg, prov: prov}
}

// Run executes the full grouped consensus pipeline over a flat identification
// list. Inputs are never mutated; the result holds a fresh identification run
// and newly built consensus identifications in group-discovery order.
func (p *Pipeline) Run(ctx context.Context, runs []model.IdentificationRun, ids []model.PeptideIdentification) (*model.ConsensusResult, error) {
	log := zap.L().With(zap.String("algorithm", p.cfg.Algorithm))
	log.Info("pipeline: starting consensus",
		zap.Int("runs", len(runs)),
		zap.Int("identifications", len(ids)),
	)

	if len(runs) == 0 {
		return nil, eris.Wrap(ErrIncompatibleInput, "pipeline: no identification runs in input")
	}

	algo, err := consensus.New(p.cfg, len(runs))
	if err != nil {
		return nil, err
	}

	sets, err := p.project(runs, ids)
	if err != nil {
		return nil, err
	}

	groups := match.Group(sets, p.cfg.RTDelta, p.cfg.MZDelta)
	singletons := 0
	for _, g := range groups {
		if len(g.Members) == 1 {
			singletons++
		}
	}
	log.Info("pipeline: correspondence matching complete",
		zap.Int("groups", len(groups)),
		zap.Int("singletons", singletons),
	)

	consensusIDs, err := p.scoreGroups(ctx, algo, groups)
	if err != nil {
		return nil, err
	}

	run := p.newRun()
	for i := range consensusIDs {
		consensusIDs[i].RunID = run.ID
	}
	result := &model.ConsensusResult{
		Run:             run,
		Identifications: consensusIDs,
		Groups:          len(groups),
		Singletons:      singletons,
	}

	log.Info("pipeline: consensus complete",
		zap.String("run_id", result.Run.ID),
		zap.Int("consensus_identifications", len(result.Identifications)),
	)
	return result, nil
}

// Rescore applies the consensus algorithm to identification sets whose
// grouping was already decided by the container (feature-attached or
// consensus-group-attached shapes): no matching, one consensus result per
// set. Empty sets yield empty results.
func (p *Pipeline) Rescore(ctx context.Context, numberOfRuns int, idsets [][]model.PeptideIdentification) ([]consensus.Result, error) {
	algo, err := consensus.New(p.cfg, numberOfRuns)
	if err != nil {
		return nil, err
	}

	out := make([]consensus.Result, len(idsets))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i, set := range idsets {
		g.Go(func() error {
			if len(set) == 0 {
				return nil
			}
			cloned := make([]model.PeptideIdentification, len(set))
			for j, id := range set {
				cloned[j] = id.Clone()
			}
			out[i] = algo.Apply(cloned)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// NewRun exposes the provenance stamp for callers that write containers
// carrying their own run element (the rescore path).
func (p *Pipeline) NewRun() model.IdentificationRun {
	return p.newRun()
}

// project validates positions and builds the per-run matcher record sets.
// The first identification without RT or m/z aborts the whole computation.
func (p *Pipeline) project(runs []model.IdentificationRun, ids []model.PeptideIdentification) ([][]model.Positioned, error) {
	runIndex := make(map[string]int, len(runs))
	for i, r := range runs {
		runIndex[r.ID] = i
	}

	sets := make([][]model.Positioned, len(runs))
	for i := range ids {
		id := &ids[i]
		idx, ok := runIndex[id.RunID]
		if !ok {
			return nil, eris.Wrapf(ErrIncompatibleInput,
				"pipeline: identification references unknown run %q", id.RunID)
		}
		pos, err := model.Project(idx, id)
		if err != nil {
			zap.L().Error("pipeline: identification without RT and/or m/z",
				zap.String("run_id", id.RunID),
			)
			return nil, eris.Wrapf(ErrIncompatibleInput,
				"pipeline: identification without RT and/or m/z in run %q", id.RunID)
		}
		sets[idx] = append(sets[idx], pos)
	}
	return sets, nil
}

// scoreGroups applies the algorithm to every group concurrently. Results are
// written into an index-addressed slice so output order stays deterministic
// (group-discovery order); groups that score to zero hits are dropped.
func (p *Pipeline) scoreGroups(ctx context.Context, algo consensus.Algorithm, groups []model.Group) ([]model.PeptideIdentification, error) {
	scored := make([]model.PeptideIdentification, len(groups))
	keep := make([]bool, len(groups))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i := range groups {
		g.Go(func() error {
			res := algo.Apply(groups[i].Identifications())
			if len(res.Hits) == 0 {
				return nil
			}
			scored[i] = model.PeptideIdentification{
				RT:                groups[i].RT,
				MZ:                groups[i].MZ,
				HasRT:             true,
				HasMZ:             true,
				ScoreType:         res.ScoreType,
				HigherScoreBetter: res.HigherScoreBetter,
				Hits:              res.Hits,
			}
			keep[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.PeptideIdentification, 0, len(groups))
	for i, ok := range keep {
		if ok {
			out = append(out, scored[i])
		}
	}
	return out, nil
}

func (p *Pipeline) workers() int {
	if p.cfg.Workers > 0 {
		return p.cfg.Workers
	}
	return runtime.NumCPU()
}

func (p *Pipeline) newRun() model.IdentificationRun {
	name, version := p.prov.Tool()
	return model.IdentificationRun{
		ID:                  p.prov.NewRunID(),
		SearchEngine:        name,
		SearchEngineVersion: version,
		Date:                p.prov.Now(),
	}
}
