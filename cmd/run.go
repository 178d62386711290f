package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/peakmatch/consensusid/internal/featmap"
	"github.com/peakmatch/consensusid/internal/idxml"
	"github.com/peakmatch/consensusid/internal/model"
	"github.com/peakmatch/consensusid/internal/pipeline"
)

var (
	runIn     string
	runOut    string
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute consensus identifications for one input file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		applyRunFlags(cmd)
		if err := cfg.Consensus.Validate(); err != nil {
			return eris.Wrap(err, "validate config")
		}

		p := pipeline.New(cfg.Consensus, nil)

		switch runFormat {
		case "idxml":
			return runIdXML(ctx, p)
		case "featmap":
			return runFeatMap(ctx, p)
		default:
			return eris.Errorf("unknown format %q (want idxml or featmap)", runFormat)
		}
	},
}

func runIdXML(ctx context.Context, p *pipeline.Pipeline) error {
	runs, ids, err := idxml.ReadFile(runIn)
	if err != nil {
		return eris.Wrap(err, "read input")
	}

	result, err := p.Run(ctx, runs, ids)
	if err != nil {
		if errors.Is(err, pipeline.ErrIncompatibleInput) {
			return eris.Wrap(err, "incompatible input data")
		}
		return eris.Wrap(err, "consensus run")
	}

	if err := idxml.WriteFile(runOut, []model.IdentificationRun{result.Run}, result.Identifications); err != nil {
		return eris.Wrap(err, "write output")
	}

	zap.L().Info("consensus complete",
		zap.String("in", runIn),
		zap.String("out", runOut),
		zap.String("algorithm", cfg.Consensus.Algorithm),
		zap.Int("groups", result.Groups),
		zap.Int("singletons", result.Singletons),
		zap.Int("identifications", len(result.Identifications)),
	)

	printSummary([][]string{
		{"algorithm", cfg.Consensus.Algorithm},
		{"input runs", strconv.Itoa(len(runs))},
		{"groups", strconv.Itoa(result.Groups)},
		{"singletons", strconv.Itoa(result.Singletons)},
		{"identifications", strconv.Itoa(len(result.Identifications))},
	})
	return nil
}

func runFeatMap(ctx context.Context, p *pipeline.Pipeline) error {
	m, err := featmap.ReadFile(runIn)
	if err != nil {
		return eris.Wrap(err, "read input")
	}

	results, err := p.Rescore(ctx, len(m.Runs), m.IdentificationSets())
	if err != nil {
		return eris.Wrap(err, "rescore")
	}

	if err := m.ReplaceIdentifications(p.NewRun(), results); err != nil {
		return eris.Wrap(err, "replace identifications")
	}

	if err := featmap.WriteFile(runOut, m); err != nil {
		return eris.Wrap(err, "write output")
	}

	zap.L().Info("rescore complete",
		zap.String("in", runIn),
		zap.String("out", runOut),
		zap.String("algorithm", cfg.Consensus.Algorithm),
		zap.Int("features", len(results)),
	)

	printSummary([][]string{
		{"algorithm", cfg.Consensus.Algorithm},
		{"features rescored", strconv.Itoa(len(results))},
	})
	return nil
}

// applyRunFlags copies explicitly set flags over the loaded config so a
// single invocation can override file and env settings.
func applyRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("rt-delta") {
		cfg.Consensus.RTDelta, _ = flags.GetFloat64("rt-delta")
	}
	if flags.Changed("mz-delta") {
		cfg.Consensus.MZDelta, _ = flags.GetFloat64("mz-delta")
	}
	if flags.Changed("considered-hits") {
		cfg.Consensus.ConsideredHits, _ = flags.GetInt("considered-hits")
	}
	if flags.Changed("algorithm") {
		cfg.Consensus.Algorithm, _ = flags.GetString("algorithm")
	}
	if flags.Changed("workers") {
		cfg.Consensus.Workers, _ = flags.GetInt("workers")
	}
}

func init() {
	runCmd.Flags().StringVar(&runIn, "in", "", "input file (required)")
	runCmd.Flags().StringVar(&runOut, "out", "", "output file (required)")
	runCmd.Flags().StringVar(&runFormat, "format", "idxml", "input format: idxml or featmap")
	runCmd.Flags().Float64("rt-delta", 0.1, "retention time tolerance in seconds")
	runCmd.Flags().Float64("mz-delta", 0.1, "precursor m/z tolerance in Da")
	runCmd.Flags().Int("considered-hits", 10, "top hits per identification to keep (0 = all)")
	runCmd.Flags().String("algorithm", "", "consensus algorithm: PEPMatrix, PEPIons, best, average, ranks")
	runCmd.Flags().Int("workers", 0, "parallel scoring workers (0 = GOMAXPROCS)")
	_ = runCmd.MarkFlagRequired("in")
	_ = runCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(runCmd)
}
