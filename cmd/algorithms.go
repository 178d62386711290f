package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peakmatch/consensusid/internal/config"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List available consensus algorithms",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := [][]string{
			{config.AlgorithmPEPMatrix, "PEP + sequence similarity via substitution-matrix alignment"},
			{config.AlgorithmPEPIons, "PEP + fragment ion overlap between peptide sequences"},
			{config.AlgorithmBest, "best score per peptide across engines"},
			{config.AlgorithmAverage, "arithmetic mean score per peptide across engines"},
			{config.AlgorithmRanks, "normalized rank of the peptide in each engine's hit list"},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderHeaderedTable([]string{"algorithm", "consensus score"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
