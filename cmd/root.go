package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/peakmatch/consensusid/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "consensusid",
	Short: "Consensus peptide identification across search engines",
	Long:  "Matches peptide identifications from multiple search engines by retention time and precursor m/z, then computes consensus support scores per spectrum group.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
