package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peakmatch/consensusid/internal/model"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tool name and version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", model.ToolName, model.ToolVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
