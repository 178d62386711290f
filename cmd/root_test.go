package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakmatch/consensusid/internal/config"
	"github.com/peakmatch/consensusid/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"run", "algorithms", "version"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "consensusid", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"in", "out", "format", "rt-delta", "mz-delta", "considered-hits", "algorithm", "workers"} {
		flag := runCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "run command should have --%s flag", flagName)
	}

	assert.Equal(t, "idxml", runCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "0.1", runCmd.Flags().Lookup("rt-delta").DefValue)
	assert.Equal(t, "10", runCmd.Flags().Lookup("considered-hits").DefValue)
}

func TestApplyRunFlags_OnlyChangedFlagsOverride(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()
	cfg = &config.Config{Consensus: config.ConsensusConfig{
		RTDelta:   0.1,
		MZDelta:   0.1,
		Algorithm: config.AlgorithmPEPMatrix,
	}}

	require.NoError(t, runCmd.Flags().Set("rt-delta", "2.5"))
	require.NoError(t, runCmd.Flags().Set("algorithm", "ranks"))
	defer func() {
		_ = runCmd.Flags().Set("rt-delta", "0.1")
		_ = runCmd.Flags().Set("algorithm", "")
	}()

	applyRunFlags(runCmd)

	assert.InDelta(t, 2.5, cfg.Consensus.RTDelta, 1e-12)
	assert.Equal(t, "ranks", cfg.Consensus.Algorithm)
	assert.InDelta(t, 0.1, cfg.Consensus.MZDelta, 1e-12, "unset flag must not override config")
}

func TestAlgorithmsCommand_ListsAll(t *testing.T) {
	var buf bytes.Buffer
	algorithmsCmd.SetOut(&buf)
	require.NoError(t, algorithmsCmd.RunE(algorithmsCmd, nil))

	out := buf.String()
	for _, name := range []string{"PEPMatrix", "PEPIons", "best", "average", "ranks"} {
		assert.Contains(t, out, name)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, model.ToolName+" "+model.ToolVersion, strings.TrimSpace(buf.String()))
}

func TestRenderHeaderedTable(t *testing.T) {
	out := renderHeaderedTable([]string{"a", "b"}, [][]string{{"x", "y"}})
	assert.Contains(t, out, "x")
	assert.Contains(t, out, "y")
}
