package model

import (
	"time"

	"github.com/google/uuid"
)

// Tool identity stamped onto the synthesized consensus run.
const (
	ToolName    = "consensusid"
	ToolVersion = "1.2.0"
)

// ProvenanceSource supplies the identity, timestamp and run ID for the
// synthesized consensus run. It is injected into the pipeline so runs are
// reproducible under test with a fixed clock.
type ProvenanceSource interface {
	Now() time.Time
	Tool() (name, version string)
	NewRunID() string
}

// SystemProvenance is the production ProvenanceSource: wall clock, compiled-in
// tool identity, uuid run IDs.
type SystemProvenance struct{}

func (SystemProvenance) Now() time.Time { return time.Now().UTC() }

func (SystemProvenance) Tool() (string, string) { return ToolName, ToolVersion }

func (SystemProvenance) NewRunID() string {
	return ToolName + "_" + uuid.NewString()
}

// FixedProvenance is a deterministic ProvenanceSource for tests.
type FixedProvenance struct {
	Time  time.Time
	RunID string
}

func (f FixedProvenance) Now() time.Time { return f.Time }

func (f FixedProvenance) Tool() (string, string) { return ToolName, ToolVersion }

func (f FixedProvenance) NewRunID() string { return f.RunID }
