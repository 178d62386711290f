package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Algorithm names accepted by the consensus section.
const (
	AlgorithmPEPMatrix = "PEPMatrix"
	AlgorithmPEPIons   = "PEPIons"
	AlgorithmBest      = "best"
	AlgorithmAverage   = "average"
	AlgorithmRanks     = "ranks"
)

// Config holds the full application configuration.
type Config struct {
	Consensus ConsensusConfig `yaml:"consensus" mapstructure:"consensus"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ConsensusConfig configures correspondence matching and consensus scoring.
type ConsensusConfig struct {
	RTDelta        float64         `yaml:"rt_delta" mapstructure:"rt_delta"`
	MZDelta        float64         `yaml:"mz_delta" mapstructure:"mz_delta"`
	ConsideredHits int             `yaml:"considered_hits" mapstructure:"considered_hits"`
	Algorithm      string          `yaml:"algorithm" mapstructure:"algorithm"`
	Workers        int             `yaml:"workers" mapstructure:"workers"`
	PEPMatrix      PEPMatrixConfig `yaml:"pepmatrix" mapstructure:"pepmatrix"`
	PEPIons        PEPIonsConfig   `yaml:"pepions" mapstructure:"pepions"`
}

// PEPMatrixConfig configures sequence-similarity scoring for the PEPMatrix
// algorithm. MatrixFile, when set, overrides the named built-in matrix.
type PEPMatrixConfig struct {
	Matrix     string `yaml:"matrix" mapstructure:"matrix"`
	Penalty    int    `yaml:"penalty" mapstructure:"penalty"`
	MatrixFile string `yaml:"matrix_file" mapstructure:"matrix_file"`
}

// PEPIonsConfig configures fragment-ion similarity scoring for the PEPIons
// algorithm. MassTolerance is in Da.
type PEPIonsConfig struct {
	MassTolerance float64 `yaml:"mass_tolerance" mapstructure:"mass_tolerance"`
	MinSharedIons int     `yaml:"min_shared_ions" mapstructure:"min_shared_ions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONSENSUSID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("consensus.rt_delta", 0.1)
	v.SetDefault("consensus.mz_delta", 0.1)
	v.SetDefault("consensus.considered_hits", 10)
	v.SetDefault("consensus.algorithm", AlgorithmPEPMatrix)
	v.SetDefault("consensus.workers", 0)
	v.SetDefault("consensus.pepmatrix.matrix", "pam30ms")
	v.SetDefault("consensus.pepmatrix.penalty", 5)
	v.SetDefault("consensus.pepions.mass_tolerance", 0.5)
	v.SetDefault("consensus.pepions.min_shared_ions", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Consensus.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the core must never see.
func (c ConsensusConfig) Validate() error {
	if c.RTDelta < 0 {
		return eris.Errorf("config: rt_delta must be >= 0, got %g", c.RTDelta)
	}
	if c.MZDelta < 0 {
		return eris.Errorf("config: mz_delta must be >= 0, got %g", c.MZDelta)
	}
	if c.ConsideredHits < 0 {
		return eris.Errorf("config: considered_hits must be >= 0, got %d", c.ConsideredHits)
	}
	if c.Workers < 0 {
		return eris.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	switch c.Algorithm {
	case AlgorithmPEPMatrix, AlgorithmPEPIons, AlgorithmBest, AlgorithmAverage, AlgorithmRanks:
	default:
		return eris.Errorf("config: unknown algorithm %q", c.Algorithm)
	}
	if c.PEPMatrix.Penalty < 1 {
		return eris.Errorf("config: pepmatrix.penalty must be >= 1, got %d", c.PEPMatrix.Penalty)
	}
	if c.PEPIons.MassTolerance <= 0 {
		return eris.Errorf("config: pepions.mass_tolerance must be > 0, got %g", c.PEPIons.MassTolerance)
	}
	if c.PEPIons.MinSharedIons < 1 {
		return eris.Errorf("config: pepions.min_shared_ions must be >= 1, got %d", c.PEPIons.MinSharedIons)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
