package types

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
)

const defaultWorkers = 1

// TaggerConfig holds the tunables of a tagging run. Zero values fall back to
// the defaults of the pos package.
type TaggerConfig struct {
	Workers          int     `yaml:"workers" json:"workers"`
	FloorProbability float64 `yaml:"floor_probability" json:"floor_probability"`
	OOVSymbol        string  `yaml:"oov_symbol" json:"oov_symbol"`
	InitTag          string  `yaml:"init_tag" json:"init_tag"`
	FinalTag         string  `yaml:"final_tag" json:"final_tag"`
}

func DefaultTaggerConfig() TaggerConfig {
	return TaggerConfig{
		Workers:          defaultWorkers,
		FloorProbability: pos.DefaultFloorProbability,
		OOVSymbol:        pos.DefaultOOVSymbol,
		InitTag:          pos.DefaultInitTag,
		FinalTag:         pos.DefaultFinalTag,
	}
}

func (cfg TaggerConfig) withDefaults() TaggerConfig {
	def := DefaultTaggerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.FloorProbability == 0 {
		cfg.FloorProbability = def.FloorProbability
	}
	if cfg.OOVSymbol == "" {
		cfg.OOVSymbol = def.OOVSymbol
	}
	if cfg.InitTag == "" {
		cfg.InitTag = def.InitTag
	}
	if cfg.FinalTag == "" {
		cfg.FinalTag = def.FinalTag
	}
	return cfg
}

func (cfg TaggerConfig) ModelOptions() pos.Options {
	return pos.Options{
		InitTag:          cfg.InitTag,
		FinalTag:         cfg.FinalTag,
		OOVSymbol:        cfg.OOVSymbol,
		FloorProbability: cfg.FloorProbability,
	}
}

// LoadTaggerConfig reads a YAML tagger config. An empty path yields the
// defaults.
func LoadTaggerConfig(filePath string) (TaggerConfig, error) {
	hmmLogger := logger.NewLogger("LoadTaggerConfig")
	if filePath == "" {
		hmmLogger.Debug().Msg("No tagger config given, using defaults")
		return DefaultTaggerConfig(), nil
	}

	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return TaggerConfig{}, err
	}
	return ParseTaggerConfig(buf)
}

func ParseTaggerConfig(buf []byte) (TaggerConfig, error) {
	var cfg TaggerConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return TaggerConfig{}, fmt.Errorf("parse tagger config: %w", err)
	}
	if cfg.FloorProbability < 0 || cfg.FloorProbability > 1 {
		return TaggerConfig{}, fmt.Errorf("floor_probability must be in (0, 1], got %v", cfg.FloorProbability)
	}
	return cfg.withDefaults(), nil
}
