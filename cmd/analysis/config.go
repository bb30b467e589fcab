package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jcalabro/tally"
	"gopkg.in/yaml.v3"
)

// Sweep names the parameter varied across iterations of an experiment.
const (
	SweepWidth  = "width"
	SweepStream = "stream"
)

// Experiment describes one parameter sweep over a sketch.
//
// A width sweep feeds one fixed stream of StreamSize keys into sketches of
// width Min, Min+Step, ... < Max. A stream sweep feeds freshly drawn streams
// of size Min, Min+Step, ... < Max into sketches of fixed Width.
type Experiment struct {
	Name             string  `yaml:"name" validate:"required"`
	Structure        string  `yaml:"structure" validate:"oneof=cms sbf"`
	NumHashFunctions int     `yaml:"numHashFunctions" validate:"gte=1"`
	Hasher           string  `yaml:"hasher" validate:"oneof=xxh3 murmur3 xxhash64"`
	Policy           string  `yaml:"policy" validate:"oneof=minimal-increase minimum-selection"`
	Sweep            string  `yaml:"sweep" validate:"oneof=width stream"`
	Min              int     `yaml:"min" validate:"gte=1"`
	Max              int     `yaml:"max" validate:"gtfield=Min"`
	Step             int     `yaml:"step" validate:"gte=1"`
	Width            int     `yaml:"width" validate:"required_if=Sweep stream,gte=0"`
	StreamSize       int     `yaml:"streamSize" validate:"required_if=Sweep width,gte=0"`
	PoolSize         int     `yaml:"poolSize" validate:"gte=1"`
	Distribution     string  `yaml:"distribution" validate:"oneof=zipf random"`
	Alpha            float64 `yaml:"alpha" validate:"gt=1"`
	Seed             uint64  `yaml:"seed"`
	OutputDir        string  `yaml:"outputDir" validate:"required"`
}

// RunFile is a batch of experiments loaded from YAML.
type RunFile struct {
	Experiments []Experiment `yaml:"experiments" validate:"required,min=1,dive"`
}

// defaultCMSExperiment sweeps the width of a 3-row count-min sketch over a
// fixed stream of 500 zipf-distributed keys.
func defaultCMSExperiment() Experiment {
	return Experiment{
		Name:             "cms",
		Structure:        "cms",
		NumHashFunctions: 3,
		Hasher:           "xxh3",
		Policy:           tally.MinimalIncrease.String(),
		Sweep:            SweepWidth,
		Min:              5,
		Max:              5000,
		Step:             25,
		StreamSize:       500,
		PoolSize:         100,
		Distribution:     string(Zipf),
		Alpha:            1.2,
		Seed:             1,
		OutputDir:        "/tmp/output_cms",
	}
}

// defaultSBFExperiment sweeps the stream size fed to a spectral Bloom filter
// of width 25.
func defaultSBFExperiment() Experiment {
	return Experiment{
		Name:             "sbf",
		Structure:        "sbf",
		NumHashFunctions: 3,
		Hasher:           "xxh3",
		Policy:           tally.MinimalIncrease.String(),
		Sweep:            SweepStream,
		Min:              100,
		Max:              5000,
		Step:             100,
		Width:            25,
		PoolSize:         100,
		Distribution:     string(Uniform),
		Alpha:            1.2,
		Seed:             1,
		OutputDir:        "/tmp/output_sbf",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the experiment's fields.
func (e *Experiment) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("experiment %q: %w", e.Name, err)
	}
	return nil
}

// LoadRunFile reads and validates a YAML run file. Fields omitted by an
// experiment take the defaults of its structure.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run file %s: %w", path, err)
	}

	var raw struct {
		Experiments []yaml.Node `yaml:"experiments"`
	}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}

	rf := &RunFile{}
	for i, node := range raw.Experiments {
		var probe struct {
			Structure string `yaml:"structure"`
		}
		if err = node.Decode(&probe); err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i, err)
		}

		e := defaultCMSExperiment()
		if probe.Structure == "sbf" {
			e = defaultSBFExperiment()
		}
		if err = node.Decode(&e); err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i, err)
		}
		rf.Experiments = append(rf.Experiments, e)
	}

	if err = validate.Struct(rf); err != nil {
		return nil, fmt.Errorf("validate run file %s: %w", path, err)
	}

	return rf, nil
}

func (e *Experiment) options() []tally.Option {
	var h tally.Hasher
	switch e.Hasher {
	case "murmur3":
		h = tally.Murmur3{}
	case "xxhash64":
		h = tally.XXHash64{}
	default:
		h = tally.XXH3{}
	}

	p := tally.MinimalIncrease
	if e.Policy == tally.MinimumSelection.String() {
		p = tally.MinimumSelection
	}

	return []tally.Option{tally.WithHasher(h), tally.WithUpdatePolicy(p)}
}
