// Package pipeline calls every site of a site store for one family.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/lattice"
	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("pipeline: invalid config")

// Config describes one run. Sex and disease status come from the store's
// samples; the config only assigns family roles.
type Config struct {
	Family FamilyConfig `yaml:"family"`
	Denovo DenovoConfig `yaml:"denovo"`

	// Disease turns on the disease model; exactly one parent must be
	// diseased.
	Disease    bool   `yaml:"disease"`
	Arithmetic string `yaml:"arithmetic"`
	Workers    int    `yaml:"workers"`
	// Precision is the number of decimals written for posteriors.
	Precision int `yaml:"precision"`
}

type FamilyConfig struct {
	Father   string   `yaml:"father"`
	Mother   string   `yaml:"mother"`
	Children []string `yaml:"children"`
}

// DenovoConfig holds de novo mutation priors as probabilities. A zero
// reference prior leaves de novo scoring off.
type DenovoConfig struct {
	RefPrior    float64 `yaml:"ref_prior"`
	NonRefPrior float64 `yaml:"non_ref_prior"`
}

func DefaultConfig() *Config {
	return &Config{
		Arithmetic: lattice.Log.Name(),
		Workers:    runtime.NumCPU(),
		Precision:  3,
	}
}

// LoadConfig reads a YAML config from path on top of DefaultConfig and
// validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, pfx.Err(err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	f := c.Family
	if f.Father == "" || f.Mother == "" {
		return fmt.Errorf("family needs a father and a mother: %w", ErrInvalidConfig)
	}
	if len(f.Children) == 0 {
		return fmt.Errorf("family needs at least one child: %w", ErrInvalidConfig)
	}
	seen := map[string]bool{}
	for _, id := range append([]string{f.Father, f.Mother}, f.Children...) {
		if id == "" {
			return fmt.Errorf("empty sample ID: %w", ErrInvalidConfig)
		}
		if seen[id] {
			return fmt.Errorf("sample %s appears twice: %w", id, ErrInvalidConfig)
		}
		seen[id] = true
	}

	for name, p := range map[string]float64{"ref_prior": c.Denovo.RefPrior, "non_ref_prior": c.Denovo.NonRefPrior} {
		if p < 0 || p >= 1 || math.IsNaN(p) {
			return fmt.Errorf("%s %v is not in [0, 1): %w", name, p, ErrInvalidConfig)
		}
	}

	if _, err := lattice.ArithmeticByName(c.Arithmetic); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers is %d: %w", c.Workers, ErrInvalidConfig)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision is %d: %w", c.Precision, ErrInvalidConfig)
	}
	return nil
}

// options converts the configured priors to natural logs.
func (c *Config) options() []pedcall.Option {
	if c.Denovo.RefPrior == 0 {
		return nil
	}
	return []pedcall.Option{
		pedcall.WithDenovoPriors(math.Log(c.Denovo.RefPrior), math.Log(c.Denovo.NonRefPrior)),
	}
}

func (c *Config) arithmetic() lattice.Arithmetic {
	a, err := lattice.ArithmeticByName(c.Arithmetic)
	if err != nil {
		return lattice.Log
	}
	return a
}
