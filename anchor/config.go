package anchor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for Config.
const (
	DefaultParallelism = 4
	DefaultTolerance   = 1e-9
)

// ErrInvalidConfig is returned by Config.Validate and New.
var ErrInvalidConfig = errors.New("anchor: invalid config")

// Config holds the service settings. The zero value is not valid; start from
// DefaultConfig.
type Config struct {
	// Parallelism bounds how many independent runs SelectMany executes at
	// once. Each run owns its own matrix.
	Parallelism int `yaml:"parallelism"`

	// Tolerance is the linear-dependence threshold of the hypervolume basis.
	Tolerance float64 `yaml:"tolerance"`
}

// DefaultConfig returns a Config with documented defaults.
func DefaultConfig() Config {
	return Config{
		Parallelism: DefaultParallelism,
		Tolerance:   DefaultTolerance,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be >= 1, got %d", ErrInvalidConfig, c.Parallelism)
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance must be finite and >= 0, got %v", ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

// LoadConfig reads a YAML config from r. Unset fields keep their defaults;
// unknown fields are rejected. The result is validated.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile is LoadConfig on the named file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}
