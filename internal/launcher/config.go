package launcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrainerConfig describes the external training entry point. The args list is
// the fixed prefix placed before the output-directory parameter; for a
// sacred-style trainer it ends with the "with" token.
type TrainerConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
}

// Config is the structure of runlab.yaml.
type Config struct {
	Trainer TrainerConfig `yaml:"trainer"`
	RunsDir string        `yaml:"runs_dir"`
}

// DefaultConfigPath is the file looked up in the working directory when no
// --config flag is given.
const DefaultConfigPath = "runlab.yaml"

// DefaultConfig returns the configuration used when no runlab.yaml exists:
// the playground trainer invoked through sacred's `with k=v` override syntax.
func DefaultConfig() Config {
	return Config{
		Trainer: TrainerConfig{
			Command: "python",
			Args:    []string{"playground/train.py", "with"},
		},
		RunsDir: "runs",
	}
}

// LoadConfig reads a runlab config file. A missing file is not an error: the
// defaults apply, mirroring how an absent tools file means "nothing
// configured" rather than a failure.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// A file that omits the trainer block (or the runs root) falls back to
	// the defaults for that part only.
	if cfg.Trainer.Command == "" {
		cfg.Trainer = DefaultConfig().Trainer
	}
	if cfg.RunsDir == "" {
		cfg.RunsDir = DefaultConfig().RunsDir
	}
	return cfg, nil
}
