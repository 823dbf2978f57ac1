package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File Uses Defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "python", cfg.Trainer.Command)
		assert.Equal(t, []string{"playground/train.py", "with"}, cfg.Trainer.Args)
		assert.Equal(t, "runs", cfg.RunsDir)
	})

	t.Run("Parses Full Config", func(t *testing.T) {
		path := writeConfig(t, `
trainer:
  command: python3
  args: ["train.py", "with"]
  env:
    CUDA_VISIBLE_DEVICES: "0"
runs_dir: experiments
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "python3", cfg.Trainer.Command)
		assert.Equal(t, []string{"train.py", "with"}, cfg.Trainer.Args)
		assert.Equal(t, "0", cfg.Trainer.Env["CUDA_VISIBLE_DEVICES"])
		assert.Equal(t, "experiments", cfg.RunsDir)
	})

	t.Run("Partial Config Keeps Trainer Defaults", func(t *testing.T) {
		path := writeConfig(t, "runs_dir: out\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "out", cfg.RunsDir)
		assert.Equal(t, "python", cfg.Trainer.Command)
	})

	t.Run("Invalid YAML Fails", func(t *testing.T) {
		path := writeConfig(t, "trainer: [not: a: mapping\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}
