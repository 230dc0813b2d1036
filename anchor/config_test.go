package anchor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anchorset/anchor"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		cfg, err := anchor.LoadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, anchor.DefaultConfig(), cfg)
	})

	t.Run("partial override", func(t *testing.T) {
		cfg, err := anchor.LoadConfig(strings.NewReader("parallelism: 8\n"))
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Parallelism)
		assert.Equal(t, anchor.DefaultTolerance, cfg.Tolerance)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := anchor.LoadConfig(strings.NewReader("workers: 2\n"))
		assert.ErrorIs(t, err, anchor.ErrInvalidConfig)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := anchor.LoadConfig(strings.NewReader("tolerance: -1\n"))
		assert.ErrorIs(t, err, anchor.ErrInvalidConfig)
	})
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchorset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallelism: 2\ntolerance: 1e-6\n"), 0o600))

	cfg, err := anchor.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, anchor.Config{Parallelism: 2, Tolerance: 1e-6}, cfg)

	_, err = anchor.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
