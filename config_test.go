package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/lowering"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.True(t, cfg.Translate.ForwardCalls)
		assert.Equal(t, lowering.DefaultMargin, cfg.Layout.Margin)
	})

	t.Run("yaml overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "translate:\n  forward_calls: false\n  implicit_globals: true\nlayout:\n  margin: 12\nbatch:\n  workers: 0\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.False(t, cfg.Translate.ForwardCalls)
		assert.True(t, cfg.Translate.ImplicitGlobals)
		assert.Equal(t, 12, cfg.Layout.Margin)
		assert.Equal(t, 1, cfg.Batch.Workers)
		assert.Equal(t, "lua> ", cfg.REPL.Prompt)
	})

	t.Run("json overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "debug", "format": "json"}}`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, 4, cfg.Batch.Workers)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("layout: [1, 2"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	for _, name := range []string{"nested/config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Layout.Margin = 7
			cfg.Lookup.Path = "tables.yaml"
			require.NoError(t, SaveConfig(cfg, path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestConfig_Wiring(t *testing.T) {
	t.Run("expand home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "x.yaml"), expandHome("~/x.yaml"))
		assert.Equal(t, "/abs/x.yaml", expandHome("/abs/x.yaml"))
	})

	t.Run("logger", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "error"
		cfg.Logging.File = filepath.Join(t.TempDir(), "luablocks.log")
		logger, err := cfg.NewLogger()
		require.NoError(t, err)
		defer logger.Close()
		assert.Equal(t, logging.LevelError, logger.GetLevel())
	})

	t.Run("tables", func(t *testing.T) {
		cfg := DefaultConfig()
		tables, err := cfg.Tables()
		require.NoError(t, err)
		assert.NotEmpty(t, tables.Names())

		cfg.Lookup.Path = filepath.Join(t.TempDir(), "absent.yaml")
		_, err = cfg.Tables()
		assert.Error(t, err)
	})

	t.Run("session options", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Translate.ImplicitGlobals = true
		cfg.Layout.Margin = 5

		ws := blocks.NewMemoryWorkspace(nil)
		s, err := lowering.NewSession(ws, nil, cfg.SessionOptions(nil)...)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Len(t, cfg.SessionOptions(logging.NewNopLogger()), 5)
	})
}
