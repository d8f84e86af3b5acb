package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "UNITRUN", EnvPrefix)
	assert.Equal(t, "unitrun", DefaultConfigDir)
	assert.Equal(t, "config", DefaultConfigName)
}

func TestDefaultTools(t *testing.T) {
	tools := DefaultTools()

	require.Len(t, tools, 3)
	names := []string{tools[0].Name, tools[1].Name, tools[2].Name}
	assert.Contains(t, names, "git")
	assert.Contains(t, names, "hg")
	assert.Contains(t, names, "svn")
	for _, tool := range tools {
		assert.Empty(t, tool.Constraint)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Contains(t, keys, "root")
	assert.Contains(t, keys, "cli")
	assert.Contains(t, keys, "long")
	assert.Contains(t, keys, "coverage")
}

func TestInitConfigDefaults(t *testing.T) {
	resetConfig(t)

	require.NoError(t, InitConfig(""))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Root)
	assert.Empty(t, cfg.CLI)
	assert.False(t, cfg.Long)
	assert.Empty(t, cfg.Coverage)
	assert.Len(t, cfg.Tools, 3)
}

func TestEnvironmentOverrides(t *testing.T) {
	resetConfig(t)
	t.Setenv("UNITRUN_ROOT", "/srv/target")
	t.Setenv("UNITRUN_CLI", "target")
	t.Setenv("UNITRUN_LONG", "true")
	t.Setenv("UNITRUN_COVERAGE", "coverage run")

	require.NoError(t, InitConfig(""))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/target", cfg.Root)
	assert.Equal(t, "target", cfg.CLI)
	assert.True(t, cfg.Long)
	assert.Equal(t, "coverage run", cfg.Coverage)
}

func TestConfigFile(t *testing.T) {
	resetConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `root: /srv/target
cli: target
long: true
coverage: coverage run
tools:
  - name: git
    constraint: ">= 2.17.0"
  - name: hg
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, InitConfig(path))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/target", cfg.Root)
	assert.Equal(t, "target", cfg.CLI)
	assert.True(t, cfg.Long)
	assert.Equal(t, "coverage run", cfg.Coverage)
	require.Len(t, cfg.Tools, 2)
	assert.Equal(t, "git", cfg.Tools[0].Name)
	assert.Equal(t, ">= 2.17.0", cfg.Tools[0].Constraint)
	assert.Equal(t, "hg", cfg.Tools[1].Name)
	assert.Empty(t, cfg.Tools[1].Constraint)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	resetConfig(t)

	err := InitConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestInitConfigMalformedFile(t *testing.T) {
	resetConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml ["), 0644))

	err := InitConfig(path)
	assert.Error(t, err)
}

func TestSaveCreatesDefaultFile(t *testing.T) {
	resetConfig(t)

	require.NoError(t, InitConfig(""))
	viper.Set("cli", "target")
	require.NoError(t, Save())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".config", DefaultConfigDir, DefaultConfigName+".yaml"))
}

func TestSaveWritesLoadedFile(t *testing.T) {
	resetConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cli: before\n"), 0644))
	require.NoError(t, InitConfig(path))

	viper.Set("cli", "after")
	require.NoError(t, Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after")
}
