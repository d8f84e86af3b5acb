// Package config loads unitrun settings from file, environment, and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/unitrun/unitrun/internal/deps"
)

// Config is the resolved orchestrator configuration.
type Config struct {
	// Root is the project root of the target tool; the run changes
	// into it before anything else.
	Root string `mapstructure:"root"`

	// CLI is the target tool's executable name.
	CLI string `mapstructure:"cli"`

	// Long includes tests marked "long" when true.
	Long bool `mapstructure:"long"`

	// Coverage is the coverage wrapper command, possibly with
	// arguments ("coverage run"). Empty disables coverage wrapping.
	Coverage string `mapstructure:"coverage"`

	// Tools are the external executables the test run requires.
	Tools []deps.Tool `mapstructure:"tools"`
}

const (
	EnvPrefix         = "UNITRUN"
	DefaultConfigDir  = "unitrun"
	DefaultConfigName = "config"
)

// DefaultTools is the version-control set the target tool's test suite
// exercises. Presence is checked; no minimum versions by default.
func DefaultTools() []deps.Tool {
	return []deps.Tool{
		{Name: "git"},
		{Name: "hg"},
		{Name: "svn"},
	}
}

// Keys lists the scalar configuration keys exposed through the config
// subcommand.
func Keys() []string {
	return []string{"root", "cli", "long", "coverage"}
}

// InitConfig wires viper to the config file (explicit path or the default
// under ~/.config) and the UNITRUN_* environment variables.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to locate home directory: %w", err)
		}
		viper.AddConfigPath(filepath.Join(home, ".config", DefaultConfigDir))
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("root", ".")
	viper.SetDefault("cli", "")
	viper.SetDefault("long", false)
	viper.SetDefault("coverage", "")
	viper.SetDefault("tools", DefaultTools())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file is fine; defaults and env carry the run.
			return nil
		}
		return fmt.Errorf("unable to read config: %w", err)
	}
	return nil
}

// GetConfig resolves the current configuration. Scalar keys go through
// viper.Get* so environment overrides apply; the tools list is decoded
// from the file or defaults.
func GetConfig() (*Config, error) {
	cfg := &Config{
		Root:     viper.GetString("root"),
		CLI:      viper.GetString("cli"),
		Long:     viper.GetBool("long"),
		Coverage: viper.GetString("coverage"),
	}
	if err := viper.UnmarshalKey("tools", &cfg.Tools); err != nil {
		return nil, fmt.Errorf("unable to parse tools config: %w", err)
	}
	return cfg, nil
}

// Save persists the current settings, creating the default config file
// when none was loaded.
func Save() error {
	if viper.ConfigFileUsed() != "" {
		return viper.WriteConfig()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("unable to locate home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", DefaultConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	return viper.WriteConfigAs(filepath.Join(dir, DefaultConfigName+".yaml"))
}
