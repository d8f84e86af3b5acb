package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unitrun/unitrun/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage unitrun configuration",
		Long:  `Manage unitrun configuration, including the target CLI, project root, and coverage wrapper.`,
	}

	configListCmd = &cobra.Command{
		Use:   "list",
		Short: "List current configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			for _, key := range config.Keys() {
				fmt.Fprintf(outWriter(), "%s: %v\n", key, viper.Get(key))
			}
			return nil
		},
	}

	configGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Show a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			key := args[0]
			if !knownKey(key) {
				return fmt.Errorf("unknown configuration key: %s", key)
			}
			fmt.Fprintf(outWriter(), "%v\n", viper.Get(key))
			return nil
		},
	}

	configSetCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set and persist a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			key, value := args[0], args[1]
			if !knownKey(key) {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if key == "long" {
				parsed, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("invalid boolean for %s: %s", key, value)
				}
				viper.Set(key, parsed)
			} else {
				viper.Set(key, value)
			}

			if err := config.Save(); err != nil {
				return fmt.Errorf("unable to save config: %w", err)
			}
			fmt.Fprintf(outWriter(), "Set %s to %s\n", key, value)
			return nil
		},
	}
)

func knownKey(key string) bool {
	for _, known := range config.Keys() {
		if key == known {
			return true
		}
	}
	return false
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
