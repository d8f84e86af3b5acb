package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unitrun/unitrun/internal/config"
	"github.com/unitrun/unitrun/internal/testrun"
)

var (
	cfgFile     string
	runLong     bool
	coverageCmd string
	rootDir     string
	verbose     bool
	configErr   error

	rootCtx = context.Background()

	rootCmd = &cobra.Command{
		Use:   "unitrun [test ...]",
		Short: "unitrun - Unit Test Orchestrator",
		Long: `unitrun drives the unit-test run of a target CLI tool: it verifies the
external version-control tools the suite depends on, smoke-tests the target's
help output, then runs its unit-test subcommand, folding every step into a
single pass/fail exit status. Positional arguments select individual tests
and are forwarded to the target verbatim.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return handleErrors(runTests(args))
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

var errNoTargetCLI = errors.New("no target CLI configured")

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(rootCtx)
}

// SetContext sets the context used for command execution.
func SetContext(ctx context.Context) {
	rootCtx = ctx
}

// RootCmd exposes the root command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $HOME/.config/unitrun/config.yaml)")
	rootCmd.Flags().BoolVar(&runLong, "long", false, `Include tests marked "long"`)
	rootCmd.Flags().StringVar(&coverageCmd, "coverage", "",
		`Coverage wrapper command, e.g. "coverage run" (empty disables coverage)`)
	rootCmd.Flags().StringVar(&rootDir, "root", ".", "Project root of the target tool")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show each external command before it runs")
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
	if configErr != nil {
		return
	}
	configErr = bindFlags()
}

// bindFlags lets flags override environment and config-file values.
// Flag defaults mirror the config defaults, so an unchanged flag never
// shadows a configured value with something different.
func bindFlags() error {
	for key, name := range map[string]string{
		"long":     "long",
		"coverage": "coverage",
		"root":     "root",
	} {
		if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

func handleErrors(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, errNoTargetCLI) {
		fmt.Fprintln(errWriter(), "No target CLI configured.")
		fmt.Fprintln(errWriter(), `Hint: run "unitrun config set cli <name>" or export UNITRUN_CLI`)
	}
	return err
}

func runTests(filters []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if cfg.CLI == "" {
		return errNoTargetCLI
	}

	orch := testrun.New(testrun.Options{
		Root:     cfg.Root,
		CLI:      cfg.CLI,
		Long:     cfg.Long,
		Coverage: cfg.Coverage,
		Filters:  filters,
		Tools:    cfg.Tools,
		Verbose:  verbose,
		Stdout:   outWriter(),
		Stderr:   errWriter(),
	})
	return orch.Run()
}
