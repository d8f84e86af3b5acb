package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unitrun/unitrun/internal/config"
	"github.com/unitrun/unitrun/internal/testrun"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify required external tools without running tests",
	Long: `check runs only the dependency step of a test run: every configured tool
(plus the coverage wrapper, when one is set) must be on PATH and satisfy its
version constraint. Each problem is reported; the exit status is non-zero
if any tool is missing or outdated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return fmt.Errorf("configuration error: %w", configErr)
		}

		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}

		orch := testrun.New(testrun.Options{
			Coverage: cfg.Coverage,
			Tools:    cfg.Tools,
			Verbose:  verbose,
			Stdout:   outWriter(),
			Stderr:   errWriter(),
		})
		if err := orch.CheckDependencies(); err != nil {
			return err
		}

		fmt.Fprintln(outWriter(), "All required tools are installed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
