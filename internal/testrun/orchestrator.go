// Package testrun drives the unit-test run of the target CLI: dependency
// check, help smoke test, then the unit-test suite, folded into a single
// pass/fail result.
package testrun

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/unitrun/unitrun/internal/cmdrun"
	"github.com/unitrun/unitrun/internal/deps"
	"github.com/unitrun/unitrun/internal/ui"
)

// ErrRunFailed reports that at least one step of the run failed. Failure
// is sticky: a later passing step never clears it.
var ErrRunFailed = errors.New("one or more test steps failed")

// Options configures a run.
type Options struct {
	Root     string
	CLI      string
	Long     bool
	Coverage string
	Filters  []string
	Tools    []deps.Tool
	Verbose  bool

	Stdout io.Writer
	Stderr io.Writer
}

// Orchestrator executes the steps of a test run in order. Every step
// after environment setup records failure and continues, so the target's
// own diagnostics for each step reach the user in one pass.
type Orchestrator struct {
	opts    Options
	runner  cmdrun.Runner
	checker deps.Checker

	// search path as it was before the run, exposed to children
	origPath string
}

func New(opts Options) *Orchestrator {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	runner := cmdrun.Runner{Verbose: opts.Verbose, Logger: opts.Stderr}
	return &Orchestrator{
		opts:    opts,
		runner:  runner,
		checker: deps.Checker{Runner: runner},
	}
}

// Run executes the whole sequence: setup, dependency check, smoke test,
// unit tests. Setup failure is fatal; any other failed step makes the
// result ErrRunFailed after all steps have run.
func (o *Orchestrator) Run() error {
	if err := o.setup(); err != nil {
		return err
	}

	failed := false

	if err := o.CheckDependencies(); err != nil {
		fmt.Fprintln(o.opts.Stderr, err)
		failed = true
	}
	if err := o.smokeTest(); err != nil {
		failed = true
	}
	if err := o.runUnitTests(); err != nil {
		failed = true
	}

	if failed {
		return ErrRunFailed
	}
	return nil
}

// setup captures the original search path and moves to the target root.
// Every later step runs relative to the root, so a failure here aborts
// the run instead of being accumulated.
func (o *Orchestrator) setup() error {
	o.origPath = os.Getenv("PATH")

	root, err := filepath.Abs(o.opts.Root)
	if err != nil {
		return fmt.Errorf("resolving root directory %q: %w", o.opts.Root, err)
	}
	if err := os.Chdir(root); err != nil {
		return fmt.Errorf("changing to root directory: %w", err)
	}

	o.runner.Env = append(o.runner.Env, "UNITRUN_ORIGINAL_PATH="+o.origPath)
	o.checker.Runner = o.runner
	return nil
}

// RequiredTools is the configured tool set plus the coverage wrapper's
// executable when coverage is enabled.
func (o *Orchestrator) RequiredTools() []deps.Tool {
	tools := append([]deps.Tool{}, o.opts.Tools...)
	if fields := strings.Fields(o.opts.Coverage); len(fields) > 0 {
		tools = append(tools, deps.Tool{Name: fields[0]})
	}
	return tools
}

// CheckDependencies verifies the required external tools, reporting the
// tool under probe through the spinner.
func (o *Orchestrator) CheckDependencies() error {
	sp := ui.NewSpinner(o.opts.Stderr, "Checking required tools")
	sp.Start()

	checker := o.checker
	checker.Progress = func(name string) {
		sp.UpdateMessage("Checking " + name)
	}
	err := checker.Check(o.RequiredTools())

	sp.Stop()
	return err
}

// smokeTest exercises the target's help surface. Both invocations run
// even if the first fails.
func (o *Orchestrator) smokeTest() error {
	failed := false
	for _, args := range [][]string{{"help"}, {"help", "-a"}} {
		err := o.runner.RunWithWriters(true, o.opts.Stdout, o.opts.Stderr, o.opts.CLI, args...)
		if err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("%s help smoke test failed", o.opts.CLI)
	}
	return nil
}

// UnitTestArgs builds the argument list for the target's unit-test
// subcommand: fail-fast, verbose, and unless long tests are enabled a
// marker expression excluding them. Explicit filters pass through
// verbatim after the fixed flags.
func UnitTestArgs(long bool, filters []string) []string {
	args := []string{"unit-test", "-x", "--verbose"}
	if !long {
		args = append(args, "-m", "not long")
	}
	args = append(args, filters...)
	return args
}

func (o *Orchestrator) runUnitTests() error {
	runner := o.runner
	if fields := strings.Fields(o.opts.Coverage); len(fields) > 0 {
		runner.Wrap = fields
	}
	args := UnitTestArgs(o.opts.Long, o.opts.Filters)
	return runner.RunWithWriters(true, o.opts.Stdout, o.opts.Stderr, o.opts.CLI, args...)
}
