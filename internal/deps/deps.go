// Package deps verifies that the external tools a test run depends on are
// installed and recent enough.
package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"

	"github.com/unitrun/unitrun/internal/cmdrun"
)

// ErrNotFound marks a required tool missing from PATH.
var ErrNotFound = errors.New("not found in PATH")

// Tool names a required executable and an optional version constraint
// such as ">= 2.17.0". An empty constraint means presence is enough.
type Tool struct {
	Name       string `mapstructure:"name"`
	Constraint string `mapstructure:"constraint"`
}

// Checker probes tools for presence and version adequacy.
type Checker struct {
	Runner cmdrun.Runner

	// Progress, when set, is called with each tool's name before it is
	// probed, so callers can report which tool is being checked.
	Progress func(name string)

	// LookPath is swapped out in tests; defaults to exec.LookPath.
	LookPath func(name string) (string, error)
}

// Check verifies every tool. Problems are collected per tool rather than
// short-circuiting, so one missing executable does not hide another.
// A nil return means all tools are present and satisfy their constraints.
func (c Checker) Check(tools []Tool) error {
	var result *multierror.Error
	for _, tool := range tools {
		if c.Progress != nil {
			c.Progress(tool.Name)
		}
		if err := c.checkOne(tool); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (c Checker) checkOne(tool Tool) error {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if _, err := lookPath(tool.Name); err != nil {
		return fmt.Errorf("%s: %w", tool.Name, ErrNotFound)
	}
	if tool.Constraint == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(tool.Constraint)
	if err != nil {
		return fmt.Errorf("%s: invalid version constraint %q: %w", tool.Name, tool.Constraint, err)
	}

	installed, err := c.installedVersion(tool.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", tool.Name, err)
	}
	if !constraint.Check(installed) {
		return fmt.Errorf("%s: installed version %s does not satisfy %q", tool.Name, installed, tool.Constraint)
	}
	return nil
}

// versionPattern matches the first dotted version number in a tool's
// --version banner, e.g. "git version 2.39.2" or "Mercurial ... (version 6.4)".
var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

func (c Checker) installedVersion(name string) (*semver.Version, error) {
	res, err := c.Runner.Run(name, "--version")
	if err != nil {
		return nil, fmt.Errorf("probing version: %w", err)
	}

	raw := versionPattern.FindString(res.StdoutString(true))
	if raw == "" {
		return nil, fmt.Errorf("no version number in %q", res.StdoutString(true))
	}

	installed, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", raw, err)
	}
	return installed, nil
}
