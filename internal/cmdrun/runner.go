package cmdrun

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes external commands with shared logging and output handling.
// The zero value is usable: commands run in the current directory with the
// inherited environment and no invocation tracing.
type Runner struct {
	Verbose bool
	Dir     string
	Env     []string
	Logger  io.Writer

	// Wrap is prepended to every invocation, e.g. a coverage wrapper
	// such as "coverage run". The wrapper's exit status becomes the
	// command's exit status.
	Wrap []string
}

// Result contains captured stdout/stderr for a command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) withDefaults() Runner {
	if r.Logger == nil {
		r.Logger = os.Stderr
	}
	return r
}

func (r Runner) argv(name string, args []string) []string {
	full := make([]string, 0, len(r.Wrap)+1+len(args))
	full = append(full, r.Wrap...)
	full = append(full, name)
	full = append(full, args...)
	return full
}

func (r Runner) command(argv []string) *exec.Cmd {
	cmd := exec.Command(argv[0], argv[1:]...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func (r Runner) log(argv []string) {
	if !r.Verbose {
		return
	}
	r = r.withDefaults()
	fmt.Fprintf(r.Logger, "Running: %s\n", strings.Join(argv, " "))
}

func (r Runner) prepare(name string, args []string, log bool) *exec.Cmd {
	r = r.withDefaults()
	argv := r.argv(name, args)
	if log {
		r.log(argv)
	}
	return r.command(argv)
}

// Run executes a command and captures stdout/stderr.
func (r Runner) Run(name string, args ...string) (Result, error) {
	return r.run(name, args, false)
}

// RunLogged executes a command, logs when verbose, and captures stdout/stderr.
func (r Runner) RunLogged(name string, args ...string) (Result, error) {
	return r.run(name, args, true)
}

// RunWithWriters executes a command, optionally logs, and uses provided writers.
func (r Runner) RunWithWriters(log bool, stdout io.Writer, stderr io.Writer, name string, args ...string) error {
	return r.runWithWriters(name, args, log, stdout, stderr)
}

func (r Runner) run(name string, args []string, log bool) (Result, error) {
	cmd := r.prepare(name, args, log)
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

func (r Runner) runWithWriters(name string, args []string, log bool, stdout io.Writer, stderr io.Writer) error {
	cmd := r.prepare(name, args, log)
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}

	return cmd.Run()
}

// ExitCode extracts the child's exit status from a Run error.
// Returns 0 for nil, the process exit code for an exited child,
// and -1 when the command could not be started at all.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
