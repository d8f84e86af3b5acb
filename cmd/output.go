package cmd

import (
	"io"
	"os"
)

// Command output is resolved through these indirections so tests can
// capture what the orchestrator and subcommands print. The target's own
// test output passes through the same writers untouched.
var (
	outWriterFunc = func() io.Writer { return os.Stdout }
	errWriterFunc = func() io.Writer { return os.Stderr }
)

func init() {
	// Route through the root command so SetOut/SetErr in tests are honored.
	outWriterFunc = func() io.Writer { return rootCmd.OutOrStdout() }
	errWriterFunc = func() io.Writer { return rootCmd.ErrOrStderr() }
}

func outWriter() io.Writer {
	return outWriterFunc()
}

func errWriter() io.Writer {
	return errWriterFunc()
}
