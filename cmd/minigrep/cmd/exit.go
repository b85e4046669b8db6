package cmd

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1 // file could not be opened or read
	exitUsage = 2 // bad arguments, flags, or config file
)

// exitErr signals a specific exit code. The message has already been
// written to stderr by the time it is returned.
type exitErr struct {
	code int
	err  error
}

func (e exitErr) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e exitErr) Unwrap() error { return e.err }

// ExitCode extracts the exit code from an exitErr.
// Returns -1 if the error is not an exitErr.
func ExitCode(err error) int {
	var ee exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}
