package xgbsys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

// BuildError creates a standardized build error with output context.
//
// The native tool's output is kept verbatim after the summary line:
//
//	CMake configure failed: exit status 1
//
//	Build output:
//	-- The CXX compiler identification is unknown
//	CMake Error at CMakeLists.txt:2 (project):
//
// With no output only the summary line is returned.
func BuildError(step string, output []string, err error) error {
	outputStr := strings.TrimRight(strings.Join(output, "\n"), "\n")

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s failed: %v", step, err)
	} else {
		prefix = fmt.Sprintf("%s failed", step)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

// nativeError wraps a failed subprocess so callers can read its exit status.
func nativeError(step string, output []string, err error) error {
	return &exitError{err: BuildError(step, output, err), status: sh.ExitStatus(err)}
}

// ExitStatus returns the exit status carried by err, 0 for nil and 1 for
// errors that did not come from a native tool.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var status interface{ ExitStatus() int }
	if errors.As(err, &status) {
		return status.ExitStatus()
	}
	return 1
}

func splitLines(output []byte) []string {
	s := strings.TrimRight(string(output), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
