package xgbsys

import (
	"fmt"
	"os/exec"
	"strings"
)

// Swapped out by tests.
var (
	execLookPath       = exec.LookPath
	execCommandContext = exec.CommandContext
)

// ToolChecker is implemented by builders that depend on external tools.
//
// Check tools before building to fail with a clear message instead of a
// cryptic exec error halfway through a build:
//
//	if checker, ok := builder.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this builder needs.
	RequiredTools() []ToolRequirement

	// CheckTools returns nil if every required tool is found. Optional tools
	// never cause an error.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name: "c++",
//	    Alternatives: []string{"clang++", "g++"},
//	    Purpose: "C++ compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "cmake").
	Name string

	// Alternatives can satisfy the requirement in place of Name.
	Alternatives []string

	// Optional tools are looked up but never reported as missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	_, err := execLookPath(tool)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// MissingTools returns the names of required tools for which neither the
// primary name nor any alternative is found.
func MissingTools(requirements []ToolRequirement) []string {
	var missing []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		for _, alt := range req.Alternatives {
			if found {
				break
			}
			found = CheckToolAvailable(alt) == nil
		}

		if !found && !req.Optional {
			missing = append(missing, req.Name)
		}
	}

	return missing
}

// CheckRequiredTools verifies all required tools are available.
//
// Single missing tool:
//
//	cmake not found in PATH (required for: CMake build system)
//
// Multiple missing tools:
//
//	missing required tools: cmake (CMake build system), c++ (C++ compiler)
func CheckRequiredTools(requirements []ToolRequirement) error {
	missing := MissingTools(requirements)
	if len(missing) == 0 {
		return nil
	}

	purpose := make(map[string]string, len(requirements))
	for _, req := range requirements {
		purpose[req.Name] = req.Purpose
	}

	if len(missing) == 1 {
		if p := purpose[missing[0]]; p != "" {
			return fmt.Errorf("%s not found in PATH (required for: %s)", missing[0], p)
		}
		return fmt.Errorf("%s not found in PATH", missing[0])
	}

	described := make([]string, 0, len(missing))
	for _, name := range missing {
		if p := purpose[name]; p != "" {
			described = append(described, fmt.Sprintf("%s (%s)", name, p))
		} else {
			described = append(described, name)
		}
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(described, ", "))
}
