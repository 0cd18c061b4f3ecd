package xgbsys

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageEnv       Stage = "env"
	StageStaging   Stage = "staging"
	StageToolCheck Stage = "toolcheck"
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StageInstall   Stage = "install"
	StageDiscovery Stage = "discovery"
	StageBindings  Stage = "bindings"
	StageWrite     Stage = "write"
	StageEmit      Stage = "emit"
)

var (
	// ErrMissingOutDir is returned when neither XGBSYS_OUT_DIR nor OUT_DIR is set.
	ErrMissingOutDir = errors.New("output directory not set (XGBSYS_OUT_DIR or OUT_DIR)")

	// ErrUnknownFeature is returned for feature names other than the supported ones.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrOptionsSealed is returned when defining an option on a set already handed to cmake.
	ErrOptionsSealed = errors.New("configuration options already sealed")

	// ErrLinkOrder is returned by LinkPlan.Validate when the internal archives are not emitted in LinkOrder.
	ErrLinkOrder = errors.New("static library link order violated")

	// ErrNoDeclarations is returned when the header yields nothing to bind.
	ErrNoDeclarations = errors.New("no declarations found")
)

// StageError records which pipeline stage failed and on what path.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// exitError carries a native tool's exit status alongside its formatted output.
type exitError struct {
	err    error
	status int
}

func (e *exitError) Error() string   { return e.err.Error() }
func (e *exitError) Unwrap() error   { return e.err }
func (e *exitError) ExitStatus() int { return e.status }

// FailedStage returns the stage recorded in err, or "" if err carries none.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
