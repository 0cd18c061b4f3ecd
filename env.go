package xgbsys

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Environment variables read by LoadEnv.
const (
	EnvTarget     = "XGBSYS_TARGET"
	EnvOutDir     = "XGBSYS_OUT_DIR"
	EnvFeatures   = "XGBSYS_FEATURES"
	EnvSourceDir  = "XGBSYS_SOURCE_DIR"
	EnvHeader     = "XGBSYS_HEADER"
	EnvBrewPrefix = "XGBSYS_BREW_PREFIX"
	EnvCUDARoot   = "XGBSYS_CUDA_ROOT"
	EnvPackage    = "XGBSYS_PACKAGE"
	EnvJobs       = "XGBSYS_JOBS"
	EnvGenerator  = "CMAKE_GENERATOR"
)

// Fallback names shared with other native build tooling.
const (
	envTargetFallback   = "TARGET"
	envOutDirFallback   = "OUT_DIR"
	envCUDARootFallback = "CUDA_HOME"
)

// Defaults for values that are not set in the environment.
const (
	DefaultSourceDir = "xgboost"
	DefaultHeader    = "wrapper.h"
	DefaultPackage   = "xgboost"
	DefaultGenerator = "Unix Makefiles"
)

// LookupFunc reads one environment variable; os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// Env is the build environment captured once at the start of a run.
type Env struct {
	Target     BuildTarget
	Features   FeatureSet
	OutDir     string
	SourceDir  string
	Header     string
	BrewPrefix string
	CUDARoot   string
	Package    string
	Jobs       int
	Generator  string
}

// LoadEnv reads the build environment through lookup.
//
// Relative OutDir, SourceDir and Header values are made absolute against the
// working directory so later stages never depend on it.
func LoadEnv(lookup LookupFunc) (*Env, error) {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	triple := orDefault(get(EnvTarget, envTargetFallback), DefaultTriple(runtime.GOOS, runtime.GOARCH))
	target, err := ParseTarget(triple)
	if err != nil {
		return nil, &StageError{Stage: StageEnv, Err: err}
	}

	features, err := ParseFeatures(get(EnvFeatures))
	if err != nil {
		return nil, &StageError{Stage: StageEnv, Err: err}
	}

	env := &Env{
		Target:     target,
		Features:   features,
		OutDir:     get(EnvOutDir, envOutDirFallback),
		SourceDir:  orDefault(get(EnvSourceDir), DefaultSourceDir),
		Header:     orDefault(get(EnvHeader), DefaultHeader),
		BrewPrefix: orDefault(get(EnvBrewPrefix), DefaultBrewPrefix),
		CUDARoot:   orDefault(get(EnvCUDARoot, envCUDARootFallback), DefaultCUDARoot),
		Package:    orDefault(get(EnvPackage), DefaultPackage),
		Generator:  orDefault(get(EnvGenerator), DefaultGenerator),
	}

	if jobs := get(EnvJobs); jobs != "" {
		n, err := strconv.Atoi(jobs)
		if err != nil || n < 0 {
			return nil, &StageError{Stage: StageEnv, Err: fmt.Errorf("invalid %s %q", EnvJobs, jobs)}
		}
		env.Jobs = n
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// Validate checks required values and makes paths absolute.
func (e *Env) Validate() error {
	if e.OutDir == "" {
		return &StageError{Stage: StageEnv, Err: ErrMissingOutDir}
	}
	for _, p := range []*string{&e.OutDir, &e.SourceDir, &e.Header} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return &StageError{Stage: StageEnv, Path: *p, Err: err}
		}
		*p = abs
	}
	return nil
}

// StagedRoot is <out>/xgboost.
func (e *Env) StagedRoot() string { return filepath.Join(e.OutDir, LibraryName) }

// BuildDir is the cmake binary directory, <out>/build.
func (e *Env) BuildDir() string { return filepath.Join(e.OutDir, "build") }

// BindingsPath is where the generated binding file is written.
func (e *Env) BindingsPath() string { return filepath.Join(e.OutDir, "bindings.go") }

// LinkFlagsPath is where the generated cgo LDFLAGS file is written.
func (e *Env) LinkFlagsPath() string { return filepath.Join(e.OutDir, "link_flags.go") }

// Layout returns the directories derived from the environment.
func (e *Env) Layout() Layout {
	return Layout{
		StagedRoot: e.StagedRoot(),
		InstallDir: e.OutDir,
		CUDARoot:   e.CUDARoot,
	}
}
