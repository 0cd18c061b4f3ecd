package xgbsys

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

// StagedSource is the writable copy of the vendored source under the output directory.
type StagedSource struct {
	Root   string
	Copied bool
}

// Stager copies the vendored XGBoost tree into the build output directory.
type Stager struct {
	Logger *slog.Logger

	// copy is copyTree unless a test replaces it.
	copy func(src, dst string) error
}

// NewStager returns a Stager that logs to logger (nil discards).
func NewStager(logger *slog.Logger) *Stager {
	return &Stager{Logger: orDiscard(logger), copy: copyTree}
}

// Stage ensures <outDir>/xgboost holds a copy of source.
//
// An existing destination is reused untouched. Otherwise the tree is copied
// into a temporary sibling directory and renamed into place, so an
// interrupted copy never leaves a destination that a later call would accept.
func (s *Stager) Stage(source, outDir string) (*StagedSource, error) {
	dest := filepath.Join(outDir, LibraryName)
	logger := orDiscard(s.Logger)

	if dirExists(dest) {
		logger.Debug("source already staged", "dest", dest)
		return &StagedSource{Root: dest}, nil
	}

	if !dirExists(source) {
		return nil, &StageError{Stage: StageStaging, Path: dest, Err: fmt.Errorf("source %s is not a directory", source)}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &StageError{Stage: StageStaging, Path: dest, Err: err}
	}

	tmp, err := os.MkdirTemp(outDir, "."+LibraryName+"-stage-*")
	if err != nil {
		return nil, &StageError{Stage: StageStaging, Path: dest, Err: err}
	}

	copyFn := s.copy
	if copyFn == nil {
		copyFn = copyTree
	}

	logger.Info("staging source", "source", source, "dest", dest)
	if err := copyFn(source, tmp); err != nil {
		_ = sh.Rm(tmp)
		return nil, &StageError{Stage: StageStaging, Path: dest, Err: fmt.Errorf("copy from %s: %w", source, err)}
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = sh.Rm(tmp)
		return nil, &StageError{Stage: StageStaging, Path: dest, Err: err}
	}

	return &StagedSource{Root: dest, Copied: true}, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
