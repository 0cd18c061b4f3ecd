package xgbsys

import "context"

// Builder drives a native build of the staged source.
//
// CmakeBuilder is the production implementation. Pipeline accepts any Builder
// so a prebuilt tree or a test double can stand in for cmake.
//
// # Builder Lifecycle
//
//  1. Build() - configure, compile and install, then report the archives found
//  2. Clean() - remove the build tree so the next Build starts from scratch
type Builder interface {
	// Name returns the human-readable name of this builder.
	//
	// This name is used in error messages and logs.
	Name() string

	// Build compiles the library and returns the result.
	//
	// config.Options is sealed before the first command runs. Returns:
	//   - BuildResult with Success=true and Archives on success
	//   - BuildResult with Success=false and Error on failure
	Build(ctx context.Context, config *BuildConfig) (*BuildResult, error)

	// Clean removes build artifacts. The install prefix is left alone.
	Clean(ctx context.Context, config *BuildConfig) error
}
