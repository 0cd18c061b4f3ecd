package xgbsys

import (
	"context"
	"log/slog"
)

// Layout of the vendored XGBoost tree and the values shared by the build and
// binding steps.
const (
	// LibraryName is the directory the source is staged into and the main archive name.
	LibraryName = "xgboost"

	// DMLCLibrary is the portable-ML-data helper archive (dmlc-core).
	DMLCLibrary = "dmlc"

	// CXXStandard is pinned for both the CMake build and the binding generator.
	CXXStandard = "17"

	// CUDARuntimeLibrary is the static CUDA runtime linked when the cuda feature is on.
	CUDARuntimeLibrary = "cudart_static"
)

// LinkOrder lists the internal static archives in the order they are emitted.
var LinkOrder = []string{DMLCLibrary, LibraryName}

// BuildResult contains the output and status of a native build.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Output lines captured from cmake (stdout/stderr)
//   - InstallDir where cmake installed the library
//   - Archives found under the install directory
//   - Error information if the build failed
type BuildResult struct {
	Success             bool     // True if build completed successfully
	Output              []string // Lines of output from the build process
	InstallDir          string   // cmake install prefix
	Archives            []string // Static archives found under InstallDir
	Error               error    // Error if build failed, nil otherwise
	MissingDependencies []string // Names of build tools that were missing
}

// BuildConfig contains configuration for one native build invocation.
//
// Source paths:
//   - SourceDir: the staged XGBoost tree (contains CMakeLists.txt)
//   - BuildDir: cmake binary directory
//   - InstallDir: cmake install prefix, returned on success
//
// Build configuration:
//   - Options: the sealed -D option set, consumed exactly once
//   - Env: environment variables set during build
//   - Generator: cmake generator (empty selects the platform default)
//   - Parallel: number of parallel jobs for cmake --build (0 = default)
type BuildConfig struct {
	// Source paths
	SourceDir  string
	BuildDir   string
	InstallDir string

	// Build arguments
	Options   *ConfigOptionSet
	Env       map[string]string
	Generator string

	// Build options
	Verbose  bool
	Parallel int

	Logger *slog.Logger
}

// CommonBuildSteps defines the configure, build, install and find steps of a
// native build.
//
// Example usage in a builder:
//
//	return runCommonBuild(ctx, config, CommonBuildSteps{
//	    ConfigureFunc: b.runCmake,
//	    BuildFunc:     b.runBuild,
//	    InstallFunc:   b.runInstall,
//	    FindFunc:      findStaticArchives,
//	})
type CommonBuildSteps struct {
	// ConfigureFunc prepares the build tree (cmake -S -B)
	ConfigureFunc func(ctx context.Context, config *BuildConfig, result *BuildResult) error

	// BuildFunc compiles the library (cmake --build)
	BuildFunc func(ctx context.Context, config *BuildConfig, result *BuildResult) error

	// InstallFunc copies headers and archives into the install prefix (cmake --install)
	InstallFunc func(ctx context.Context, config *BuildConfig, result *BuildResult) error

	// FindFunc locates the compiled archives after install completes
	FindFunc func(installDir string) ([]string, error)
}
