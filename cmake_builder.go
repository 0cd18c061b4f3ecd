package xgbsys

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	cmakeProgram  = "cmake"
	unixMakefiles = "Unix Makefiles"
	buildType     = "Release"
)

// CmakeBuilder handles the cmake configure, build and install of XGBoost.
type CmakeBuilder struct {
	// SkipCompilerCheck drops the C++ compiler from RequiredTools. Set it when
	// CMAKE_CXX_COMPILER points at a compiler outside PATH.
	SkipCompilerCheck bool
}

// NewCmakeBuilder returns a builder for the given platform decisions.
func NewCmakeBuilder(decisions PlatformDecisions) *CmakeBuilder {
	return &CmakeBuilder{SkipCompilerCheck: decisions.OverridesCompiler()}
}

// Name returns the builder name
func (b *CmakeBuilder) Name() string {
	return "CMake"
}

// RequiredTools lists cmake and, unless overridden, a C++ compiler.
func (b *CmakeBuilder) RequiredTools() []ToolRequirement {
	tools := []ToolRequirement{{Name: cmakeProgram, Purpose: "CMake build system"}}
	if !b.SkipCompilerCheck {
		tools = append(tools, ToolRequirement{
			Name:         "c++",
			Alternatives: []string{"clang++", "g++"},
			Purpose:      "C++ compiler",
		})
	}
	return tools
}

// CheckTools verifies the required tools are on PATH.
func (b *CmakeBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// Build runs cmake configure, build and install, then finds the installed archives.
func (b *CmakeBuilder) Build(ctx context.Context, config *BuildConfig) (*BuildResult, error) {
	if missing := MissingTools(b.RequiredTools()); len(missing) > 0 {
		err := &StageError{Stage: StageToolCheck, Err: b.CheckTools()}
		return &BuildResult{
			InstallDir:          config.InstallDir,
			Error:               err,
			MissingDependencies: missing,
		}, err
	}

	return runCommonBuild(ctx, config, CommonBuildSteps{
		ConfigureFunc: b.runConfigure,
		BuildFunc:     b.runBuild,
		InstallFunc:   b.runInstall,
		FindFunc:      findStaticArchives,
	})
}

// Clean removes the cmake binary directory.
func (b *CmakeBuilder) Clean(_ context.Context, config *BuildConfig) error {
	if config.BuildDir == "" {
		return nil
	}
	return sh.Rm(config.BuildDir)
}

// runConfigure executes cmake to generate the build tree
func (b *CmakeBuilder) runConfigure(ctx context.Context, config *BuildConfig, result *BuildResult) error {
	args := []string{
		"-S", config.SourceDir,
		"-B", config.BuildDir,
		fmt.Sprintf("-DCMAKE_INSTALL_PREFIX=%s", config.InstallDir),
		"-DCMAKE_BUILD_TYPE=" + buildType,
	}

	if generator := b.getGenerator(config); generator != "" {
		args = append(args, "-G", generator)
	}

	args = append(args, config.Options.Args()...)

	return b.run(ctx, config, result, StageConfigure, args)
}

// runBuild compiles the configured tree
func (b *CmakeBuilder) runBuild(ctx context.Context, config *BuildConfig, result *BuildResult) error {
	args := []string{"--build", config.BuildDir, "--config", buildType}

	if config.Parallel > 0 {
		args = append(args, "--parallel", fmt.Sprintf("%d", config.Parallel))
	}

	return b.run(ctx, config, result, StageBuild, args)
}

// runInstall copies headers and archives into the install prefix
func (b *CmakeBuilder) runInstall(ctx context.Context, config *BuildConfig, result *BuildResult) error {
	args := []string{"--install", config.BuildDir, "--config", buildType}
	return b.run(ctx, config, result, StageInstall, args)
}

func (b *CmakeBuilder) run(ctx context.Context, config *BuildConfig, result *BuildResult, stage Stage, args []string) error {
	logger := orDiscard(config.Logger)

	if config.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: cmake %s", strings.Join(args, " ")))
	}
	logger.Info("running cmake", "stage", stage, "args", args)

	cmd := execCommandContext(ctx, cmakeProgram, args...)
	cmd.Env = commandEnv(cmd.Env, config.Env)

	output, err := cmd.CombinedOutput()
	lines := splitLines(output)
	result.Output = append(result.Output, lines...)

	if err != nil {
		logger.Error("cmake failed", "stage", stage, "error", err)
		return &StageError{
			Stage: stage,
			Path:  config.BuildDir,
			Err:   nativeError(b.Name()+" "+string(stage), lines, err),
		}
	}

	return nil
}

// getGenerator returns the configured generator or the platform default
func (b *CmakeBuilder) getGenerator(config *BuildConfig) string {
	if config.Generator != "" {
		return config.Generator
	}

	switch runtime.GOOS {
	case "windows":
		// Let cmake pick the newest Visual Studio
		return ""
	default:
		return unixMakefiles
	}
}

// commandEnv appends extra to base, or to the process environment when base
// is nil.
func commandEnv(base []string, extra map[string]string) []string {
	env := base
	if env == nil {
		env = os.Environ()
	}
	for key, value := range extra {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}
