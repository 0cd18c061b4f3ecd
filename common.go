package xgbsys

import (
	"context"
	"fmt"
)

// runCommonBuild executes the configure, build, install and find steps in order.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. Seal config.Options so the option set cannot change mid-build
//  3. Call ConfigureFunc, BuildFunc and InstallFunc
//  4. Call FindFunc on the install directory
//  5. Return BuildResult with Success=true
//
// If any step fails, processing stops and the error is returned with
// Success=false. Later steps are never started, so a failed configure never
// leaves a half-installed prefix behind for the binding step to pick up.
func runCommonBuild(ctx context.Context, config *BuildConfig, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Success:    false,
		Output:     []string{},
		InstallDir: config.InstallDir,
	}

	if config.Options == nil {
		err := fmt.Errorf("no configuration options for %s", config.SourceDir)
		result.Error = err
		return result, err
	}
	config.Options.Seal()

	for _, step := range []func(context.Context, *BuildConfig, *BuildResult) error{
		steps.ConfigureFunc,
		steps.BuildFunc,
		steps.InstallFunc,
	} {
		if step == nil {
			continue
		}
		if err := step(ctx, config, result); err != nil {
			result.Error = err
			return result, err
		}
	}

	archives, err := steps.FindFunc(config.InstallDir)
	if err != nil {
		result.Error = &StageError{Stage: StageDiscovery, Path: config.InstallDir, Err: err}
		return result, result.Error
	}

	result.Archives = archives
	result.Success = true
	return result, nil
}
