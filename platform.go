package xgbsys

import (
	"path/filepath"
	"slices"
)

// Layout holds the directories the resolver and the link planner derive paths from.
type Layout struct {
	// StagedRoot is <out>/xgboost, the copied source tree.
	StagedRoot string `json:"staged_root" yaml:"staged_root"`
	// InstallDir is the cmake install prefix, normally <out>.
	InstallDir string `json:"install_dir" yaml:"install_dir"`
	// CUDARoot is the CUDA toolkit root, e.g. /usr/local/cuda.
	CUDARoot string `json:"cuda_root,omitempty" yaml:"cuda_root,omitempty"`
}

// DefaultCUDARoot is used when no CUDA toolkit root is configured.
const DefaultCUDARoot = "/usr/local/cuda"

func (l Layout) cudaRoot() string {
	if l.CUDARoot == "" {
		return DefaultCUDARoot
	}
	return l.CUDARoot
}

// BaseIncludes returns the header directories every build and binding uses.
func (l Layout) BaseIncludes() []string {
	return []string{
		filepath.Join(l.StagedRoot, "include"),
		filepath.Join(l.StagedRoot, "rabit", "include"),
		filepath.Join(l.StagedRoot, "dmlc-core", "include"),
	}
}

// PlatformDecisions is everything that varies by target and feature. It is
// computed once by Resolve and read by both the build driver and the link
// planner.
type PlatformDecisions struct {
	Target   BuildTarget `json:"target" yaml:"target"`
	Features []Feature   `json:"features,omitempty" yaml:"features,omitempty"`
	Probe    Toolchain   `json:"probe" yaml:"probe"`

	// Includes is the base include set followed by ExtraIncludes.
	Includes      []string `json:"includes" yaml:"includes"`
	ExtraIncludes []string `json:"extra_includes,omitempty" yaml:"extra_includes,omitempty"`

	CompilerOverrides []ConfigOption `json:"compiler_overrides,omitempty" yaml:"compiler_overrides,omitempty"`
	FeatureOptions    []ConfigOption `json:"feature_options,omitempty" yaml:"feature_options,omitempty"`

	// CXXRuntime links the C++ standard library (step b of the link plan).
	CXXRuntime []Directive `json:"cxx_runtime" yaml:"cxx_runtime"`
	// ParallelRuntime links OpenMP, preceded by its search path when needed (step c).
	ParallelRuntime []Directive `json:"parallel_runtime" yaml:"parallel_runtime"`
	// Accelerator holds the CUDA search path and runtime archive (step f).
	Accelerator []Directive `json:"accelerator,omitempty" yaml:"accelerator,omitempty"`

	// BuildEnv is set in the environment of every cmake invocation. With CUDA
	// it points cmake's toolkit lookup and nvcc at the configured root.
	BuildEnv map[string]string `json:"build_env,omitempty" yaml:"build_env,omitempty"`
}

// Resolve evaluates the platform decision table. It performs no I/O: the
// toolchain probe result is passed in.
func Resolve(target BuildTarget, features FeatureSet, probe Toolchain, layout Layout) PlatformDecisions {
	d := PlatformDecisions{
		Target:   target,
		Features: features.List(),
		Probe:    probe,
	}

	if target.IsApple() {
		d.CXXRuntime = []Directive{Library(LinkDefault, "c++")}
		if probe.Available() {
			d.ParallelRuntime = append(d.ParallelRuntime, SearchPath(LinkNative, probe.LibOMPDir()))
		}
		d.ParallelRuntime = append(d.ParallelRuntime, Library(LinkDylib, "omp"))
	} else {
		d.CXXRuntime = []Directive{
			CXXFlags("-std=c++" + CXXStandard),
			Library(LinkDefault, "stdc++fs"),
			Library(LinkDefault, "stdc++"),
		}
		d.ParallelRuntime = []Directive{Library(LinkDylib, "gomp")}
	}

	if target.IsAppleDesktop() && probe.Available() {
		llvm := probe.LLVMDir()
		d.CompilerOverrides = []ConfigOption{
			{Name: "CMAKE_C_COMPILER", Value: filepath.Join(llvm, "bin", "clang")},
			{Name: "CMAKE_CXX_COMPILER", Value: filepath.Join(llvm, "bin", "clang++")},
			{Name: "OPENMP_LIBRARIES", Value: filepath.Join(llvm, "lib")},
			{Name: "OPENMP_INCLUDES", Value: filepath.Join(llvm, "include")},
		}
	}

	if features.CUDA() {
		cuda := layout.cudaRoot()
		d.ExtraIncludes = []string{filepath.Join(cuda, "include")}
		d.FeatureOptions = []ConfigOption{
			{Name: "USE_CUDA", Value: "ON"},
			{Name: "BUILD_WITH_CUDA", Value: "ON"},
			{Name: "BUILD_WITH_CUDA_CUB", Value: "ON"},
		}
		d.Accelerator = []Directive{
			SearchPath(LinkDefault, filepath.Join(cuda, "lib64")),
			Library(LinkStatic, CUDARuntimeLibrary),
		}
		d.BuildEnv = map[string]string{
			"CUDAToolkit_ROOT": cuda,
			"CUDACXX":          filepath.Join(cuda, "bin", "nvcc"),
		}
	}

	d.Includes = append(layout.BaseIncludes(), d.ExtraIncludes...)
	return d
}

// ConfigOptions assembles the cmake option set: the base options, then the
// feature options, then any compiler overrides.
func (d PlatformDecisions) ConfigOptions() (*ConfigOptionSet, error) {
	set := NewConfigOptionSet()
	if err := set.DefineAll(d.FeatureOptions...); err != nil {
		return nil, err
	}
	if err := set.DefineAll(d.CompilerOverrides...); err != nil {
		return nil, err
	}
	return set, nil
}

// OverridesCompiler reports whether cmake is pointed at a specific compiler.
func (d PlatformDecisions) OverridesCompiler() bool {
	return slices.ContainsFunc(d.CompilerOverrides, func(o ConfigOption) bool {
		return o.Name == "CMAKE_CXX_COMPILER"
	})
}
