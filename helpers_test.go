package xgbsys

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildError(t *testing.T) {
	tests := []struct {
		name   string
		step   string
		output []string
		err    error
		want   string
	}{
		{
			name:   "with output",
			step:   "CMake configure",
			output: []string{"-- The CXX compiler identification is unknown", "CMake Error at CMakeLists.txt:2 (project):", ""},
			err:    errors.New("exit status 1"),
			want:   "CMake configure failed: exit status 1\n\nBuild output:\n-- The CXX compiler identification is unknown\nCMake Error at CMakeLists.txt:2 (project):",
		},
		{
			name: "without output",
			step: "CMake install",
			err:  errors.New("exit status 2"),
			want: "CMake install failed: exit status 2",
		},
		{
			name:   "without error",
			step:   "bindgen",
			output: []string{"warning: unused"},
			want:   "bindgen failed\n\nBuild output:\nwarning: unused",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, BuildError(tc.step, tc.output, tc.err), tc.want)
		})
	}
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(errors.New("plain")))

	native := &exitError{err: errors.New("CMake build failed"), status: 3}
	wrapped := fmt.Errorf("build: %w", &StageError{Stage: StageBuild, Err: native})
	assert.Equal(t, 3, ExitStatus(wrapped))
	assert.Equal(t, StageBuild, FailedStage(wrapped))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(nil))
	assert.Nil(t, splitLines([]byte("\n\n")))
	assert.Equal(t, []string{"a", "", "b"}, splitLines([]byte("a\n\nb\n")))
}

func TestCheckRequiredTools(t *testing.T) {
	orig := execLookPath
	t.Cleanup(func() { execLookPath = orig })

	installed := map[string]bool{"g++": true}
	execLookPath = func(name string) (string, error) {
		if installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}

	cmake := ToolRequirement{Name: "cmake", Purpose: "CMake build system"}
	cxx := ToolRequirement{Name: "c++", Alternatives: []string{"clang++", "g++"}, Purpose: "C++ compiler"}
	ninja := ToolRequirement{Name: "ninja", Optional: true}
	bindgen := ToolRequirement{Name: "bindgen"}

	assert.NoError(t, CheckRequiredTools([]ToolRequirement{cxx, ninja}))
	assert.EqualError(t, CheckRequiredTools([]ToolRequirement{cmake, cxx}),
		"cmake not found in PATH (required for: CMake build system)")
	assert.EqualError(t, CheckRequiredTools([]ToolRequirement{bindgen}), "bindgen not found in PATH")

	installed = map[string]bool{}
	err := CheckRequiredTools([]ToolRequirement{cmake, cxx, ninja, bindgen})
	assert.EqualError(t, err, "missing required tools: cmake (CMake build system), c++ (C++ compiler), bindgen")
	assert.True(t, strings.HasPrefix(err.Error(), "missing required tools"))
	assert.Equal(t, []string{"cmake", "c++", "bindgen"}, MissingTools([]ToolRequirement{cmake, cxx, ninja, bindgen}))
}
