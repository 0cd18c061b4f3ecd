package xgbsys

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linuxPlan(t *testing.T) LinkPlan {
	t.Helper()
	d := Resolve(mustTarget(t, "x86_64-unknown-linux-gnu"), NewFeatureSet(), Toolchain{}, testLayout)
	return BuildLinkPlan(d, testLayout, nil, LinkPlanOptions{})
}

func TestBuildLinkPlanLinuxOrder(t *testing.T) {
	plan := linuxPlan(t)
	require.NoError(t, plan.Validate())

	assert.Equal(t, []string{
		"xgbsys:link-search=/out/xgboost/lib",
		"xgbsys:link-search=/out/xgboost/lib64",
		"xgbsys:link-search=/out/xgboost/rabit/lib",
		"xgbsys:link-search=/out/xgboost/dmlc-core",
		"xgbsys:cxxflags=-std=c++17",
		"xgbsys:link-lib=stdc++fs",
		"xgbsys:link-lib=stdc++",
		"xgbsys:link-lib=dylib=gomp",
		"xgbsys:link-search=native=/out",
		"xgbsys:link-search=native=/out/lib",
		"xgbsys:link-search=native=/out/lib64",
		"xgbsys:link-lib=static=dmlc",
		"xgbsys:link-lib=static=xgboost",
	}, plan.Lines())

	assert.Equal(t, []string{"dmlc", "xgboost"}, plan.StaticLibs())
}

func TestBuildLinkPlanAppleOrder(t *testing.T) {
	d := Resolve(mustTarget(t, "aarch64-apple-darwin"), NewFeatureSet(FeatureCUDA), brewAvailable, testLayout)
	plan := BuildLinkPlan(d, testLayout, nil, LinkPlanOptions{})
	require.NoError(t, plan.Validate())

	lines := plan.Lines()
	index := func(line string) int {
		i := slices.Index(lines, line)
		require.GreaterOrEqual(t, i, 0, line)
		return i
	}

	cxx := index("xgbsys:link-lib=c++")
	ompSearch := index("xgbsys:link-search=native=/opt/homebrew/opt/libomp/lib")
	omp := index("xgbsys:link-lib=dylib=omp")
	install := index("xgbsys:link-search=native=/out")
	dmlc := index("xgbsys:link-lib=static=dmlc")
	xgb := index("xgbsys:link-lib=static=xgboost")
	cudart := index("xgbsys:link-lib=static=cudart_static")

	assert.True(t, index("xgbsys:link-search=/out/xgboost/dmlc-core") < cxx)
	assert.True(t, cxx < ompSearch && ompSearch < omp && omp < install)
	assert.True(t, install < dmlc && dmlc < xgb && xgb < cudart)
	assert.Equal(t, len(lines)-1, cudart)
	assert.NotContains(t, lines, "xgbsys:link-lib=stdc++")
}

func TestBuildLinkPlanUsesDiscoveredPaths(t *testing.T) {
	d := Resolve(mustTarget(t, "x86_64-unknown-linux-gnu"), NewFeatureSet(), Toolchain{}, testLayout)
	artifacts := &BuildArtifacts{
		SourceSearchPaths:  []string{"/out/xgboost/lib"},
		InstallSearchPaths: []string{"/out/lib"},
	}

	found := BuildLinkPlan(d, testLayout, artifacts, LinkPlanOptions{})
	assert.Equal(t, []Directive{
		SearchPath(LinkDefault, "/out/xgboost/lib"),
		CXXFlags("-std=c++17"),
		Library(LinkDefault, "stdc++fs"),
		Library(LinkDefault, "stdc++"),
		Library(LinkDylib, "gomp"),
		SearchPath(LinkNative, "/out/lib"),
		Library(LinkStatic, "dmlc"),
		Library(LinkStatic, "xgboost"),
	}, found.Directives)

	all := BuildLinkPlan(d, testLayout, artifacts, LinkPlanOptions{EmitAllSearchPaths: true})
	assert.Equal(t, linuxPlan(t).Directives, all.Directives)
}

func TestLinkPlanValidate(t *testing.T) {
	reversed := LinkPlan{Directives: []Directive{
		Library(LinkStatic, "xgboost"),
		Library(LinkStatic, "dmlc"),
	}}
	assert.ErrorIs(t, reversed.Validate(), ErrLinkOrder)

	missing := LinkPlan{Directives: []Directive{Library(LinkStatic, "xgboost")}}
	assert.ErrorIs(t, missing.Validate(), ErrLinkOrder)

	dynamic := LinkPlan{Directives: []Directive{
		Library(LinkDylib, "dmlc"),
		Library(LinkStatic, "xgboost"),
	}}
	assert.ErrorIs(t, dynamic.Validate(), ErrLinkOrder)
}

func TestLinkPlanWriteToRoundTrips(t *testing.T) {
	plan := linuxPlan(t)

	var buf bytes.Buffer
	n, err := plan.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	var parsed []Directive
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		d, err := ParseDirective(line)
		require.NoError(t, err)
		parsed = append(parsed, d)
	}
	assert.Equal(t, plan.Directives, parsed)
}

func TestLinkPlanLDFlags(t *testing.T) {
	assert.Equal(t, []string{
		"-L/out/xgboost/lib",
		"-L/out/xgboost/lib64",
		"-L/out/xgboost/rabit/lib",
		"-L/out/xgboost/dmlc-core",
		"-L/out",
		"-L/out/lib",
		"-L/out/lib64",
		"-Wl,--start-group",
		"-l:libdmlc.a",
		"-l:libxgboost.a",
		"-Wl,--end-group",
		"-lstdc++fs",
		"-lstdc++",
		"-lgomp",
	}, linuxPlan(t).LDFlags())

	d := Resolve(mustTarget(t, "aarch64-apple-darwin"), NewFeatureSet(), brewAvailable, testLayout)
	apple := BuildLinkPlan(d, testLayout, nil, LinkPlanOptions{}).LDFlags()
	assert.Equal(t, []string{"-ldmlc", "-lxgboost", "-lc++", "-lomp"}, apple[len(apple)-4:])
	assert.Contains(t, apple, "-L/opt/homebrew/opt/libomp/lib")
	assert.NotContains(t, apple, "-Wl,--start-group")
}

func TestLinkPlanLDFlagsRuntimesFollowArchives(t *testing.T) {
	d := Resolve(mustTarget(t, "x86_64-unknown-linux-gnu"), NewFeatureSet(FeatureCUDA), Toolchain{}, testLayout)
	flags := BuildLinkPlan(d, testLayout, nil, LinkPlanOptions{}).LDFlags()

	end := slices.Index(flags, "-Wl,--end-group")
	require.Greater(t, end, 0)
	assert.Less(t, slices.Index(flags, "-l:libcudart_static.a"), end)
	assert.Less(t, slices.Index(flags, "-l:libxgboost.a"), end)
	for _, lib := range []string{"-lstdc++fs", "-lstdc++", "-lgomp"} {
		assert.Greater(t, slices.Index(flags, lib), end, lib)
	}
	for i, f := range flags {
		if strings.HasPrefix(f, "-L") {
			assert.Less(t, i, slices.Index(flags, "-Wl,--start-group"), f)
		}
	}
}

func TestWriteLinkFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link_flags.go")
	require.NoError(t, linuxPlan(t).WriteLinkFlags(path, "xgboost"))

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(src)

	assert.True(t, strings.HasPrefix(text, "// Code generated by xgbsys for x86_64-unknown-linux-gnu. DO NOT EDIT."))
	assert.Contains(t, text, "package xgboost")
	assert.Contains(t, text, "// #cgo CXXFLAGS: -std=c++17\n")
	assert.Contains(t, text, "-Wl,--start-group -l:libdmlc.a -l:libxgboost.a -Wl,--end-group -lstdc++fs -lstdc++ -lgomp\n")
	assert.Contains(t, text, `import "C"`)
}

func TestWriteLinkFlagsRejectsBadOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link_flags.go")
	plan := LinkPlan{Directives: []Directive{Library(LinkStatic, "xgboost"), Library(LinkStatic, "dmlc")}}

	err := plan.WriteLinkFlags(path, "xgboost")
	assert.ErrorIs(t, err, ErrLinkOrder)
	assert.Equal(t, StageEmit, FailedStage(err))
	assert.NoFileExists(t, path)
}
