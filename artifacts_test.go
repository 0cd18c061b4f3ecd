package xgbsys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("!<arch>\n"), 0o644))
}

func TestDiscover(t *testing.T) {
	out := t.TempDir()
	layout := Layout{StagedRoot: filepath.Join(out, "xgboost"), InstallDir: out}

	touch(t, filepath.Join(out, "lib", "libxgboost.a"))
	touch(t, filepath.Join(out, "xgboost", "dmlc-core", "libdmlc.a"))

	a, err := Discover(layout)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(out, "xgboost", "dmlc-core")}, a.SourceSearchPaths)
	assert.Equal(t, []string{out, filepath.Join(out, "lib")}, a.InstallSearchPaths)
	assert.Equal(t, map[string]string{
		"xgboost": filepath.Join(out, "lib", "libxgboost.a"),
		"dmlc":    filepath.Join(out, "xgboost", "dmlc-core", "libdmlc.a"),
	}, a.StaticLibs)
	assert.Empty(t, a.Missing())
}

func TestDiscoverMSVCArchiveNames(t *testing.T) {
	out := t.TempDir()
	touch(t, filepath.Join(out, "lib", "xgboost.lib"))

	a, err := Discover(Layout{StagedRoot: filepath.Join(out, "xgboost"), InstallDir: out})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "lib", "xgboost.lib"), a.StaticLibs["xgboost"])
	assert.Equal(t, []string{"dmlc"}, a.Missing())
}

func TestDiscoverRequiresMainArchive(t *testing.T) {
	out := t.TempDir()
	touch(t, filepath.Join(out, "lib", "libdmlc.a"))

	a, err := Discover(Layout{StagedRoot: filepath.Join(out, "xgboost"), InstallDir: out})
	require.Error(t, err)
	assert.Equal(t, StageDiscovery, FailedStage(err))
	assert.Contains(t, err.Error(), "libxgboost.a")
	assert.Equal(t, []string{"xgboost"}, a.Missing())
}

func TestFindStaticArchives(t *testing.T) {
	out := t.TempDir()
	touch(t, filepath.Join(out, "lib", "libxgboost.a"))
	touch(t, filepath.Join(out, "lib64", "libdmlc.a"))
	touch(t, filepath.Join(out, "lib", "cmake", "xgboost-config.cmake"))

	archives, err := findStaticArchives(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(out, "lib", "libxgboost.a"),
		filepath.Join(out, "lib64", "libdmlc.a"),
	}, archives)
}
