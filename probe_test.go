package xgbsys

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeToolchain(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	darwin := mustTarget(t, "aarch64-apple-darwin")

	tests := []struct {
		name   string
		target BuildTarget
		prefix string
		want   ProbeResult
	}{
		{"linux never probes", mustTarget(t, "x86_64-unknown-linux-gnu"), dir, ProbeNotApplicable},
		{"ios never probes", mustTarget(t, "aarch64-apple-ios"), dir, ProbeNotApplicable},
		{"prefix exists", darwin, dir, ProbeAvailable},
		{"prefix missing", darwin, filepath.Join(dir, "missing"), ProbeUnavailable},
		{"prefix is a file", darwin, file, ProbeUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var statted []string
			stat := func(name string) (fs.FileInfo, error) {
				statted = append(statted, name)
				return os.Stat(name)
			}

			got := ProbeToolchain(tc.target, tc.prefix, stat)
			assert.Equal(t, tc.want, got.Result)
			assert.Equal(t, tc.want == ProbeAvailable, got.Available())
			if tc.want == ProbeNotApplicable {
				assert.Empty(t, statted)
				assert.Empty(t, got.Prefix)
			} else {
				assert.Equal(t, []string{tc.prefix}, statted)
				assert.Equal(t, tc.prefix, got.Prefix)
			}
		})
	}
}

func TestProbeToolchainDefaultPrefix(t *testing.T) {
	var statted string
	stat := func(name string) (fs.FileInfo, error) {
		statted = name
		return nil, fs.ErrNotExist
	}

	got := ProbeToolchain(mustTarget(t, "x86_64-apple-darwin"), "", stat)
	assert.Equal(t, DefaultBrewPrefix, statted)
	assert.Equal(t, ProbeUnavailable, got.Result)
}

func TestToolchainDirs(t *testing.T) {
	tc := Toolchain{Result: ProbeAvailable, Prefix: "/opt/homebrew"}
	assert.Equal(t, "/opt/homebrew/opt/llvm", tc.LLVMDir())
	assert.Equal(t, "/opt/homebrew/opt/libomp/lib", tc.LibOMPDir())

	text, err := ProbeUnavailable.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "unavailable", string(text))
	assert.Equal(t, "not-applicable", ProbeNotApplicable.String())

	var parsed ProbeResult
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, ProbeUnavailable, parsed)
	assert.Error(t, parsed.UnmarshalText([]byte("maybe")))
}
