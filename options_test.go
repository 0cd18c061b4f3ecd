package xgbsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptionSetBase(t *testing.T) {
	set := NewConfigOptionSet()
	assert.Equal(t, []string{"-DBUILD_STATIC_LIB=ON", "-DCMAKE_CXX_STANDARD=17"}, set.Args())
	assert.Equal(t, "-DBUILD_STATIC_LIB=ON -DCMAKE_CXX_STANDARD=17", set.String())
}

func TestConfigOptionSetRedefineKeepsPosition(t *testing.T) {
	set := NewConfigOptionSet()
	require.NoError(t, set.Define("USE_CUDA", "ON"))
	require.NoError(t, set.Define("BUILD_STATIC_LIB", "OFF"))

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"-DBUILD_STATIC_LIB=OFF", "-DCMAKE_CXX_STANDARD=17", "-DUSE_CUDA=ON"}, set.Args())

	v, ok := set.Get("USE_CUDA")
	assert.True(t, ok)
	assert.Equal(t, "ON", v)
	_, ok = set.Get("MISSING")
	assert.False(t, ok)
}

func TestConfigOptionSetSealed(t *testing.T) {
	set := NewConfigOptionSet()
	set.Seal()
	set.Seal()

	assert.True(t, set.Sealed())
	assert.ErrorIs(t, set.Define("USE_CUDA", "ON"), ErrOptionsSealed)
	assert.ErrorIs(t, set.DefineAll(ConfigOption{Name: "A", Value: "1"}), ErrOptionsSealed)
	assert.Equal(t, 2, set.Len())
}

func TestConfigOptionSetRejectsEmptyName(t *testing.T) {
	assert.Error(t, NewConfigOptionSet().Define("", "x"))
}

func TestConfigOptionSetOptionsIsACopy(t *testing.T) {
	set := NewConfigOptionSet()
	opts := set.Options()
	opts[0].Value = "OFF"

	v, _ := set.Get("BUILD_STATIC_LIB")
	assert.Equal(t, "ON", v)
}

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		in   string
		want []Feature
	}{
		{"", nil},
		{"cuda", []Feature{FeatureCUDA}},
		{"CUDA, cuda", []Feature{FeatureCUDA}},
		{" cuda ", []Feature{FeatureCUDA}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFeatures(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.List())
			assert.Equal(t, len(tc.want) > 0, got.CUDA())
		})
	}

	_, err := ParseFeatures("cuda,metal")
	assert.ErrorIs(t, err, ErrUnknownFeature)
	assert.Contains(t, err.Error(), "metal")
}

func TestFeatureSetString(t *testing.T) {
	assert.Equal(t, "cuda", NewFeatureSet(FeatureCUDA, FeatureCUDA).String())
	assert.Equal(t, "", NewFeatureSet().String())
}
