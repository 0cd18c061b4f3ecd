package xgbsys

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Feature is an optional capability of the build.
type Feature string

// FeatureCUDA enables GPU support through the CUDA toolkit.
const FeatureCUDA Feature = "cuda"

var knownFeatures = []Feature{FeatureCUDA}

// FeatureSet is an immutable set of enabled features.
type FeatureSet struct {
	enabled []Feature
}

// NewFeatureSet returns a set holding the given features.
func NewFeatureSet(features ...Feature) FeatureSet {
	set := lo.Uniq(features)
	slices.Sort(set)
	return FeatureSet{enabled: set}
}

// ParseFeatures parses a comma or space separated feature list such as "cuda".
func ParseFeatures(list string) (FeatureSet, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var features []Feature
	for _, field := range fields {
		f := Feature(strings.ToLower(strings.TrimSpace(field)))
		if !slices.Contains(knownFeatures, f) {
			return FeatureSet{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownFeature, field, strings.Join(lo.Map(knownFeatures, func(f Feature, _ int) string { return string(f) }), ", "))
		}
		features = append(features, f)
	}
	return NewFeatureSet(features...), nil
}

// Has reports whether f is enabled.
func (s FeatureSet) Has(f Feature) bool {
	return slices.Contains(s.enabled, f)
}

// CUDA reports whether the cuda feature is enabled.
func (s FeatureSet) CUDA() bool { return s.Has(FeatureCUDA) }

// List returns the enabled features in sorted order, or nil.
func (s FeatureSet) List() []Feature {
	if len(s.enabled) == 0 {
		return nil
	}
	return slices.Clone(s.enabled)
}

// String renders the set as a comma separated list.
func (s FeatureSet) String() string {
	return strings.Join(lo.Map(s.enabled, func(f Feature, _ int) string { return string(f) }), ",")
}
