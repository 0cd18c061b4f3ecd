package xgbsys

import (
	"fmt"
	"slices"
	"strings"
)

// ConfigOption is a single cmake cache definition (-DName=Value).
type ConfigOption struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Arg renders the option as a cmake command-line argument.
func (o ConfigOption) Arg() string {
	return fmt.Sprintf("-D%s=%s", o.Name, o.Value)
}

// ConfigOptionSet is an insertion-ordered set of cmake options.
//
// The set is built up by the platform resolver and feature checks, then sealed
// when the build driver consumes it. Redefining a name replaces its value in
// place and keeps the original position.
type ConfigOptionSet struct {
	options []ConfigOption
	sealed  bool
}

// NewConfigOptionSet returns a set holding the base options every build needs:
// a static library and the pinned C++ standard.
func NewConfigOptionSet() *ConfigOptionSet {
	s := &ConfigOptionSet{}
	_ = s.Define("BUILD_STATIC_LIB", "ON")
	_ = s.Define("CMAKE_CXX_STANDARD", CXXStandard)
	return s
}

// Define adds or replaces an option. It fails once the set is sealed.
func (s *ConfigOptionSet) Define(name, value string) error {
	if s.sealed {
		return fmt.Errorf("%w: define %s=%s", ErrOptionsSealed, name, value)
	}
	if name == "" {
		return fmt.Errorf("empty option name")
	}
	for i := range s.options {
		if s.options[i].Name == name {
			s.options[i].Value = value
			return nil
		}
	}
	s.options = append(s.options, ConfigOption{Name: name, Value: value})
	return nil
}

// DefineAll defines each option in order.
func (s *ConfigOptionSet) DefineAll(options ...ConfigOption) error {
	for _, o := range options {
		if err := s.Define(o.Name, o.Value); err != nil {
			return err
		}
	}
	return nil
}

// Seal freezes the set. Sealing twice is harmless.
func (s *ConfigOptionSet) Seal() { s.sealed = true }

// Sealed reports whether the set has been handed to a build.
func (s *ConfigOptionSet) Sealed() bool { return s.sealed }

// Get returns the value of name.
func (s *ConfigOptionSet) Get(name string) (string, bool) {
	for _, o := range s.options {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

// Len returns the number of options.
func (s *ConfigOptionSet) Len() int { return len(s.options) }

// Options returns a copy of the options in definition order.
func (s *ConfigOptionSet) Options() []ConfigOption {
	return slices.Clone(s.options)
}

// Args renders every option as -DName=Value.
func (s *ConfigOptionSet) Args() []string {
	args := make([]string, 0, len(s.options))
	for _, o := range s.options {
		args = append(args, o.Arg())
	}
	return args
}

func (s *ConfigOptionSet) String() string {
	return strings.Join(s.Args(), " ")
}
