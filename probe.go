package xgbsys

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ProbeResult is the outcome of the alternate-toolchain probe.
type ProbeResult int

const (
	// ProbeNotApplicable means the target never uses the alternate toolchain.
	ProbeNotApplicable ProbeResult = iota
	// ProbeUnavailable means the target could use it but the prefix is missing.
	ProbeUnavailable
	// ProbeAvailable means the prefix exists and its toolchain should be used.
	ProbeAvailable
)

func (p ProbeResult) String() string {
	switch p {
	case ProbeAvailable:
		return "available"
	case ProbeUnavailable:
		return "unavailable"
	default:
		return "not-applicable"
	}
}

// MarshalText implements encoding.TextMarshaler so plans render the name.
func (p ProbeResult) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ProbeResult) UnmarshalText(text []byte) error {
	for _, r := range []ProbeResult{ProbeNotApplicable, ProbeUnavailable, ProbeAvailable} {
		if r.String() == string(text) {
			*p = r
			return nil
		}
	}
	return fmt.Errorf("unknown probe result %q", text)
}

// StatFunc reports file information; os.Stat in production.
type StatFunc func(name string) (fs.FileInfo, error)

// Toolchain is the result of probing for the Homebrew LLVM toolchain on macOS.
type Toolchain struct {
	Result ProbeResult `json:"result" yaml:"result"`
	Prefix string      `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Available reports whether the alternate toolchain should be used.
func (t Toolchain) Available() bool { return t.Result == ProbeAvailable }

// LLVMDir is <prefix>/opt/llvm.
func (t Toolchain) LLVMDir() string { return filepath.Join(t.Prefix, "opt", "llvm") }

// LibOMPDir is <prefix>/opt/libomp/lib, the directory holding libomp.dylib.
func (t Toolchain) LibOMPDir() string { return filepath.Join(t.Prefix, "opt", "libomp", "lib") }

// DefaultBrewPrefix is the Homebrew prefix probed when none is configured.
// Intel installs live under /usr/local, which exists on every Mac, so it is
// never assumed; set XGBSYS_BREW_PREFIX there explicitly.
const DefaultBrewPrefix = "/opt/homebrew"

// ProbeToolchain checks whether the alternate package-manager prefix exists.
//
// Non-Apple-desktop targets are not applicable and stat is never called. A
// nil stat uses os.Stat. Any stat error, or a prefix that is not a directory,
// is reported as unavailable so the build falls back to system compilers.
func ProbeToolchain(target BuildTarget, prefix string, stat StatFunc) Toolchain {
	if !target.IsAppleDesktop() {
		return Toolchain{Result: ProbeNotApplicable}
	}
	if prefix == "" {
		prefix = DefaultBrewPrefix
	}
	if stat == nil {
		stat = os.Stat
	}

	info, err := stat(prefix)
	if err != nil || !info.IsDir() {
		return Toolchain{Result: ProbeUnavailable, Prefix: prefix}
	}
	return Toolchain{Result: ProbeAvailable, Prefix: prefix}
}
