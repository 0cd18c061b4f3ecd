package xgbsys

import (
	"fmt"
	"strings"
)

const (
	vendorApple = "apple"
	osDarwin    = "darwin"
)

// BuildTarget is a parsed target triple such as x86_64-unknown-linux-gnu.
type BuildTarget struct {
	Triple string `json:"triple" yaml:"triple"`
	Arch   string `json:"arch" yaml:"arch"`
	Vendor string `json:"vendor" yaml:"vendor"`
	OS     string `json:"os" yaml:"os"`
	ABI    string `json:"abi,omitempty" yaml:"abi,omitempty"`
}

var goArchToTriple = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "aarch64",
	"386":     "i686",
	"arm":     "armv7",
	"ppc64le": "powerpc64le",
	"riscv64": "riscv64gc",
	"s390x":   "s390x",
}

var goOSToTriple = map[string]string{
	"linux":   "unknown-linux-gnu",
	"darwin":  "apple-darwin",
	"windows": "pc-windows-msvc",
	"freebsd": "unknown-freebsd",
	"netbsd":  "unknown-netbsd",
	"openbsd": "unknown-openbsd",
}

// DefaultTriple returns the target triple for a Go GOOS/GOARCH pair.
func DefaultTriple(goos, goarch string) string {
	arch, ok := goArchToTriple[goarch]
	if !ok {
		arch = goarch
	}
	rest, ok := goOSToTriple[goos]
	if !ok {
		rest = "unknown-" + goos
	}
	return arch + "-" + rest
}

// ParseTarget splits a target triple into its components.
//
// Triples have three or four dash-separated fields: arch-vendor-os[-abi].
// The OS field of a four-field triple may itself contain no dash, so
// "x86_64-unknown-linux-gnu" yields OS "linux" and ABI "gnu".
func ParseTarget(triple string) (BuildTarget, error) {
	parts := strings.Split(strings.TrimSpace(triple), "-")
	if len(parts) < 3 {
		return BuildTarget{}, fmt.Errorf("invalid target triple %q: want arch-vendor-os[-abi]", triple)
	}
	for _, p := range parts {
		if p == "" {
			return BuildTarget{}, fmt.Errorf("invalid target triple %q: empty component", triple)
		}
	}

	t := BuildTarget{
		Triple: strings.TrimSpace(triple),
		Arch:   parts[0],
		Vendor: parts[1],
		OS:     parts[2],
	}
	if len(parts) > 3 {
		t.ABI = strings.Join(parts[3:], "-")
	}
	return t, nil
}

// IsApple reports whether the target vendor is Apple.
func (t BuildTarget) IsApple() bool {
	return t.Vendor == vendorApple || strings.Contains(t.Triple, vendorApple)
}

// IsAppleDesktop reports whether the target is macOS.
func (t BuildTarget) IsAppleDesktop() bool {
	return t.IsApple() && strings.HasPrefix(t.OS, osDarwin)
}

// GoOS maps the target OS back to a GOOS value.
func (t BuildTarget) GoOS() string {
	switch {
	case t.IsAppleDesktop():
		return "darwin"
	case strings.HasPrefix(t.OS, "windows"):
		return "windows"
	default:
		return t.OS
	}
}

// GoArch maps the target architecture back to a GOARCH value.
func (t BuildTarget) GoArch() string {
	for goarch, arch := range goArchToTriple {
		if arch == t.Arch {
			return goarch
		}
	}
	switch t.Arch {
	case "arm64":
		return "arm64"
	case "i386", "i586":
		return "386"
	case "x86_64h":
		return "amd64"
	}
	if strings.HasPrefix(t.Arch, "armv") {
		return "arm"
	}
	return t.Arch
}

// String returns the triple.
func (t BuildTarget) String() string { return t.Triple }
