package xgbsys

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/tools/imports"
)

// LinkPlan is the ordered list of linker directives for a downstream link.
type LinkPlan struct {
	Target     BuildTarget `json:"target" yaml:"target"`
	Directives []Directive `json:"directives" yaml:"directives"`
}

// LinkPlanOptions controls which search paths are emitted.
type LinkPlanOptions struct {
	// EmitAllSearchPaths emits every candidate search path, found or not.
	EmitAllSearchPaths bool
}

// BuildLinkPlan assembles the directives in this order:
//
//  1. search paths under the staged source tree
//  2. the C++ runtime
//  3. the OpenMP runtime, with its search path on Apple
//  4. the install prefix and its lib directories
//  5. the internal static archives in LinkOrder
//  6. the CUDA runtime when enabled
//
// A nil artifacts, or EmitAllSearchPaths, emits every candidate path.
func BuildLinkPlan(decisions PlatformDecisions, layout Layout, artifacts *BuildArtifacts, opts LinkPlanOptions) LinkPlan {
	sourcePaths := layout.SourceSearchCandidates()
	installPaths := layout.InstallSearchCandidates()
	if artifacts != nil && !opts.EmitAllSearchPaths {
		sourcePaths = artifacts.SourceSearchPaths
		installPaths = artifacts.InstallSearchPaths
	}

	var ds []Directive
	for _, p := range sourcePaths {
		ds = append(ds, SearchPath(LinkDefault, p))
	}
	ds = append(ds, decisions.CXXRuntime...)
	ds = append(ds, decisions.ParallelRuntime...)
	for _, p := range uniqueStrings(installPaths) {
		ds = append(ds, SearchPath(LinkNative, p))
	}
	for _, name := range LinkOrder {
		ds = append(ds, Library(LinkStatic, name))
	}
	ds = append(ds, decisions.Accelerator...)

	return LinkPlan{Target: decisions.Target, Directives: ds}
}

// Validate checks that every internal archive is present and that LinkOrder
// is respected.
func (p LinkPlan) Validate() error {
	prev := -1
	for k, name := range LinkOrder {
		i := slices.IndexFunc(p.Directives, func(d Directive) bool { return d.IsStaticLib(name) })
		if i < 0 {
			return fmt.Errorf("%w: %s missing", ErrLinkOrder, name)
		}
		if i < prev {
			return fmt.Errorf("%w: %s at %d precedes %s at %d", ErrLinkOrder, name, i, LinkOrder[k-1], prev)
		}
		prev = i
	}
	return nil
}

// StaticLibs returns the names of static archives in plan order.
func (p LinkPlan) StaticLibs() []string {
	return lo.FilterMap(p.Directives, func(d Directive, _ int) (string, bool) {
		return d.Value, d.Kind == KindLinkLib && d.Link == LinkStatic
	})
}

// Lines renders one directive per line.
func (p LinkPlan) Lines() []string {
	return lo.Map(p.Directives, func(d Directive, _ int) string { return d.String() })
}

// WriteTo writes the directive stream to w.
func (p LinkPlan) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, line := range p.Lines() {
		m, err := fmt.Fprintln(w, line)
		n += int64(m)
		if err != nil {
			return n, &StageError{Stage: StageEmit, Err: err}
		}
	}
	return n, nil
}

// LDFlags renders the plan as linker flags for the target.
//
// The directive stream order is not a valid command line for a single-pass
// linker, so the flags are regrouped: search paths, then the static archives,
// then the runtime libraries they reference. On ELF targets the archives are
// forced with -l:lib<name>.a and wrapped in a linker group so references
// between them resolve in either order. Apple's linker has neither syntax and
// searches all archives anyway.
func (p LinkPlan) LDFlags() []string {
	var search, archives, runtimes []string
	elf := !p.Target.IsApple()
	for _, d := range p.Directives {
		switch {
		case d.Kind == KindLinkSearch:
			search = append(search, "-L"+d.Value)
		case d.Kind == KindLinkLib && d.Link == LinkStatic && elf:
			archives = append(archives, "-l:"+archiveFileName(d.Value, false))
		case d.Kind == KindLinkLib && d.Link == LinkStatic:
			archives = append(archives, "-l"+d.Value)
		case d.Kind == KindLinkLib:
			runtimes = append(runtimes, "-l"+d.Value)
		}
	}

	if elf && len(archives) > 0 {
		archives = append(append([]string{"-Wl,--start-group"}, archives...), "-Wl,--end-group")
	}
	flags := append(search, archives...)
	return append(flags, runtimes...)
}

// CXXFlags returns the flags carried by cxxflags directives.
func (p LinkPlan) CXXFlags() []string {
	var flags []string
	for _, d := range p.Directives {
		if d.Kind == KindCXXFlags {
			flags = append(flags, strings.Fields(d.Value)...)
		}
	}
	return flags
}

// RenderLinkFlags returns a Go source file carrying the plan as cgo directives.
func (p LinkPlan) RenderLinkFlags(pkg string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by xgbsys for %s. DO NOT EDIT.\n\n", p.Target.Triple)
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	if flags := p.CXXFlags(); len(flags) > 0 {
		fmt.Fprintf(&buf, "// #cgo CXXFLAGS: %s\n", strings.Join(flags, " "))
	}
	fmt.Fprintf(&buf, "// #cgo LDFLAGS: %s\n", strings.Join(p.LDFlags(), " "))
	buf.WriteString("import \"C\"\n")

	src, err := imports.Process("link_flags.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, &StageError{Stage: StageEmit, Err: err}
	}
	return src, nil
}

// WriteLinkFlags renders the plan and writes it atomically to path.
func (p LinkPlan) WriteLinkFlags(path, pkg string) error {
	if err := p.Validate(); err != nil {
		return &StageError{Stage: StageEmit, Path: path, Err: err}
	}
	src, err := p.RenderLinkFlags(pkg)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, src)
}
