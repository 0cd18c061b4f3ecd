package xgbsys

import (
	"fmt"
	"strings"
)

// DirectivePrefix starts every line of the directive stream.
const DirectivePrefix = "xgbsys:"

// DirectiveKind is the kind of a linker directive.
type DirectiveKind string

const (
	KindLinkSearch DirectiveKind = "link-search"
	KindLinkLib    DirectiveKind = "link-lib"
	KindCXXFlags   DirectiveKind = "cxxflags"
)

// LinkKind qualifies a directive: the search scope for link-search, the
// linkage for link-lib. Empty means the default.
type LinkKind string

const (
	LinkDefault LinkKind = ""
	LinkNative  LinkKind = "native"
	LinkAll     LinkKind = "all"
	LinkStatic  LinkKind = "static"
	LinkDylib   LinkKind = "dylib"
)

// Directive is one order-significant linker instruction.
type Directive struct {
	Kind  DirectiveKind `json:"kind" yaml:"kind"`
	Link  LinkKind      `json:"link,omitempty" yaml:"link,omitempty"`
	Value string        `json:"value" yaml:"value"`
}

// SearchPath returns a link-search directive.
func SearchPath(kind LinkKind, dir string) Directive {
	return Directive{Kind: KindLinkSearch, Link: kind, Value: dir}
}

// Library returns a link-lib directive.
func Library(kind LinkKind, name string) Directive {
	return Directive{Kind: KindLinkLib, Link: kind, Value: name}
}

// CXXFlags returns a cxxflags directive.
func CXXFlags(flags string) Directive {
	return Directive{Kind: KindCXXFlags, Value: flags}
}

// IsStaticLib reports whether d links name as a static archive.
func (d Directive) IsStaticLib(name string) bool {
	return d.Kind == KindLinkLib && d.Link == LinkStatic && d.Value == name
}

// String renders d as a single directive line, e.g.
// "xgbsys:link-lib=static=xgboost".
func (d Directive) String() string {
	if d.Link == LinkDefault {
		return fmt.Sprintf("%s%s=%s", DirectivePrefix, d.Kind, d.Value)
	}
	return fmt.Sprintf("%s%s=%s=%s", DirectivePrefix, d.Kind, d.Link, d.Value)
}

// ParseDirective parses a line produced by Directive.String.
func ParseDirective(line string) (Directive, error) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, DirectivePrefix)
	if !ok {
		return Directive{}, fmt.Errorf("directive %q: missing %s prefix", line, DirectivePrefix)
	}

	kind, value, ok := strings.Cut(rest, "=")
	if !ok {
		return Directive{}, fmt.Errorf("directive %q: missing '='", line)
	}

	d := Directive{Kind: DirectiveKind(kind), Value: value}
	switch d.Kind {
	case KindLinkSearch:
		if k, v, ok := strings.Cut(value, "="); ok && (LinkKind(k) == LinkNative || LinkKind(k) == LinkAll) {
			d.Link, d.Value = LinkKind(k), v
		}
	case KindLinkLib:
		if k, v, ok := strings.Cut(value, "="); ok && (LinkKind(k) == LinkStatic || LinkKind(k) == LinkDylib) {
			d.Link, d.Value = LinkKind(k), v
		}
	case KindCXXFlags:
	default:
		return Directive{}, fmt.Errorf("directive %q: unknown kind %q", line, kind)
	}

	if d.Value == "" {
		return Directive{}, fmt.Errorf("directive %q: empty value", line)
	}
	return d, nil
}
