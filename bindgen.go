package xgbsys

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"
	"modernc.org/cc/v4"
)

// DefaultBlocklist excludes the C++ standard library's internal namespace and
// reserved identifiers.
var DefaultBlocklist = []string{`std::__1.*`, `^__`}

// BindingRequest describes one binding generation.
type BindingRequest struct {
	// Header is the umbrella header naming the public API.
	Header string
	// IncludePaths must equal the include paths the library was compiled with.
	IncludePaths []string
	Language     string
	Std          string
	Blocklist    []string
	Package      string
}

// NewBindingRequest builds a request from the resolved platform decisions.
func NewBindingRequest(header string, decisions PlatformDecisions, pkg string) BindingRequest {
	return BindingRequest{
		Header:       header,
		IncludePaths: slices.Clone(decisions.Includes),
		Language:     "c++",
		Std:          "c++" + CXXStandard,
		Blocklist:    slices.Clone(DefaultBlocklist),
		Package:      pkg,
	}
}

// ClangArgs returns the compiler arguments describing the request.
func (r BindingRequest) ClangArgs() []string {
	args := []string{"-x", r.Language, "-std=" + r.Std}
	for _, inc := range r.IncludePaths {
		args = append(args, "-I"+inc)
	}
	return args
}

func (r BindingRequest) blocklist() ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(r.Blocklist))
	for _, pattern := range r.Blocklist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("blocklist pattern %q: %w", pattern, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// Generator turns a header into Go binding source.
type Generator interface {
	Generate(ctx context.Context, req BindingRequest) ([]byte, error)
}

// CCGenerator parses the header's C surface with modernc.org/cc/v4 and emits a
// cgo file.
//
// The header is preprocessed with the host C compiler's predefined macros, so
// a C compiler must be installed even though only parsing happens here.
type CCGenerator struct {
	GOOS, GOARCH string
	Logger       *slog.Logger
}

// Generate implements Generator.
func (g *CCGenerator) Generate(ctx context.Context, req BindingRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := orDiscard(g.Logger)

	goos, goarch := g.GOOS, g.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}

	header, err := filepath.Abs(req.Header)
	if err != nil {
		return nil, err
	}
	blocked, err := req.blocklist()
	if err != nil {
		return nil, err
	}

	cfg, err := cc.NewConfig(goos, goarch)
	if err != nil {
		return nil, fmt.Errorf("configure C parser: %w", err)
	}
	cfg.Header = true
	cfg.EvalAllMacros = true
	cfg.IncludePaths = append(slices.Clone(req.IncludePaths), cfg.IncludePaths...)
	cfg.SysIncludePaths = append(slices.Clone(req.IncludePaths), cfg.SysIncludePaths...)

	ast, err := cc.Translate(cfg, []cc.Source{
		{Name: "<predefined>", Value: cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
		{Name: header},
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.Header, err)
	}

	e := &emitter{
		req:     req,
		header:  header,
		roots:   append(slices.Clone(req.IncludePaths), filepath.Dir(header)),
		blocked: blocked,
		used:    map[string]bool{},
		logger:  logger,
	}
	e.collect(ast)
	if len(e.typedefs)+len(e.funcs)+len(e.consts) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDeclarations, req.Header)
	}
	logger.Debug("collected declarations",
		"typedefs", len(e.typedefs), "functions", len(e.funcs), "constants", len(e.consts))

	return formatGo("bindings.go", e.render())
}

type emitter struct {
	req     BindingRequest
	header  string
	roots   []string
	blocked []*regexp.Regexp
	logger  *slog.Logger

	used       map[string]bool
	needUnsafe bool

	typedefs []string
	consts   []string
	funcs    []string
}

func (e *emitter) keepFile(name string) bool {
	if name == "" {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if abs == e.header {
		return true
	}
	for _, root := range e.roots {
		if rel, err := filepath.Rel(root, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (e *emitter) isBlocked(name string) bool {
	return slices.ContainsFunc(e.blocked, func(re *regexp.Regexp) bool { return re.MatchString(name) })
}

// claim reserves a Go identifier, reporting false if it is already taken.
func (e *emitter) claim(name string) bool {
	if e.used[name] {
		return false
	}
	e.used[name] = true
	return true
}

func (e *emitter) collect(ast *cc.AST) {
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed == nil || ed.Case != cc.ExternalDeclarationDecl || ed.Declaration == nil {
			continue
		}
		decl := ed.Declaration
		if decl.Case != cc.DeclarationDecl {
			continue
		}
		for l := decl.InitDeclaratorList; l != nil; l = l.InitDeclaratorList {
			if l.InitDeclarator == nil || l.InitDeclarator.Declarator == nil {
				continue
			}
			e.declare(l.InitDeclarator.Declarator)
		}
	}

	names := make([]string, 0, len(ast.Macros))
	for name := range ast.Macros {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		e.macro(ast.Macros[name])
	}
}

func (e *emitter) declare(d *cc.Declarator) {
	name := d.Name()
	if name == "" || e.isBlocked(name) || !e.keepFile(d.Position().Filename) {
		return
	}

	switch {
	case d.IsTypename():
		e.typedef(d)
	case d.Type().Kind() == cc.Function:
		if ft, ok := d.Type().(*cc.FunctionType); ok {
			e.function(name, ft)
		}
	}
}

func (e *emitter) typedef(d *cc.Declarator) {
	goName := exportName(d.Name())
	if !e.claim(goName) {
		return
	}
	e.typedefs = append(e.typedefs, fmt.Sprintf("type %s = C.%s", goName, d.Name()))
}

func (e *emitter) function(name string, ft *cc.FunctionType) {
	if ft.IsVariadic() {
		e.logger.Debug("skipping variadic function", "name", name)
		return
	}

	var params, args []string
	for i, p := range ft.Parameters() {
		if p.Type().Kind() == cc.Void {
			continue
		}
		typ, ok := e.goType(p.Type())
		if !ok {
			e.logger.Debug("skipping function with unsupported parameter", "name", name, "type", p.Type().String())
			return
		}
		pname := p.Name()
		if pname == "" || token.IsKeyword(pname) || pname == "C" {
			pname = fmt.Sprintf("arg%d", i)
		}
		params = append(params, pname+" "+typ)
		args = append(args, pname)
	}

	result := ""
	if ft.Result().Kind() != cc.Void || ft.Result().Typedef() != nil {
		typ, ok := e.goType(ft.Result())
		if !ok {
			e.logger.Debug("skipping function with unsupported result", "name", name, "type", ft.Result().String())
			return
		}
		result = " " + typ
	}

	goName := exportName(name)
	if !e.claim(goName) {
		return
	}

	call := fmt.Sprintf("C.%s(%s)", name, strings.Join(args, ", "))
	body := call
	if result != "" {
		body = "return " + call
	}
	e.funcs = append(e.funcs, fmt.Sprintf("// %s calls %s.\nfunc %s(%s)%s {\n\t%s\n}",
		goName, name, goName, strings.Join(params, ", "), result, body))
}

func (e *emitter) macro(m *cc.Macro) {
	if m == nil || m.IsFnLike {
		return
	}
	name := m.Name.SrcStr()
	if name == "" || e.isBlocked(name) || !e.keepFile(m.Position().Filename) {
		return
	}

	var value string
	switch v := m.Value().(type) {
	case cc.Int64Value:
		value = fmt.Sprintf("%d", int64(v))
	case cc.UInt64Value:
		value = fmt.Sprintf("%d", uint64(v))
	default:
		return
	}

	goName := exportName(name)
	if !e.claim(goName) {
		return
	}
	e.consts = append(e.consts, fmt.Sprintf("%s = %s", goName, value))
}

func (e *emitter) goType(t cc.Type) (string, bool) {
	if td := t.Typedef(); td != nil && td.Name() != "" {
		return "C." + td.Name(), true
	}

	switch t.Kind() {
	case cc.Ptr:
		pt, ok := t.(*cc.PointerType)
		if !ok {
			return "", false
		}
		elem := pt.Elem()
		switch {
		case elem.Typedef() != nil && elem.Typedef().Name() != "":
			return "*C." + elem.Typedef().Name(), true
		case elem.Kind() == cc.Void:
			e.needUnsafe = true
			return "unsafe.Pointer", true
		case elem.Kind() == cc.Function:
			return "*[0]byte", true
		}
		inner, ok := e.goType(elem)
		return "*" + inner, ok
	case cc.Array:
		at, ok := t.(*cc.ArrayType)
		if !ok {
			return "", false
		}
		inner, ok := e.goType(at.Elem())
		return "*" + inner, ok
	case cc.Struct:
		return taggedType("struct_", t.(*cc.StructType).Tag())
	case cc.Union:
		return taggedType("union_", t.(*cc.UnionType).Tag())
	case cc.Enum:
		return taggedType("enum_", t.(*cc.EnumType).Tag())
	}

	if name, ok := basicCTypes[t.Kind()]; ok {
		return "C." + name, true
	}
	return "", false
}

func taggedType(prefix string, tag cc.Token) (string, bool) {
	name := tag.SrcStr()
	if name == "" {
		return "", false
	}
	return "C." + prefix + name, true
}

var basicCTypes = map[cc.Kind]string{
	cc.Char:      "char",
	cc.SChar:     "schar",
	cc.UChar:     "uchar",
	cc.Short:     "short",
	cc.UShort:    "ushort",
	cc.Int:       "int",
	cc.UInt:      "uint",
	cc.Long:      "long",
	cc.ULong:     "ulong",
	cc.LongLong:  "longlong",
	cc.ULongLong: "ulonglong",
	cc.Float:     "float",
	cc.Double:    "double",
}

func (e *emitter) render() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by xgbsys from %s. DO NOT EDIT.\n\n", filepath.Base(e.header))
	fmt.Fprintf(&buf, "package %s\n\n", e.req.Package)

	buf.WriteString("/*\n")
	if len(e.req.IncludePaths) > 0 {
		incs := make([]string, 0, len(e.req.IncludePaths))
		for _, inc := range e.req.IncludePaths {
			incs = append(incs, "-I"+inc)
		}
		fmt.Fprintf(&buf, "#cgo CFLAGS: %s\n", strings.Join(incs, " "))
		fmt.Fprintf(&buf, "#cgo CXXFLAGS: -std=%s %s\n", e.req.Std, strings.Join(incs, " "))
	}
	fmt.Fprintf(&buf, "#include %q\n", e.header)
	buf.WriteString("*/\nimport \"C\"\n\n")

	if e.needUnsafe {
		buf.WriteString("import \"unsafe\"\n\n")
	}

	for _, t := range e.typedefs {
		buf.WriteString(t + "\n")
	}
	if len(e.consts) > 0 {
		buf.WriteString("\nconst (\n")
		for _, c := range e.consts {
			buf.WriteString("\t" + c + "\n")
		}
		buf.WriteString(")\n")
	}
	for _, f := range e.funcs {
		buf.WriteString("\n" + f + "\n")
	}
	return buf.Bytes()
}

// exportName turns a C identifier into an exported Go identifier:
// bst_ulong becomes BstUlong, XGBoosterCreate and XGB_VER_MAJOR are unchanged.
func exportName(name string) string {
	if token.IsExported(name) {
		return name
	}
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	if len(parts) == 0 {
		return "X" + name
	}
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(caser.String(p))
	}
	out := b.String()
	if !token.IsExported(out) {
		out = "X" + out
	}
	return out
}

func formatGo(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return out, nil
}

// CommandGenerator runs an external binding generator. The generator receives
// the header, then the blocklist as --blocklist-item flags, then "--" and the
// compiler arguments, and must print Go source to stdout.
type CommandGenerator struct {
	Path string
	Args []string
}

// Generate implements Generator.
func (g *CommandGenerator) Generate(ctx context.Context, req BindingRequest) ([]byte, error) {
	args := slices.Clone(g.Args)
	args = append(args, req.Header)
	for _, item := range req.Blocklist {
		args = append(args, "--blocklist-item", item)
	}
	args = append(args, "--")
	args = append(args, req.ClangArgs()...)

	cmd := execCommandContext(ctx, g.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, nativeError(filepath.Base(g.Path), splitLines(stderr.Bytes()), err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("%w: %s produced no output", ErrNoDeclarations, g.Path)
	}
	return formatGo("bindings.go", out)
}

// WriteBindings generates bindings for req and writes them atomically to path.
func WriteBindings(ctx context.Context, gen Generator, req BindingRequest, path string) error {
	src, err := gen.Generate(ctx, req)
	if err != nil {
		return &StageError{Stage: StageBindings, Path: req.Header, Err: err}
	}
	return writeFileAtomic(path, src)
}
