package xgbsys

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Pipeline resolves the platform, checks the builder's tools, stages the
// source, then runs the native build, discovery, binding generation and link
// emission in order, stopping at the first failure.
type Pipeline struct {
	Env    *Env
	Logger *slog.Logger

	Stager    *Stager
	Builder   Builder
	Generator Generator

	// Stat backs the toolchain probe; os.Stat when nil.
	Stat StatFunc

	LinkOptions LinkPlanOptions

	// Directives receives the directive stream; nil discards it.
	Directives io.Writer

	Verbose bool
	// CleanFirst removes the build tree through Builder.Clean before building.
	CleanFirst bool
}

// NewPipeline returns a pipeline with the production stager, cmake builder
// and cc-based binding generator. The builder is chosen once decisions are
// resolved when Builder is left nil.
func NewPipeline(env *Env) *Pipeline {
	logger := slog.New(slog.DiscardHandler)
	return &Pipeline{
		Env:         env,
		Logger:      logger,
		Stager:      NewStager(logger),
		Generator:   &CCGenerator{GOOS: env.Target.GoOS(), GOARCH: env.Target.GoArch(), Logger: logger},
		Directives:  os.Stdout,
		LinkOptions: LinkPlanOptions{EmitAllSearchPaths: true},
	}
}

// WithLogger sets the logger on the pipeline and the components it created.
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	p.Logger = orDiscard(logger)
	if p.Stager != nil {
		p.Stager.Logger = p.Logger
	}
	if g, ok := p.Generator.(*CCGenerator); ok {
		g.Logger = p.Logger
	}
	return p
}

// Result is what a successful run produced.
type Result struct {
	Staged        *StagedSource
	Decisions     PlatformDecisions
	Options       []ConfigOption
	Build         *BuildResult
	Artifacts     *BuildArtifacts
	LinkPlan      LinkPlan
	BindingsPath  string
	LinkFlagsPath string
}

// Plan is the resolved configuration of a build, computed without running it.
type Plan struct {
	Target    BuildTarget    `json:"target" yaml:"target"`
	Features  []Feature      `json:"features,omitempty" yaml:"features,omitempty"`
	Probe     Toolchain      `json:"probe" yaml:"probe"`
	Layout    Layout         `json:"layout" yaml:"layout"`
	Options   []ConfigOption `json:"options" yaml:"options"`
	Includes  []string       `json:"includes" yaml:"includes"`
	LinkPlan  LinkPlan       `json:"link_plan" yaml:"link_plan"`
	Bindings  string         `json:"bindings" yaml:"bindings"`
	LinkFlags string         `json:"link_flags" yaml:"link_flags"`
}

// Resolve probes the toolchain and evaluates the platform decision table.
func (p *Pipeline) Resolve() PlatformDecisions {
	probe := ProbeToolchain(p.Env.Target, p.Env.BrewPrefix, p.Stat)
	return Resolve(p.Env.Target, p.Env.Features, probe, p.Env.Layout())
}

// Plan resolves the build without touching the output directory.
func (p *Pipeline) Plan() (*Plan, error) {
	decisions := p.Resolve()
	options, err := decisions.ConfigOptions()
	if err != nil {
		return nil, err
	}
	linkPlan := BuildLinkPlan(decisions, p.Env.Layout(), nil, LinkPlanOptions{EmitAllSearchPaths: true})
	if err := linkPlan.Validate(); err != nil {
		return nil, err
	}

	return &Plan{
		Target:    decisions.Target,
		Features:  decisions.Features,
		Probe:     decisions.Probe,
		Layout:    p.Env.Layout(),
		Options:   options.Options(),
		Includes:  decisions.Includes,
		LinkPlan:  linkPlan,
		Bindings:  p.Env.BindingsPath(),
		LinkFlags: p.Env.LinkFlagsPath(),
	}, nil
}

// Run executes the whole pipeline.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := orDiscard(p.Logger).With("target", p.Env.Target.Triple)
	result := &Result{}

	decisions := p.Resolve()
	result.Decisions = decisions
	logger.Info("platform resolved",
		"probe", decisions.Probe.Result.String(),
		"features", p.Env.Features.String(),
		"includes", len(decisions.Includes))

	options, err := decisions.ConfigOptions()
	if err != nil {
		return result, err
	}
	result.Options = options.Options()

	builder := p.Builder
	if builder == nil {
		builder = NewCmakeBuilder(decisions)
	}
	if checker, ok := builder.(ToolChecker); ok {
		if err := checker.CheckTools(); err != nil {
			return result, &StageError{Stage: StageToolCheck, Err: err}
		}
	}

	staged, err := p.stager().Stage(p.Env.SourceDir, p.Env.OutDir)
	if err != nil {
		return result, err
	}
	result.Staged = staged
	logger.Info("source ready", "root", staged.Root, "copied", staged.Copied)

	config := &BuildConfig{
		SourceDir:  staged.Root,
		BuildDir:   p.Env.BuildDir(),
		InstallDir: p.Env.OutDir,
		Options:    options,
		Env:        decisions.BuildEnv,
		Generator:  p.Env.Generator,
		Verbose:    p.Verbose,
		Parallel:   p.Env.Jobs,
		Logger:     logger,
	}
	if p.CleanFirst {
		if err := builder.Clean(ctx, config); err != nil {
			return result, &StageError{Stage: StageBuild, Path: config.BuildDir, Err: err}
		}
		logger.Info("build tree cleaned", "dir", config.BuildDir)
	}

	build, err := builder.Build(ctx, config)
	result.Build = build
	if err != nil {
		return result, err
	}
	logger.Info("native build finished", "builder", builder.Name(), "archives", len(build.Archives))

	artifacts, err := Discover(p.Env.Layout())
	result.Artifacts = artifacts
	if err != nil {
		return result, err
	}
	if missing := artifacts.Missing(); len(missing) > 0 {
		logger.Warn("archives not found, relying on search paths", "missing", missing)
	}

	if err := p.writeBindings(ctx, decisions); err != nil {
		return result, err
	}
	result.BindingsPath = p.Env.BindingsPath()
	logger.Info("bindings written", "path", result.BindingsPath)

	linkPlan := BuildLinkPlan(decisions, p.Env.Layout(), artifacts, p.LinkOptions)
	result.LinkPlan = linkPlan
	if err := linkPlan.WriteLinkFlags(p.Env.LinkFlagsPath(), p.Env.Package); err != nil {
		return result, err
	}
	result.LinkFlagsPath = p.Env.LinkFlagsPath()

	if p.Directives != nil {
		if _, err := linkPlan.WriteTo(p.Directives); err != nil {
			return result, err
		}
	}
	logger.Info("link plan emitted", "directives", len(linkPlan.Directives), "static", linkPlan.StaticLibs())

	return result, nil
}

// Bindings regenerates the binding file for an already built output directory.
func (p *Pipeline) Bindings(ctx context.Context) (string, error) {
	if !dirExists(p.Env.StagedRoot()) {
		return "", &StageError{Stage: StageBindings, Path: p.Env.StagedRoot(), Err: os.ErrNotExist}
	}
	if err := p.writeBindings(ctx, p.Resolve()); err != nil {
		return "", err
	}
	return p.Env.BindingsPath(), nil
}

func (p *Pipeline) writeBindings(ctx context.Context, decisions PlatformDecisions) error {
	req := NewBindingRequest(p.Env.Header, decisions, p.Env.Package)
	return WriteBindings(ctx, p.generator(), req, p.Env.BindingsPath())
}

// generator parses headers for the build target, not the host.
func (p *Pipeline) generator() Generator {
	if p.Generator == nil {
		return &CCGenerator{GOOS: p.Env.Target.GoOS(), GOARCH: p.Env.Target.GoArch(), Logger: p.Logger}
	}
	return p.Generator
}

func (p *Pipeline) stager() *Stager {
	if p.Stager == nil {
		return NewStager(p.Logger)
	}
	return p.Stager
}
