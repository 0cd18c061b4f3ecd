package command

import (
	"fmt"

	"github.com/spf13/cobra"

	xgbsys "github.com/contriboss/xgboost-sys-go"
	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/internal/view"
)

// BuildOptions holds the options for the build command.
type BuildOptions struct {
	env        envFlags
	generator  string
	foundOnly  bool
	verbose    bool
	cleanFirst bool
}

// buildSummary is printed instead of the directive stream for json and yaml output.
type buildSummary struct {
	Staged     string                `json:"staged" yaml:"staged"`
	Copied     bool                  `json:"copied" yaml:"copied"`
	Options    []xgbsys.ConfigOption `json:"options" yaml:"options"`
	Archives   map[string]string     `json:"archives" yaml:"archives"`
	Bindings   string                `json:"bindings" yaml:"bindings"`
	LinkFlags  string                `json:"link_flags" yaml:"link_flags"`
	Directives []string              `json:"directives" yaml:"directives"`
}

func NewBuildCommand(cli *CLI) *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Stage, build and bind XGBoost",
		Long: Highlight("xgbsys build") + "\n\n" +
			"Copy the vendored source into the output directory, run the CMake\n" +
			"configure, build and install steps, generate bindings.go and\n" +
			"link_flags.go, then print one linker directive per line.\n",
		Args: MaxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env.load(cli)
			if err != nil {
				return err
			}

			p := xgbsys.NewPipeline(env).WithLogger(cli.logger())
			p.Verbose = opts.verbose
			p.CleanFirst = opts.cleanFirst
			p.LinkOptions.EmitAllSearchPaths = !opts.foundOnly
			if opts.generator != "" {
				p.Generator = &xgbsys.CommandGenerator{Path: opts.generator}
			}

			structured := cli.Type == view.ViewJSON || cli.Type == view.ViewYAML
			if structured {
				p.Directives = nil
			} else {
				p.Directives = cli.Writer
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				if stage := xgbsys.FailedStage(err); stage != "" {
					return fmt.Errorf("%s stage failed (exit status %d): %w", stage, xgbsys.ExitStatus(err), err)
				}
				return err
			}

			if !structured {
				return nil
			}
			return cli.Encode(cli.Type, buildSummary{
				Staged:     result.Staged.Root,
				Copied:     result.Staged.Copied,
				Options:    result.Options,
				Archives:   result.Artifacts.StaticLibs,
				Bindings:   result.BindingsPath,
				LinkFlags:  result.LinkFlagsPath,
				Directives: result.LinkPlan.Lines(),
			})
		},
	}

	opts.env.register(cmd)
	cmd.Flags().StringVar(&opts.generator, "generator", "", "External binding generator to run instead of the built-in C parser")
	cmd.Flags().BoolVar(&opts.foundOnly, "found-only", false, "Emit only search paths that exist after the build")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Record the cmake command lines in the build output")
	cmd.Flags().BoolVar(&opts.cleanFirst, "clean-first", false, "Clean the cmake build tree before building")
	return cmd
}
