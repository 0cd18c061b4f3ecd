package command

import (
	"github.com/spf13/cobra"

	xgbsys "github.com/contriboss/xgboost-sys-go"
)

func NewBindingsCommand(cli *CLI) *cobra.Command {
	var (
		env       envFlags
		generator string
	)

	cmd := &cobra.Command{
		Use:   "bindings",
		Short: "Regenerate bindings.go for an existing build",
		Long: Highlight("xgbsys bindings") + "\n\n" +
			"Regenerate the cgo bindings from the umbrella header using the include\n" +
			"paths of an already staged output directory. CMake is not run.\n",
		Args: MaxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env.load(cli)
			if err != nil {
				return err
			}

			p := xgbsys.NewPipeline(e).WithLogger(cli.logger())
			if generator != "" {
				p.Generator = &xgbsys.CommandGenerator{Path: generator}
			}

			path, err := p.Bindings(cmd.Context())
			if err != nil {
				return err
			}
			cli.Println(path)
			return nil
		},
	}

	env.register(cmd)
	cmd.Flags().StringVar(&generator, "generator", "", "External binding generator to run instead of the built-in C parser")
	return cmd
}
