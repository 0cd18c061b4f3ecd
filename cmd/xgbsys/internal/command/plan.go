package command

import (
	"github.com/spf13/cobra"

	xgbsys "github.com/contriboss/xgboost-sys-go"
	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/internal/view"
)

func NewPlanCommand(cli *CLI) *cobra.Command {
	var env envFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved build and link plan without building",
		Long: Highlight("xgbsys plan") + "\n\n" +
			"Resolve the platform decisions for the target and features and print\n" +
			"the cmake options, include paths and linker directives a build would\n" +
			"use. Nothing is written to the output directory.\n",
		Args: MaxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env.load(cli)
			if err != nil {
				return err
			}

			plan, err := xgbsys.NewPipeline(e).WithLogger(cli.logger()).Plan()
			if err != nil {
				return err
			}

			if cli.Type == view.ViewJSON || cli.Type == view.ViewYAML {
				return cli.Encode(cli.Type, plan)
			}
			printPlan(cli, plan)
			return nil
		},
	}

	env.register(cmd)
	return cmd
}

func printPlan(cli *CLI, plan *xgbsys.Plan) {
	cli.Printf("%s %s\n", Highlight("target:"), plan.Target.Triple)
	if len(plan.Features) > 0 {
		cli.Printf("%s %v\n", Highlight("features:"), plan.Features)
	}
	cli.Printf("%s %s\n", Highlight("toolchain:"), plan.Probe.Result)

	cli.Println(Highlight("cmake options:"))
	for _, o := range plan.Options {
		cli.Printf("  %s\n", o.Arg())
	}

	cli.Println(Highlight("include paths:"))
	for _, inc := range plan.Includes {
		cli.Printf("  %s\n", inc)
	}

	cli.Println(Highlight("link directives:"))
	for _, line := range plan.LinkPlan.Lines() {
		cli.Printf("  %s\n", line)
	}
}
