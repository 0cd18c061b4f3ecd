package command

import (
	"github.com/spf13/cobra"
)

func NewVersionCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: Highlight("xgbsys version") + "\n\n" +
			"Display the current version of xgbsys, the host platform and the\n" +
			"pinned C++ standard.\n",
		Args: MaxArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			cli.PrintVersion()
		},
	}
	return cmd
}
