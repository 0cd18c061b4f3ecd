package command

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/internal/view"
	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/version"
)

// LogEnv selects the log level: debug, info, warn or error. Silent otherwise.
const LogEnv = "XGBSYS_LOG"

var (
	outputFlag string
	debugFlag  bool
	rootCmd    *cobra.Command
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "xgbsys",
		Short: color.RGB(50, 108, 229).Sprintf("xgbsys [global options] <subcommand> [args]") + "\n" +
			"Build XGBoost from source and emit cgo bindings and link flags",
		Long: color.RGB(50, 108, 229).Sprintf("Usage: xgbsys [global options] <subcommand> [args]\n") + "\n" +
			"xgbsys stages the vendored XGBoost tree, drives its CMake build for the\n" +
			"target platform and features, generates cgo bindings from the public\n" +
			"header and prints the linker directives a consumer needs, dmlc before xgboost.\n\n",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format. One of: (text | json | yaml)")
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Set log level to debug")
	return cmd
}

func setCobraUsageTemplate() {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := rootCmd.UsageTemplate()
	usageTemplate = strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Examples:`, `{{StyleHeading "Examples:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(usageTemplate)
	rootCmd.SetUsageTemplate(usageTemplate)
}

// Configure points the CLI viewer at the command's writers once flags are parsed.
func Configure(cmd *cobra.Command, cli *CLI) error {
	viewType, err := view.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}

	logLevel := view.LogLevelSilent
	if v, ok := cli.Lookup(LogEnv); ok {
		logLevel = view.ParseLogLevel(strings.ToLower(v))
	}
	if debugFlag {
		logLevel = view.LogLevelDebug
	}

	cli.Viewer = view.NewViewer(viewType, view.NewStream(cmd.OutOrStdout()), cmd.ErrOrStderr(), logLevel)
	return nil
}

func Execute() {
	rootCmd = NewRootCommand()
	setCobraUsageTemplate()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	// Reconfigured in PersistentPreRunE after flags are parsed.
	cli := NewCLI(view.ViewHuman, os.Stdout, os.Stderr, view.LogLevelSilent)
	AddCommands(rootCmd, cli)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return Configure(cmd, cli)
	}

	if err := rootCmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			os.Stderr.WriteString(color.RedString("Error: ") + msg + "\n")
		}
		os.Exit(1)
	}

	os.Exit(0)
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewBuildCommand(cli),
		NewPlanCommand(cli),
		NewBindingsCommand(cli),
		NewVersionCommand(cli),
	)
}
