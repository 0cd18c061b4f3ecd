package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	xgbsys "github.com/contriboss/xgboost-sys-go"
	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/internal/view"
)

// CLI is a global context passed to all commands.
// Unlike a Command which is specific to a single operation,
// CLI holds shared state and is propagated from root to subcommands.
type CLI struct {
	*view.Viewer

	// Lookup reads the environment; os.LookupEnv outside tests.
	Lookup xgbsys.LookupFunc
}

// Highlight applies a blue color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

func NewCLI(vt view.ViewType, w, logs io.Writer, logLevel view.LogLevel) *CLI {
	return &CLI{
		Viewer: view.NewViewer(vt, view.NewStream(w), logs, logLevel),
		Lookup: os.LookupEnv,
	}
}

func (c *CLI) logger() *slog.Logger {
	if c.Viewer == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger()
}

// MaxArgs returns an error if there are more than the max number of args.
func MaxArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) <= number {
			return nil
		}
		return fmt.Errorf("expected at most %d arguments, got %d", number, len(args))
	}
}

// envFlags are the flags that overlay the environment read by LoadEnv.
type envFlags struct {
	outDir    string
	target    string
	features  string
	sourceDir string
	header    string
	pkg       string
	jobs      int
}

func (f *envFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.outDir, "out", "", "Build output directory (default $XGBSYS_OUT_DIR or $OUT_DIR)")
	flags.StringVar(&f.target, "target", "", "Target triple (default $XGBSYS_TARGET or the host)")
	flags.StringVar(&f.features, "features", "", "Comma separated features to enable, e.g. cuda")
	flags.StringVar(&f.sourceDir, "source", "", "Vendored XGBoost source tree (default ./xgboost)")
	flags.StringVar(&f.header, "header", "", "Umbrella header to bind (default ./wrapper.h)")
	flags.StringVar(&f.pkg, "package", "", "Go package name of the generated files")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "Parallel build jobs (0 lets cmake decide)")
}

// overlay returns a lookup that answers from set flags first, then from next.
func (f *envFlags) overlay(next xgbsys.LookupFunc) xgbsys.LookupFunc {
	values := map[string]string{
		xgbsys.EnvOutDir:    f.outDir,
		xgbsys.EnvTarget:    f.target,
		xgbsys.EnvFeatures:  f.features,
		xgbsys.EnvSourceDir: f.sourceDir,
		xgbsys.EnvHeader:    f.header,
		xgbsys.EnvPackage:   f.pkg,
	}
	if f.jobs > 0 {
		values[xgbsys.EnvJobs] = fmt.Sprint(f.jobs)
	}
	return func(key string) (string, bool) {
		if v := values[key]; v != "" {
			return v, true
		}
		return next(key)
	}
}

func (f *envFlags) load(cli *CLI) (*xgbsys.Env, error) {
	lookup := cli.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return xgbsys.LoadEnv(f.overlay(lookup))
}
