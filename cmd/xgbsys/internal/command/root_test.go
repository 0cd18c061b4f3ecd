package command

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xgbsys "github.com/contriboss/xgboost-sys-go"
	"github.com/contriboss/xgboost-sys-go/cmd/xgbsys/internal/view"
)

// newTestRoot wires a root command the way Execute does, reading the
// environment from vars and writing to the returned buffers.
func newTestRoot(t *testing.T, vars map[string]string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var stdout, stderr bytes.Buffer
	cli := NewCLI(view.ViewHuman, &stdout, &stderr, view.LogLevelSilent)
	cli.Lookup = func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}

	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	AddCommands(root, cli)
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return Configure(cmd, cli)
	}
	return root, &stdout, &stderr
}

func TestRootCommand(t *testing.T) {
	root, _, _ := newTestRoot(t, nil)

	assert.Equal(t, "xgbsys", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)
	assert.True(t, root.CompletionOptions.DisableDefaultCmd)
	assert.NotNil(t, root.PersistentFlags().Lookup("output"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"build", "plan", "bindings", "version"}, names)
}

func TestPlanCommandJSON(t *testing.T) {
	out := t.TempDir()
	root, stdout, _ := newTestRoot(t, map[string]string{
		xgbsys.EnvOutDir:   out,
		xgbsys.EnvTarget:   "x86_64-unknown-linux-gnu",
		xgbsys.EnvFeatures: "cuda",
	})
	root.SetArgs([]string{"plan", "-o", "json"})
	require.NoError(t, root.Execute())

	var plan xgbsys.Plan
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &plan))
	assert.Equal(t, "x86_64-unknown-linux-gnu", plan.Target.Triple)
	assert.Equal(t, []xgbsys.Feature{xgbsys.FeatureCUDA}, plan.Features)
	assert.NoError(t, plan.LinkPlan.Validate())

	n := len(plan.LinkPlan.Directives)
	assert.Equal(t, xgbsys.Library(xgbsys.LinkStatic, "cudart_static"), plan.LinkPlan.Directives[n-1])
}

func TestPlanCommandText(t *testing.T) {
	root, stdout, _ := newTestRoot(t, map[string]string{
		xgbsys.EnvOutDir: t.TempDir(),
		xgbsys.EnvTarget: "x86_64-unknown-linux-gnu",
	})
	root.SetArgs([]string{"plan", "--package", "xgb"})
	require.NoError(t, root.Execute())

	text := stdout.String()
	assert.Contains(t, text, "target: x86_64-unknown-linux-gnu\n")
	assert.Contains(t, text, "  -DBUILD_STATIC_LIB=ON\n")
	assert.Contains(t, text, "  xgbsys:link-lib=static=dmlc\n  xgbsys:link-lib=static=xgboost\n")
}

func TestPlanCommandFlagsOverrideEnvironment(t *testing.T) {
	root, stdout, _ := newTestRoot(t, map[string]string{
		xgbsys.EnvOutDir: t.TempDir(),
		xgbsys.EnvTarget: "x86_64-unknown-linux-gnu",
	})
	root.SetArgs([]string{"plan", "--target", "aarch64-apple-ios", "-o", "yaml"})
	require.NoError(t, root.Execute())

	assert.Contains(t, stdout.String(), "triple: aarch64-apple-ios")
	assert.Contains(t, stdout.String(), "result: not-applicable")
}

func TestPlanCommandErrors(t *testing.T) {
	root, _, _ := newTestRoot(t, map[string]string{})
	root.SetArgs([]string{"plan"})
	err := root.Execute()
	assert.ErrorIs(t, err, xgbsys.ErrMissingOutDir)

	root, _, _ = newTestRoot(t, map[string]string{xgbsys.EnvOutDir: t.TempDir()})
	root.SetArgs([]string{"plan", "-o", "xml"})
	assert.ErrorContains(t, root.Execute(), "unknown output format")

	root, _, _ = newTestRoot(t, map[string]string{xgbsys.EnvOutDir: t.TempDir()})
	root.SetArgs([]string{"plan", "extra"})
	assert.ErrorContains(t, root.Execute(), "expected at most 0 arguments")
}

func TestBindingsCommandRequiresStagedSource(t *testing.T) {
	root, _, _ := newTestRoot(t, map[string]string{xgbsys.EnvOutDir: t.TempDir()})
	root.SetArgs([]string{"bindings"})
	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, xgbsys.StageBindings, xgbsys.FailedStage(err))
}

func TestVersionCommand(t *testing.T) {
	root, stdout, _ := newTestRoot(t, nil)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Contains(t, stdout.String(), "xgbsys version dev\n")
	assert.Contains(t, stdout.String(), "c++17, link order [dmlc xgboost]")
}

func TestMaxArgs(t *testing.T) {
	validate := MaxArgs(1)
	assert.NoError(t, validate(nil, nil))
	assert.NoError(t, validate(nil, []string{"a"}))
	assert.Error(t, validate(nil, []string{"a", "b"}))
}
