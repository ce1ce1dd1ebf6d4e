package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
	"github.com/PentesterFlow/mcpcreator/internal/logger"
	"github.com/PentesterFlow/mcpcreator/internal/output"
	"github.com/PentesterFlow/mcpcreator/pkg/creator"
)

var version = "0.1.0"

// EnvPrefix is the prefix of environment variables that override flags,
// e.g. MCPCREATOR_OUTPUT for --output.
const EnvPrefix = "MCPCREATOR"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		stop()
		os.Exit(1)
	}
}

// formatError renders a command failure with its category and a hint about
// what was left on disk.
func formatError(err error) string {
	categorized := errors.Categorize(err, "")

	var b strings.Builder
	if t := errors.GetErrorType(categorized); t == errors.Unknown {
		b.WriteString("Error: ")
	} else {
		fmt.Fprintf(&b, "Error [%s]: ", t)
	}
	b.WriteString(err.Error())

	switch {
	case errors.IsInputError(categorized):
		b.WriteString("\nNo files were written.")
	case errors.IsGenerationError(categorized):
		b.WriteString("\nFiles already written were left in place.")
	}
	return b.String()
}

// app carries the settings shared by every command of one invocation.
type app struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "mcpcreator [har-file]",
		Short: "mcpcreator - Generate MCP servers from HAR files",
		Long: `mcpcreator - Generate MCP servers from recorded browser traffic.

Reads a HAR trace, infers the API it exercises (endpoints, parameters,
request bodies, response examples and authentication) and writes a
ready-to-run Python MCP server package.

Examples:
  # Analyze a HAR file to see what endpoints were discovered
  mcpcreator analyze api-calls.har

  # Generate an MCP server with auto-detected name
  mcpcreator create api-calls.har

  # Generate with custom name and output directory
  mcpcreator create api-calls.har --name myservice --output ./servers

  # Quick generation (same as create)
  mcpcreator api-calls.har`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bindFlags(cmd.Flags())
		},
		RunE: a.runDirect,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <har-file>",
		Short: "Analyze a HAR file and show discovered endpoints",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runAnalyze,
	}

	createCmd := &cobra.Command{
		Use:   "create <har-file>",
		Short: "Create an MCP server from a HAR file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runCreate,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show a saved analysis",
		Long:  "Show the analysis snapshot saved by analyze or create --state-file.",
		Args:  cobra.NoArgs,
		RunE:  a.runStatus,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug mode")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides -v/--debug")
	rootCmd.PersistentFlags().String("prefix", "", "Server name prefix (default: iblai)")
	rootCmd.PersistentFlags().String("state-file", "", "Analysis snapshot file (.db, .json or .json.gz)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this textfile")

	// Direct file flags
	rootCmd.Flags().StringP("name", "n", "", "Custom service name")
	rootCmd.Flags().StringP("output", "o", "", "Output directory")
	rootCmd.Flags().BoolP("analyze", "a", false, "Only analyze")

	// Analyze flags
	analyzeCmd.Flags().Bool("json", false, "Output analysis as JSON")

	// Create flags
	createCmd.Flags().StringP("name", "n", "", "Custom service name (default: auto-detected from HAR)")
	createCmd.Flags().StringP("output", "o", "", "Output directory (default: current directory)")
	createCmd.Flags().Bool("no-openapi", false, "Do not write openapi.yaml")
	createCmd.Flags().Bool("no-redact", false, "Keep credential-like values in examples")

	rootCmd.AddCommand(analyzeCmd, createCmd, statusCmd)
	rootCmd.SetOut(out)

	return rootCmd
}

// bindFlags binds the flags of the executing command, so a flag shared by
// several commands resolves to the one actually parsed.
func (a *app) bindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err == nil {
			err = a.v.BindPFlag(f.Name, f)
		}
	})
	return err
}

// loadConfig resolves the configuration: flags override environment
// variables, which override the config file, which overrides defaults.
func (a *app) loadConfig() (*creator.Config, error) {
	cfg := creator.DefaultConfig()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := creator.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if a.v.IsSet("name") {
		cfg.Name = a.v.GetString("name")
	}
	if a.v.IsSet("output") {
		cfg.OutputDir = a.v.GetString("output")
	}
	if a.v.IsSet("prefix") {
		cfg.Prefix = a.v.GetString("prefix")
	}
	if a.v.IsSet("state-file") {
		cfg.StateFile = a.v.GetString("state-file")
	}
	if a.v.IsSet("metrics-file") {
		cfg.MetricsFile = a.v.GetString("metrics-file")
	}
	if a.v.GetBool("no-openapi") {
		cfg.OpenAPI = false
	}
	if a.v.GetBool("no-redact") {
		cfg.Redaction.Enabled = false
	}
	if a.v.GetBool("verbose") {
		cfg.Verbose = true
	}
	if a.v.GetBool("debug") {
		cfg.Debug = true
	}

	return cfg, nil
}

func (a *app) newCreator() (*creator.Creator, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	opts := []creator.Option{creator.WithConfig(cfg)}
	if name := a.v.GetString("log-level"); name != "" {
		level, err := logger.ParseLevel(name)
		if err != nil {
			return nil, errors.NewConfigError("log-level", err.Error())
		}
		opts = append(opts, creator.WithLogger(logger.New(logger.Config{
			Level:     level,
			Pretty:    true,
			Component: "creator",
			Caller:    cfg.Debug,
		})))
	}
	return creator.New(opts...)
}

func (a *app) runDirect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	if a.v.GetBool("analyze") {
		return a.analyze(cmd.Context(), args[0], false)
	}
	return a.create(cmd.Context(), args[0])
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	return a.analyze(cmd.Context(), args[0], a.v.GetBool("json"))
}

func (a *app) runCreate(cmd *cobra.Command, args []string) error {
	return a.create(cmd.Context(), args[0])
}

func (a *app) analyze(ctx context.Context, path string, asJSON bool) error {
	c, err := a.newCreator()
	if err != nil {
		return err
	}

	analysis, err := c.Analyze(ctx, path)
	if err != nil {
		return err
	}

	if asJSON {
		w := output.NewJSONWriter(a.out, true)
		if err := w.WriteReport(analysis.Report()); err != nil {
			return err
		}
		return w.Flush()
	}

	printReport(a.out, "HAR Analysis: "+path, analysis.Report())
	return nil
}

func (a *app) create(ctx context.Context, path string) error {
	c, err := a.newCreator()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Generating MCP server...")

	result, err := c.Create(ctx, path)
	if err != nil {
		return err
	}

	printCreateSummary(a.out, result, c.Config().OutputDir)
	return nil
}

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
	path := a.v.GetString("state-file")
	if path == "" {
		return fmt.Errorf("no state file specified (use --state-file)")
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	snap, err := creator.LoadSnapshot(path)
	if err != nil {
		return err
	}

	printSnapshot(a.out, path, snap, cfg.Prefix)
	return nil
}
