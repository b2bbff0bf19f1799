// Package main provides the wgs-report command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what every command shares.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer
}

// usageError marks a bad invocation (exit code 2).
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{v: viper.New(), out: stdout, errOut: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.logger != nil {
		a.logger.Sync() //nolint:errcheck
	}
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "Run 'wgs-report --help' for usage.\n")
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "wgs-report",
		Short: "Annotated spreadsheets for solid-cancer WGS reports",
		Long: `wgs-report joins the variants of a solid-cancer WGS report with curated
reference corpora (hotspots, gene groups, panels, cytobands, ClinVar) and
renders one review workbook per case.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cfgFile); err != nil {
				return err
			}
			if err := a.v.BindPFlag("log.verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
				return err
			}
			a.logger = newLogger(a.errOut, a.v.GetBool("log.verbose")).
				With(zap.String("run_id", uuid.NewString()))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Help() //nolint:errcheck
			return usagef("a command is required")
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.wgs-report.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging in console format")

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newClinVarIndexCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// initConfig reads ~/.wgs-report.yaml (or cfgFile) and WGS_REPORT_*
// environment variables. A missing file is not an error.
func (a *app) initConfig(cfgFile string) error {
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".wgs-report")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("WGS_REPORT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	a.v.SetDefault("serve.addr", ":8080")
	a.v.SetDefault("clinvar.format", "tabix")

	if err := a.v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bindFlags binds config keys to the named flags of cmd. Bindings are made
// when a command runs since several commands share keys.
func (a *app) bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.DebugLevel))
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.InfoLevel))
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "wgs-report version %s (%s) built %s\n", version, commit, date)
		},
	}
}
