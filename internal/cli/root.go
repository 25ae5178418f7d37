// Package cli implements the caredesk command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/config"
	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/logging"
)

var (
	cfgFile        string
	logLevel       string
	logFormat      string
	jsonOutput     bool
	nonInteractive bool
	noProgress     bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "caredesk",
	Short: "Hospital front desk in the terminal",
	Long: `CareDesk is a terminal front-end for the hospital patient service.

Sign in, reset a forgotten password and register patients for
appointments. Run "caredesk devserver" for a local API to work against.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/caredesk/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "override logging.format (console, json)")
	flags.BoolVar(&jsonOutput, "json", false, "write machine-readable JSON output")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail instead of launching interactive screens")
	flags.BoolVar(&noProgress, "no-progress", false, "suppress progress output on stderr")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// PreflightError is a failure the user can fix before retrying.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	return e.Message
}

func printError(w io.Writer, err error) {
	var pre *PreflightError
	if !errors.As(err, &pre) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", pre.Message)
	if pre.Hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", pre.Hint)
	}
	if pre.NextStep != "" {
		fmt.Fprintf(w, "Next: %s\n", pre.NextStep)
	}
}

func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Check the config file and CAREDESK_* environment variables",
			NextStep: "caredesk --config <path> " + cmd.Name(),
		}
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}

	appConfig = cfg
	return nil
}

// GetConfig returns the loaded configuration, or nil before the root
// command has run.
func GetConfig() *config.Config {
	return appConfig
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// WriteOutput encodes v as indented JSON.
func WriteOutput(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openDatabase(ctx context.Context) (*db.DB, error) {
	cfg := GetConfig()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("cannot open database %s: %v", cfg.Database.Path, err),
			Hint:     "Set database.path (or CAREDESK_DATABASE_PATH) to a writable location",
			NextStep: "caredesk theme show",
		}
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
