package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/config"
	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/platform"
	"github.com/caredesk/caredesk/internal/prefs"
	"github.com/caredesk/caredesk/internal/theme"
	"github.com/caredesk/caredesk/internal/tui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the CareDesk TUI",
	Long:  "Launch the CareDesk terminal user interface: sign in, reset passwords and register patients.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(commandContext(cmd))
	},
}

func runTUI(ctx context.Context) error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "TUI requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use CLI subcommands",
			NextStep: "caredesk --help",
		}
	}

	cfg := GetConfig()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// The alt screen owns the terminal; logs go to a file or nowhere.
	logOut, closeLog, err := tuiLogOutput(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()
	if err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "json",
		Output: logOut,
	}); err != nil {
		return err
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	client, err := api.New(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout))
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Set api.base_url (or CAREDESK_API_BASE_URL) to the patient service URL",
			NextStep: "caredesk devserver",
		}
	}

	state := theme.NewState(
		prefs.NewStore(db.NewPreferenceRepository(database)),
		platform.Detect(),
		theme.WithDefaultMode(cfg.DefaultThemeMode()),
	)
	// Pending saves must land before the database closes.
	defer state.Wait()
	state.Start(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go platform.NewWatcher(state, platform.Poll, cfg.Theme.PollInterval).Run(ctx)

	return tui.Run(theme.WithState(ctx, state), tui.Config{
		Client:               client,
		History:              db.NewRegistrationRepository(database),
		Audit:                db.NewEventRepository(database),
		RegistrationFeeCents: cfg.Registration.FeeCents,
	})
}

func tuiLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
