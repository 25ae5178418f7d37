package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/events"
	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/platform"
	"github.com/caredesk/caredesk/internal/prefs"
	"github.com/caredesk/caredesk/internal/theme"
)

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeResetCmd)

	themeShowCmd.Flags().Bool("palette", false, "also list every palette token")
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect or change the colour theme",
	Long: `Inspect or change the persisted theme mode.

In system mode the theme follows the terminal or OS appearance, which
can be forced with CAREDESK_APPEARANCE=light|dark.`,
}

// ThemeStatus is the output of "theme show".
type ThemeStatus struct {
	Mode       theme.Mode       `json:"mode"`
	Persisted  bool             `json:"persisted"`
	Appearance theme.Appearance `json:"appearance"`
	Effective  theme.Effective  `json:"effective"`
	Palette    theme.Palette    `json:"palette"`
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the selected and effective theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		store := prefs.NewStore(db.NewPreferenceRepository(database))
		mode, persisted := store.Load(ctx)
		if !persisted {
			mode = GetConfig().DefaultThemeMode()
		}
		appearance := platform.Detect()
		effective := theme.Resolve(mode, appearance)

		status := ThemeStatus{
			Mode:       mode,
			Persisted:  persisted,
			Appearance: appearance,
			Effective:  effective,
			Palette:    theme.PaletteFor(effective),
		}
		if IsJSONOutput() {
			return WriteOutput(cmd.OutOrStdout(), status)
		}

		out := cmd.OutOrStdout()
		if err := writeFields(out, [][2]string{
			{"Mode", string(status.Mode)},
			{"Persisted", formatYesNo(status.Persisted)},
			{"Appearance", string(status.Appearance)},
			{"Effective", string(status.Effective)},
		}); err != nil {
			return err
		}

		showPalette, _ := cmd.Flags().GetBool("palette")
		if !showPalette {
			return nil
		}
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(status.Palette.Tokens()))
		for _, token := range status.Palette.Tokens() {
			rows = append(rows, []string{token.Name, colorize(token.Value, token.Value)})
		}
		return writeTable(out, []string{"TOKEN", "VALUE"}, rows)
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark|system>",
	Short:     "Persist the theme mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(theme.ModeLight), string(theme.ModeDark), string(theme.ModeSystem)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		mode, err := theme.ParseMode(args[0])
		if err != nil {
			return &PreflightError{
				Message:  fmt.Sprintf("unknown theme mode %q", args[0]),
				Hint:     "Choose one of: " + strings.Join(modeNames(), ", "),
				NextStep: "caredesk theme set system",
			}
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		progress := startProgress(cmd.ErrOrStderr(), "Saving theme mode")
		store := prefs.NewStore(db.NewPreferenceRepository(database))
		if err := store.Save(ctx, mode); err != nil {
			progress.Fail(err)
			return err
		}
		progress.Done()

		if err := events.LogThemeModeChanged(ctx, db.NewEventRepository(database), prefs.ThemeModeKey, string(mode), events.SourceCLI); err != nil {
			logger := logging.Component("cli")
			logger.Warn().Err(err).Msg("failed to write audit event")
		}

		if IsJSONOutput() {
			return WriteOutput(cmd.OutOrStdout(), map[string]any{"mode": mode})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme mode set to %s\n", mode)
		return nil
	},
}

var themeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved mode and fall back to theme.default_mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		err = db.NewPreferenceRepository(database).Delete(ctx, prefs.ThemeModeKey)
		if err != nil && !errors.Is(err, db.ErrPreferenceNotFound) {
			return fmt.Errorf("failed to reset theme mode: %w", err)
		}

		fallback := GetConfig().DefaultThemeMode()
		if IsJSONOutput() {
			return WriteOutput(cmd.OutOrStdout(), map[string]any{"mode": fallback, "persisted": false})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved theme mode cleared; using %s\n", fallback)
		return nil
	},
}

func modeNames() []string {
	modes := theme.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return names
}
