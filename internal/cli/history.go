package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/models"
	"github.com/caredesk/caredesk/internal/platform"
	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/theme"
)

const defaultHistoryLimit = 20

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", defaultHistoryLimit, "maximum number of registrations to list")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List registrations submitted from this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return &PreflightError{
				Message:  fmt.Sprintf("invalid --limit %d", limit),
				Hint:     "The limit must be a positive number",
				NextStep: "caredesk history --limit 20",
			}
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		progress := startProgress(cmd.ErrOrStderr(), "Loading registration history")
		records, err := db.NewRegistrationRepository(database).List(ctx, limit)
		if err != nil {
			progress.Fail(err)
			return fmt.Errorf("failed to list registrations: %w", err)
		}
		progress.Done()

		if IsJSONOutput() {
			if records == nil {
				records = []*models.RegistrationRecord{}
			}
			return WriteOutput(cmd.OutOrStdout(), records)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No registrations yet. Submit one from \"caredesk ui\".")
			return nil
		}

		palette := theme.PaletteFor(theme.Resolve(GetConfig().DefaultThemeMode(), platform.Detect()))
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.SubmittedAt.Local().Format("2006-01-02 15:04"),
				r.PatientName,
				r.ServiceID,
				r.AppointmentDate.Format("2006-01-02") + " " + r.TimeSlot,
				registration.FormatCents(r.PayableCents),
				formatRegistrationStatus(r.Status, palette),
				r.RemoteID,
			})
		}
		return writeTable(out, []string{"SUBMITTED", "PATIENT", "SERVICE", "APPOINTMENT", "PAYABLE", "STATUS", "REMOTE ID"}, rows)
	},
}
