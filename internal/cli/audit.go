package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/models"
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditCmd.Flags().Int("limit", 50, "maximum number of events to list")
	auditCmd.Flags().String("type", "", "only list events of this type, e.g. auth.login_failed")
	auditCmd.Flags().Duration("since", 0, "only list events newer than this, e.g. 24h")
	auditPruneCmd.Flags().Duration("older-than", 90*24*time.Hour, "delete events older than this")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the local audit log",
	Long: `Show sign-ins, password resets, registrations and theme changes made
from this machine, oldest first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		limit, _ := cmd.Flags().GetInt("limit")
		typeFilter, _ := cmd.Flags().GetString("type")
		since, _ := cmd.Flags().GetDuration("since")

		query := db.EventQuery{Limit: limit}
		if typeFilter = strings.TrimSpace(typeFilter); typeFilter != "" {
			typ := models.EventType(typeFilter)
			query.Type = &typ
		}
		if since > 0 {
			from := time.Now().Add(-since)
			query.Since = &from
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		page, err := db.NewEventRepository(database).Query(ctx, query)
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			out := page.Events
			if out == nil {
				out = []*models.Event{}
			}
			return WriteOutput(cmd.OutOrStdout(), out)
		}

		if len(page.Events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No audit events.")
			return nil
		}

		rows := make([][]string, 0, len(page.Events))
		for _, e := range page.Events {
			rows = append(rows, []string{
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				string(e.Type),
				e.EntityID,
				string(e.Payload),
			})
		}
		if err := writeTable(cmd.OutOrStdout(), []string{"TIME", "TYPE", "ENTITY", "DETAILS"}, rows); err != nil {
			return err
		}
		if page.NextCursor != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nMore events exist; raise --limit or narrow with --since.\n")
		}
		return nil
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return &PreflightError{
				Message:  "--older-than must be positive",
				NextStep: "caredesk audit prune --older-than 2160h",
			}
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		removed, err := db.NewEventRepository(database).Prune(ctx, time.Now().Add(-olderThan))
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return WriteOutput(cmd.OutOrStdout(), map[string]any{"removed": removed})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit event(s)\n", removed)
		return nil
	},
}
