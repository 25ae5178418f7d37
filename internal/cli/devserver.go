package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/devserver"
)

func init() {
	rootCmd.AddCommand(devserverCmd)
	devserverCmd.Flags().String("addr", "", "listen address (default devserver.addr)")
	devserverCmd.Flags().Bool("list-users", false, "print the seeded accounts and exit")
	devserverCmd.Flags().String("seed", "", "YAML file with users, services and doctors (default built-in)")
}

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local in-memory hospital API",
	Long: `Run a local in-memory hospital API for working offline.

Data lives only for the lifetime of the process. Password reset codes
are written to the log instead of being emailed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		seedPath, _ := cmd.Flags().GetString("seed")
		seed, err := loadSeed(seedPath)
		if err != nil {
			return err
		}

		if list, _ := cmd.Flags().GetBool("list-users"); list {
			return printSeedUsers(cmd, seed.Users)
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.DevServer.Addr
		}

		srv, err := devserver.New(devserver.Options{
			RegistrationFeeCents: cfg.Registration.FeeCents,
			Users:                seed.Users,
			Catalog:              &seed.Catalog,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Dev API on http://%s (ctrl+c to stop)\n", addr)
		if err := srv.Run(ctx, addr); err != nil && ctx.Err() == nil {
			return &PreflightError{
				Message:  err.Error(),
				Hint:     "Is another process listening on " + addr + "?",
				NextStep: "caredesk devserver --addr 127.0.0.1:0",
			}
		}
		return nil
	},
}

func loadSeed(path string) (devserver.Seed, error) {
	if path == "" {
		return devserver.DefaultSeed(), nil
	}
	seed, err := devserver.LoadSeed(path)
	if err != nil {
		return devserver.Seed{}, &PreflightError{
			Message:  err.Error(),
			Hint:     "The seed file needs users, services and doctors in the built-in layout",
			NextStep: "caredesk devserver --list-users",
		}
	}
	return seed, nil
}

func printSeedUsers(cmd *cobra.Command, users []devserver.SeedUser) error {
	if IsJSONOutput() {
		type account struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
			Role     string `json:"role"`
		}
		out := make([]account, 0, len(users))
		for _, u := range users {
			out = append(out, account{Email: u.Email, Password: u.Password, Name: u.Name, Role: u.Role})
		}
		return WriteOutput(cmd.OutOrStdout(), out)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Email, u.Password, u.Name, u.Role})
	}
	return writeTable(cmd.OutOrStdout(), []string{"EMAIL", "PASSWORD", "NAME", "ROLE"}, rows)
}
