package cli

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/jobs"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

// readPassword is swapped in tests.
var readPassword = func() ([]byte, error) { return term.ReadPassword(int(syscall.Stdin)) }

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.Open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

// NewSweepCommand runs the daily refresh-token sweep once, immediately.
func NewSweepCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired refresh tokens now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.Open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			job := jobs.NewTokenSweep(a.Services.Auth, opts.Cfg.SweepHour, opts.Cfg.SweepMinute, opts.Logger)
			n, err := job.Once(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired refresh tokens\n", n)
			return nil
		},
	}
}

// NewCreateAdminCommand creates an activated ADMIN. The password is read
// from the terminal without echo.
func NewCreateAdminCommand(opts *RootOptions) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an activated administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.OutOrStdout(), "Enter password: ")
			pwd, err := readPassword()
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return errors.Wrap(err, "read password")
			}
			if len(strings.TrimSpace(string(pwd))) < 8 {
				return errors.New("password must have at least 8 characters")
			}
			hash, err := utils.Hasher{Cost: opts.Cfg.BcryptCost}.Hash(string(pwd))
			if err != nil {
				return err
			}

			a, err := opts.Open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			u, err := a.Services.Users.CreateAdmin(cmd.Context(), username, email, hash)
			if err != nil {
				return errors.Wrap(err, "create admin")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
