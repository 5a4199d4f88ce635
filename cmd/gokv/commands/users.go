package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rustyorg/gokv/internal/cli/output"
	"github.com/rustyorg/gokv/internal/cli/prompt"
	"github.com/rustyorg/gokv/internal/identity"
	"github.com/rustyorg/gokv/internal/store"
	"github.com/rustyorg/gokv/pkg/config"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users in the credential store",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a user, prompting for a password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersAdd,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users in the credential store",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

func init() {
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersListCmd)
}

func openCredentialStore() (*store.CredentialStore, *config.Config, error) {
	cfg := config.MustLoad(GetConfigFile())
	creds, err := store.Open(cfg.Server.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open credential store: %w", err)
	}
	return creds, cfg, nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	username := args[0]

	password, err := prompt.PasswordWithValidation("Password", identity.MinPasswordLength)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		return err
	}

	creds, _, err := openCredentialStore()
	if err != nil {
		return err
	}

	if err := creds.EnsureUser(context.Background(), username, password, false); err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}

	fmt.Printf("user %q added\n", username)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	creds, _, err := openCredentialStore()
	if err != nil {
		return err
	}

	rows, err := creds.IterUsers(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	table := output.NewTableData("USERNAME", "IDENTITY")
	for _, row := range rows {
		table.AddRow(row.Username, identity.DeriveIdentity(row.Username, row.Digest))
	}
	output.PrintTable(os.Stdout, table)
	return nil
}
