package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/keyring"
	"github.com/julianstephens/studyplan/internal/storage/postgres"
)

// KeyringSetCmd stores a PostgreSQL connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("Note: the connection string contains a password, which will be stored in the OS keyring.")
	}

	if err := keyring.SetConnectionString(ctx.Profile, cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Printf("✓ Connection string stored for profile %q\n", profile(ctx))
	fmt.Println("  Run studyplan with --config keyring to use it")
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString(ctx.Profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'studyplan keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	fmt.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(ctx.Profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	fmt.Printf("✓ Connection string for profile %q deleted\n", profile(ctx))
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("✗ OS keyring is not available on this system")
		return nil
	}
	fmt.Println("✓ OS keyring is available")

	connStr, err := keyring.GetConnectionString(ctx.Profile)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Printf("  No connection string stored for profile %q\n", profile(ctx))
	case err != nil:
		return fmt.Errorf("failed to read keyring: %w", err)
	default:
		fmt.Printf("  Profile %q: %s\n", profile(ctx), maskPassword(connStr))
	}
	return nil
}

func profile(ctx *cli.Context) string {
	if ctx.Profile == "" {
		return keyring.DefaultProfile
	}
	return ctx.Profile
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			if user, _, ok := strings.Cut(rest[:at], ":"); ok {
				return connStr[:idx+3] + user + ":****" + rest[at:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
