package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studyplan/internal/keyring"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/storage/postgres"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

// KeyringConfig as a --config value selects the connection string stored
// under the keyring profile.
const KeyringConfig = "keyring"

// OpenStore picks a backend for config: the keyring profile, a PostgreSQL URL
// or DSN, or else a SQLite path. The store is returned unloaded.
func OpenStore(config, profile, home string) (storage.Provider, error) {
	switch {
	case config == KeyringConfig:
		connStr, err := keyring.GetConnectionString(profile)
		if err != nil {
			return nil, fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		return postgres.New(connStr), nil

	case IsPostgres(config):
		if _, err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with 'studyplan keyring set' and use --config keyring: %w", err)
			}
			return nil, err
		}
		return postgres.New(config), nil

	default:
		return sqlite.NewStore(ExpandHome(config, home)), nil
	}
}

func IsPostgres(config string) bool {
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		return true
	}
	return strings.Contains(config, "host=") || strings.Contains(config, "dbname=")
}
