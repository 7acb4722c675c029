// Package keyring keeps database connection strings out of config files by
// storing them in the OS keyring, one entry per named profile.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/studyplan/internal/constants"
)

// DefaultProfile is used when no --profile is given.
const DefaultProfile = "default"

var (
	ErrNotFound           = errors.New("credentials not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func account(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" || profile == DefaultProfile {
		return constants.DefaultKeyringUser
	}
	return constants.DefaultKeyringUser + ":" + profile
}

// GetConnectionString returns the stored connection string for profile.
func GetConnectionString(profile string) (string, error) {
	connStr, err := keyring.Get(constants.AppName, account(profile))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("profile %q: %w", profileName(profile), ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

func SetConnectionString(profile, connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, account(profile), connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func DeleteConnectionString(profile string) error {
	err := keyring.Delete(constants.AppName, account(profile))
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("profile %q: %w", profileName(profile), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether the keyring answers a read. A missing entry
// still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func profileName(profile string) string {
	if strings.TrimSpace(profile) == "" {
		return DefaultProfile
	}
	return profile
}
