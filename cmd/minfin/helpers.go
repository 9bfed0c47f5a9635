package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/storage"
)

// openStorage opens the configured database file.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "minfin", "minfin.db")
	}

	return storage.NewSQLiteStorage(dbPath)
}

// resolveUserID returns the acting user's identity. The identity comes from
// an external collaborator (flag, env, or config); if none resolves, no
// domain logic may run.
func resolveUserID() (int64, error) {
	userID := viper.GetInt64("user.id")
	if userID <= 0 {
		return 0, common.ErrUnauthorized
	}
	return userID, nil
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(value, flag string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: expected YYYY-MM-DD", flag, value)
	}
	return t, nil
}
